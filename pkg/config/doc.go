// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads hostpulse runtime settings.
//
// Settings come from an optional dotenv file and from environment variables,
// with the environment taking precedence:
//
//	ALLOW_ORIGINS   permitted cross-origin hosts, JSON list or comma-separated (default "*")
//	WS_INTERVAL     seconds between broadcast ticks, float > 0 (default 2.0)
//	TOP_N_PROCS     number of ranked processes per snapshot, int >= 0 (default 5)
//	MONITOR_MODE    auto, host or container (default auto)
//
// Invalid values fail fast with an INVALID_CONFIG structured error:
//
//	s, err := config.Load("")
//	if err != nil {
//	    return err
//	}
package config
