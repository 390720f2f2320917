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

// Package sampler assembles Snapshots from the metrics probe.
//
// Engine.Collect runs one probe pass: mandatory probes (CPU, memory, swap,
// network counters, disks, boot time, processes) in parallel, each bounded
// by a timeout, and optional probes (load average, temperatures, fans,
// battery) that degrade to empty values on failure. The network counters go
// through the Engine's RateTracker and the process table through Rank.
//
//	e := sampler.New(settings)
//	snap, err := e.Collect(ctx)
//	if err != nil {
//	    // mandatory probe failed or timed out
//	}
//
// Every call produces a fresh Snapshot. Callers that share an Engine share
// its rate state, and Rate serializes updates to it.
package sampler
