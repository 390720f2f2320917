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

// Package snapshot defines the immutable point-in-time metrics document
// produced by the sampler and delivered to subscribers and API clients.
//
// Optional metrics (load average, sensors, fans, battery) degrade to an empty
// map or a nil pointer, so a Snapshot is always structurally complete:
//
//	{
//	    "source": "host",
//	    "machine": "node-1",
//	    "timestamp": "2025-01-15T10:30:00.123456Z",
//	    "cpu_percent": 12.5,
//	    "load_avg": null,
//	    "sensors": {},
//	    "battery": null,
//	    ...
//	}
//
// Encode and Decode are the wire codec used by the WebSocket stream and tests.
package snapshot
