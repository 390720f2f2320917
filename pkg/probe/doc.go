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

// Package probe reads raw OS and container metrics.
//
// Probe is the metrics collaborator used by the sampler. SystemProbe serves
// it from gopsutil and the Linux sysfs tree. Optional metrics (load average,
// temperatures, fans, battery) are read through Call, which turns any failure
// into Unsupported:
//
//	temps := probe.Call(ctx, defaults.ProbeTimeout, "temperatures", p.Temperatures)
//	if readings, ok := temps.Get(); ok {
//	    ...
//	}
//
// Mandatory metrics are read through Invoke, which returns a structured
// error on failure.
//
// EnvDetector reports whether the process runs in a container, using the
// Docker marker file and the control groups of PID 1.
package probe
