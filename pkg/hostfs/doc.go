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

// Package hostfs reads small pseudo-files from procfs and sysfs.
//
// The roots default to /proc and /sys and can be redirected with HOST_PROC
// and HOST_SYS, so a containerized monitor can read the host's view:
//
//	r := hostfs.NewReader()
//	rpm, err := r.GetFloat(hostfs.SysPath("class", "hwmon", "hwmon0", "fan1_input"))
package hostfs
