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

package sampler

import (
	"sort"

	"github.com/NVIDIA/hostpulse/pkg/probe"
	"github.com/NVIDIA/hostpulse/pkg/snapshot"
)

// Rank returns the top n processes ordered by CPU percent, then memory
// percent, both descending. Missing readings count as zero. Equal keys keep
// their input order. The input is not modified.
func Rank(procs []probe.Process, n int) []snapshot.Process {
	ranked := make([]snapshot.Process, 0, len(procs))
	for _, p := range procs {
		ranked = append(ranked, snapshot.Process{
			PID:           p.PID,
			Name:          p.Name,
			User:          p.User,
			CPUPercent:    valueOrZero(p.CPUPercent),
			MemoryPercent: valueOrZero(p.MemoryPercent),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CPUPercent != ranked[j].CPUPercent {
			return ranked[i].CPUPercent > ranked[j].CPUPercent
		}
		return ranked[i].MemoryPercent > ranked[j].MemoryPercent
	})

	if n < 0 {
		n = 0
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
