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
	"sync"
	"time"

	"github.com/NVIDIA/hostpulse/pkg/snapshot"
)

// RateTracker converts cumulative network byte counters into bit rates.
// It remembers the previous sample and is safe for concurrent use.
type RateTracker struct {
	mu     sync.Mutex
	seeded bool
	last   time.Time
	sent   uint64
	recv   uint64
}

// Rate returns the throughput since the previous call and stores the current
// sample. The first call and any call where time did not advance return a
// zero rate. A counter that went backwards yields a negative rate.
func (r *RateTracker) Rate(now time.Time, sent, recv uint64) snapshot.NetRate {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rate snapshot.NetRate
	if r.seeded {
		if dt := now.Sub(r.last).Seconds(); dt > 0 {
			rate.UpBps = (float64(sent) - float64(r.sent)) * 8 / dt
			rate.DownBps = (float64(recv) - float64(r.recv)) * 8 / dt
		}
	}

	r.seeded = true
	r.last = now
	r.sent = sent
	r.recv = recv

	return rate
}
