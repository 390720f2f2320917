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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/NVIDIA/hostpulse/pkg/snapshot"
)

func TestRateTracker(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		calls []struct {
			at         time.Time
			sent, recv uint64
		}
		want []snapshot.NetRate
	}{
		{
			name: "first call seeds",
			calls: []struct {
				at         time.Time
				sent, recv uint64
			}{
				{t0, 1000, 2000},
			},
			want: []snapshot.NetRate{{}},
		},
		{
			name: "rate in bits per second",
			calls: []struct {
				at         time.Time
				sent, recv uint64
			}{
				{t0, 1000, 2000},
				{t0.Add(2 * time.Second), 1500, 4000},
			},
			want: []snapshot.NetRate{{}, {UpBps: 2000, DownBps: 8000}},
		},
		{
			name: "same timestamp",
			calls: []struct {
				at         time.Time
				sent, recv uint64
			}{
				{t0, 1000, 2000},
				{t0, 5000, 9000},
			},
			want: []snapshot.NetRate{{}, {}},
		},
		{
			name: "clock went backwards",
			calls: []struct {
				at         time.Time
				sent, recv uint64
			}{
				{t0, 1000, 2000},
				{t0.Add(-time.Second), 5000, 9000},
			},
			want: []snapshot.NetRate{{}, {}},
		},
		{
			name: "state overwritten after zero dt",
			calls: []struct {
				at         time.Time
				sent, recv uint64
			}{
				{t0, 0, 0},
				{t0, 1000, 1000},
				{t0.Add(time.Second), 1100, 1200},
			},
			want: []snapshot.NetRate{{}, {}, {UpBps: 800, DownBps: 1600}},
		},
		{
			name: "counter reset passes through negative",
			calls: []struct {
				at         time.Time
				sent, recv uint64
			}{
				{t0, 1000, 1000},
				{t0.Add(time.Second), 0, 500},
			},
			want: []snapshot.NetRate{{}, {UpBps: -8000, DownBps: -4000}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r RateTracker
			for i, c := range tt.calls {
				got := r.Rate(c.at, c.sent, c.recv)
				assert.InDelta(t, tt.want[i].UpBps, got.UpBps, 1e-9, "call %d up", i)
				assert.InDelta(t, tt.want[i].DownBps, got.DownBps, 1e-9, "call %d down", i)
			}
		})
	}
}

func TestRateTracker_Independent(t *testing.T) {
	t0 := time.Now()
	var a, b RateTracker

	a.Rate(t0, 0, 0)
	got := b.Rate(t0.Add(time.Second), 100, 100)
	assert.Equal(t, snapshot.NetRate{}, got, "fresh tracker must not see another tracker's state")
}

func TestRateTracker_Concurrent(t *testing.T) {
	var r RateTracker
	t0 := time.Now()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Rate(t0.Add(time.Duration(i)*time.Millisecond), uint64(i), uint64(i))
		}(i)
	}
	wg.Wait()

	assert.True(t, r.seeded)
}
