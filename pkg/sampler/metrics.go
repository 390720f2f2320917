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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	collectDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hostpulse_sampler_collect_duration_seconds",
			Help:    "Time taken to collect one snapshot",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	collectTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpulse_sampler_collect_total",
			Help: "Total number of snapshot collection attempts",
		},
		[]string{"status"}, // success or error
	)

	probeUnsupportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpulse_sampler_probe_unsupported_total",
			Help: "Optional probe reads that yielded no value",
		},
		[]string{"probe"},
	)

	diskSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hostpulse_sampler_disk_skipped_total",
			Help: "Mount points left out of a snapshot because their usage could not be read",
		},
	)
)
