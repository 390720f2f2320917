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

package broadcast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hostpulse_broadcast_subscribers",
			Help: "Number of registered snapshot subscribers",
		},
	)

	tickTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpulse_broadcast_ticks_total",
			Help: "Total number of broadcast ticks",
		},
		[]string{"status"}, // success or error
	)

	tickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hostpulse_broadcast_tick_duration_seconds",
			Help:    "Time taken to collect and fan out one snapshot",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	pushTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpulse_broadcast_pushes_total",
			Help: "Total number of snapshot pushes to subscribers",
		},
		[]string{"status"}, // success or error
	)

	droppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hostpulse_broadcast_subscribers_dropped_total",
			Help: "Subscribers removed after a failed push",
		},
	)
)
