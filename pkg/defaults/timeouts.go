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

package defaults

import "time"

// Probe timeouts for metric collection.
const (
	// ProbeTimeout bounds a single probe call (cpu, memory, disks, sensors, ...).
	// A probe that does not return in time is treated as failed.
	ProbeTimeout = 2 * time.Second

	// CollectTimeout bounds one full sampling pass across all probes.
	// Must exceed ProbeTimeout so a single slow probe reports its own error.
	CollectTimeout = 10 * time.Second
)

// Broadcast timeouts and limits for snapshot fan-out.
const (
	// BroadcastInterval is the default time between broadcast ticks.
	BroadcastInterval = 2 * time.Second

	// SubscriberPushTimeout bounds a single push to one subscriber.
	// On expiry the subscriber is treated as dead.
	SubscriberPushTimeout = 2 * time.Second

	// SubscriberCloseTimeout bounds the close handshake sent to a dropped subscriber.
	SubscriberCloseTimeout = 1 * time.Second

	// MaxConcurrentPushes caps in-flight pushes per tick.
	MaxConcurrentPushes = 64

	// MaxFailedTicks is how many consecutive failed ticks mark the daemon not ready.
	MaxFailedTicks = 3
)

// Handler timeouts for HTTP request processing.
const (
	// StatsHandlerTimeout is the timeout for a synchronous stats query.
	// Should exceed CollectTimeout to allow error handling.
	StatsHandlerTimeout = 15 * time.Second

	// WebSocketHandshakeTimeout bounds the websocket upgrade handshake.
	WebSocketHandshakeTimeout = 10 * time.Second

	// WebSocketReadLimit is the maximum inbound frame size in bytes.
	// Clients are not expected to send anything beyond control frames.
	WebSocketReadLimit = 512
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// Settings defaults.
const (
	// TopProcesses is the default number of ranked processes in a snapshot.
	TopProcesses = 5
)
