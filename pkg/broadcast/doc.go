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

// Package broadcast fans snapshots out to connected subscribers.
//
// Registry holds the active set. Hub.Tick collects exactly one snapshot,
// encodes it once into a Frame and pushes that frame to a point-in-time copy
// of the registry, in parallel, with each push bounded by a timeout.
// Subscribers whose push fails or times out are unregistered and closed
// before Tick returns; the others are unaffected. When Run stops it closes
// the registry, so late registrations are refused.
//
// Hub.Ready reports whether ticks are succeeding and backs the daemon's
// readiness endpoint.
//
//	reg := broadcast.NewRegistry()
//	hub := broadcast.NewHub(engine, reg)
//	go hub.Run(ctx, settings.Interval)
//
// Conn adapts a gorilla WebSocket connection to the Subscriber interface.
package broadcast
