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

// Package api assembles the hostpulsed daemon.
//
// It wires one sampler.Engine into two consumers:
//
//   - GET /api/stats samples on demand and returns one JSON snapshot.
//   - GET /ws/stats upgrades to a WebSocket. The subscriber receives a
//     snapshot right away, then one per broadcast tick.
//
// Serve loads settings through pkg/config, starts the HTTP server from
// pkg/server and the broadcast loop from pkg/broadcast under one errgroup,
// and stops both on SIGINT or SIGTERM.
//
// Build information is injected with ldflags:
//
//	-X github.com/NVIDIA/hostpulse/pkg/api.version=1.0.0
//	-X github.com/NVIDIA/hostpulse/pkg/api.commit=abc123
//	-X github.com/NVIDIA/hostpulse/pkg/api.date=2025-01-01
package api
