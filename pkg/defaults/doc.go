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

// Package defaults provides centralized configuration constants for hostpulse.
//
// This package defines timeout values and limits used across the codebase.
// Centralizing these values keeps the sampler, the broadcast hub and the HTTP
// server consistent with each other.
//
// # Timeout Categories
//
// Timeouts are organized by component:
//
//   - Probe timeouts: For individual metric reads and full sampling passes
//   - Broadcast timeouts: For per-subscriber pushes
//   - Handler timeouts: For HTTP request processing
//   - Server timeouts: For HTTP server configuration
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/hostpulse/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.ProbeTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - Probes: 2s per call, 10s per sampling pass
//   - Pushes: 2s per subscriber, never longer than the broadcast interval
//   - Server shutdown: 30s for graceful shutdown
package defaults
