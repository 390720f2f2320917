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

// Package server provides the HTTP server shared by hostpulse endpoints.
//
// # Architecture
//
// Every route registered through WithHandler runs behind the same middleware
// chain, outermost first:
//
//   - metrics: request count, latency and in-flight gauge (Prometheus)
//   - cors: Access-Control-* headers for the configured origins
//   - version: API version negotiation from the Accept header
//   - request ID: X-Request-Id propagation or generation (UUID)
//   - panic recovery: converts panics into a 500 ErrorResponse
//   - rate limit: token bucket (golang.org/x/time/rate)
//   - logging: debug-level request logs via slog
//
// The response writer used by the chain supports hijacking, so WebSocket
// upgrades work on wrapped routes.
//
// # Usage
//
//	s := server.New(
//	    server.WithName("hostpulse"),
//	    server.WithVersion(version),
//	    server.WithAllowOrigins([]string{"*"}),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "/api/stats": statsHandler,
//	    }),
//	)
//	if err := s.Start(ctx); err != nil {
//	    return err
//	}
//
// # System Endpoints
//
//   - GET /health: liveness, always 200 while the process serves
//   - GET /ready: readiness, 503 until Start has bound the listener
//   - GET /metrics: Prometheus exposition
//   - GET /: service name, version and routes
//
// # Configuration
//
// NewConfig reads PORT, ADDRESS and SHUTDOWN_TIMEOUT_SECONDS from the
// environment. Defaults are port 8080, 100 req/s with a burst of 200, and the
// timeouts in package defaults.
//
// # Errors
//
// Errors are written as ErrorResponse with a code from pkg/errors.
// WriteErrorFromErr maps structured error codes to HTTP statuses:
// INVALID_REQUEST 400, NOT_FOUND 404, RATE_LIMIT_EXCEEDED 429,
// SERVICE_UNAVAILABLE 503, TIMEOUT 504, everything else 500.
package server
