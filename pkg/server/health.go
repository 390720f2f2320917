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

package server

import (
	"net/http"
	"time"

	"github.com/NVIDIA/hostpulse/pkg/serializer"
)

const (
	statusHealthy  = "healthy"
	statusReady    = "ready"
	statusNotReady = "not_ready"

	reasonStarting = "server is not listening"
)

// ReadinessCheck returns nil when the service behind the server can do
// useful work. Its error text is reported as the not-ready reason.
type ReadinessCheck func() error

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status    string    `json:"status" yaml:"status"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// handleHealth reports liveness. It succeeds as long as the process serves HTTP.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	respondHealth(w, http.StatusOK, statusHealthy, "")
}

// handleReady reports readiness: the listener is up and the readiness check,
// if any, passes.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if reason := s.notReadyReason(); reason != "" {
		respondHealth(w, http.StatusServiceUnavailable, statusNotReady, reason)
		return
	}
	respondHealth(w, http.StatusOK, statusReady, "")
}

func (s *Server) notReadyReason() string {
	if !s.isReady() {
		return reasonStarting
	}
	if s.readiness == nil {
		return ""
	}
	if err := s.readiness(); err != nil {
		return err.Error()
	}
	return ""
}

func respondHealth(w http.ResponseWriter, code int, status, reason string) {
	serializer.RespondJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Reason:    reason,
	})
}
