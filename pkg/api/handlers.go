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

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/NVIDIA/hostpulse/pkg/broadcast"
	"github.com/NVIDIA/hostpulse/pkg/config"
	"github.com/NVIDIA/hostpulse/pkg/defaults"
	cerrors "github.com/NVIDIA/hostpulse/pkg/errors"
	"github.com/NVIDIA/hostpulse/pkg/serializer"
	"github.com/NVIDIA/hostpulse/pkg/server"
	"github.com/NVIDIA/hostpulse/pkg/snapshot"
)

const (
	// StatsPath serves one snapshot per request.
	StatsPath = "/api/stats"
	// StreamPath upgrades to a WebSocket snapshot stream.
	StreamPath = "/ws/stats"
)

// Handlers serves snapshot queries and stream subscriptions.
type Handlers struct {
	collector broadcast.Collector
	hub       *broadcast.Hub
	upgrader  websocket.Upgrader
}

// NewHandlers creates handlers backed by collector. Stream subscribers are
// registered with hub.
func NewHandlers(settings *config.Settings, collector broadcast.Collector, hub *broadcast.Hub) *Handlers {
	return &Handlers{
		collector: collector,
		hub:       hub,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: defaults.WebSocketHandshakeTimeout,
			CheckOrigin: func(r *http.Request) bool {
				return settings.OriginAllowed(r.Header.Get("Origin"))
			},
		},
	}
}

// Routes returns the handler map for server.WithHandler.
func (h *Handlers) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		StatsPath:  h.HandleStats,
		StreamPath: h.HandleStream,
	}
}

// HandleStats handles GET /api/stats with a freshly sampled snapshot.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		server.WriteError(w, r, http.StatusMethodNotAllowed, cerrors.ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]any{"method": r.Method})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.StatsHandlerTimeout)
	defer cancel()

	snap, err := h.collector.Collect(ctx)
	if err != nil {
		slog.Warn("stats collection failed",
			"requestID", server.RequestID(r.Context()),
			"error", err,
		)
		server.WriteErrorFromErr(w, r, err, "Failed to collect snapshot", nil)
		return
	}

	body, err := snapshot.Encode(snap)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to encode snapshot", nil)
		return
	}

	serializer.RespondRawJSON(w, http.StatusOK, body)
}

// HandleStream handles GET /ws/stats. The subscriber gets one snapshot
// immediately, then one per broadcast tick until it disconnects.
func (h *Handlers) HandleStream(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		slog.Debug("websocket upgrade failed",
			"requestID", server.RequestID(r.Context()),
			"origin", r.Header.Get("Origin"),
			"error", err,
		)
		return
	}

	conn := broadcast.NewConn(ws)
	log := slog.With("subscriber", conn.ID(), "remote", r.RemoteAddr)

	if err := h.pushInitial(r.Context(), conn); err != nil {
		log.Debug("initial snapshot failed", "error", err)
		_ = conn.Close()
		return
	}

	// Register fails once the broadcast loop has stopped.
	registry := h.hub.Registry()
	if r.Context().Err() != nil || !registry.Register(conn) {
		log.Debug("subscriber refused, broadcast stopped")
		_ = conn.Close()
		return
	}
	log.Debug("subscriber connected", "subscribers", registry.Len())

	err = conn.ReadLoop()

	registry.Unregister(conn.ID())
	_ = conn.Close()
	log.Debug("subscriber disconnected", "error", err, "subscribers", registry.Len())
}

func (h *Handlers) pushInitial(ctx context.Context, conn *broadcast.Conn) error {
	collectCtx, cancel := context.WithTimeout(ctx, defaults.CollectTimeout)
	defer cancel()

	snap, err := h.collector.Collect(collectCtx)
	if err != nil {
		return err
	}
	frame, err := broadcast.NewFrame(snap)
	if err != nil {
		return err
	}

	pushCtx, cancel := context.WithTimeout(ctx, defaults.SubscriberPushTimeout)
	defer cancel()
	return conn.Push(pushCtx, frame)
}
