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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/hostpulse/pkg/broadcast"
	"github.com/NVIDIA/hostpulse/pkg/config"
	"github.com/NVIDIA/hostpulse/pkg/defaults"
	"github.com/NVIDIA/hostpulse/pkg/logging"
	"github.com/NVIDIA/hostpulse/pkg/sampler"
	"github.com/NVIDIA/hostpulse/pkg/server"
)

const (
	name           = "hostpulsed"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/hostpulse/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Service is the assembled daemon: the HTTP server and the broadcast hub
// sharing one sampler.
type Service struct {
	settings *config.Settings
	server   *server.Server
	hub      *broadcast.Hub
}

// NewService wires the stats and stream endpoints around collector.
func NewService(settings *config.Settings, collector broadcast.Collector) *Service {
	if settings == nil {
		settings = config.Default()
	}

	hub := broadcast.NewHub(collector, broadcast.NewRegistry(),
		broadcast.WithPushTimeout(defaults.SubscriberPushTimeout),
		broadcast.WithMaxParallelPushes(defaults.MaxConcurrentPushes),
		broadcast.WithMaxFailedTicks(defaults.MaxFailedTicks),
	)
	h := NewHandlers(settings, collector, hub)

	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(h.Routes()),
		server.WithAllowOrigins(settings.AllowOrigins),
		server.WithReadinessCheck(hub.Ready),
	)

	return &Service{settings: settings, server: s, hub: hub}
}

// Server returns the HTTP server.
func (svc *Service) Server() *server.Server {
	return svc.server
}

// Hub returns the broadcast hub.
func (svc *Service) Hub() *broadcast.Hub {
	return svc.hub
}

// Run serves HTTP and drives broadcast ticks until ctx is cancelled or
// either side fails.
func (svc *Service) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.server.Start(gctx)
	})
	g.Go(func() error {
		return svc.hub.Run(gctx, svc.settings.Interval)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("service error: %w", err)
	}
	return nil
}

// Serve loads settings from configFile and the environment and runs the
// daemon until SIGINT or SIGTERM. An empty logLevel falls back to LOG_LEVEL.
func Serve(ctx context.Context, configFile, logLevel string) error {
	logging.SetDefaultStructuredLoggerWithLevel(name, version, logLevel)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	settings, err := config.Load(configFile)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}
	slog.Info("configuration loaded",
		"allowOrigins", settings.AllowOrigins,
		"interval", settings.Interval.String(),
		"topN", settings.TopN,
		"monitorMode", string(settings.MonitorMode),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := NewService(settings, sampler.New(settings))
	if err := svc.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	slog.Info("stopped gracefully")
	return nil
}
