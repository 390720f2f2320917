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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/hostpulse/pkg/defaults"
	"github.com/NVIDIA/hostpulse/pkg/snapshot"
)

// Collector produces one snapshot per call.
type Collector interface {
	Collect(ctx context.Context) (*snapshot.Snapshot, error)
}

// Hub samples once per tick and fans the snapshot out to every registered
// subscriber. Subscribers whose push fails are removed.
type Hub struct {
	collector   Collector
	registry    *Registry
	pushTimeout time.Duration
	maxParallel int
	maxFailures int

	stateMu  sync.Mutex
	lastOK   time.Time
	failures int
	lastErr  error
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithPushTimeout bounds each individual push.
func WithPushTimeout(d time.Duration) HubOption {
	return func(h *Hub) {
		h.pushTimeout = d
	}
}

// WithMaxParallelPushes limits how many pushes run at once.
func WithMaxParallelPushes(n int) HubOption {
	return func(h *Hub) {
		h.maxParallel = n
	}
}

// WithMaxFailedTicks sets how many consecutive failed ticks make Ready fail.
// Zero disables the check.
func WithMaxFailedTicks(n int) HubOption {
	return func(h *Hub) {
		h.maxFailures = n
	}
}

// NewHub creates a hub that feeds registry from collector.
func NewHub(collector Collector, registry *Registry, opts ...HubOption) *Hub {
	h := &Hub{
		collector:   collector,
		registry:    registry,
		pushTimeout: defaults.SubscriberPushTimeout,
		maxParallel: defaults.MaxConcurrentPushes,
		maxFailures: defaults.MaxFailedTicks,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Registry returns the hub's subscriber registry.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Tick collects one snapshot and pushes it to all current subscribers.
// Subscribers that fail are unregistered and closed before Tick returns.
// Tick returns an error only when collection fails.
func (h *Hub) Tick(ctx context.Context) error {
	start := time.Now()
	defer func() {
		tickDuration.Observe(time.Since(start).Seconds())
	}()

	snap, err := h.collector.Collect(ctx)
	if err != nil {
		tickTotal.WithLabelValues("error").Inc()
		err = fmt.Errorf("failed to collect snapshot: %w", err)
		h.record(err)
		return err
	}

	frame, err := NewFrame(snap)
	if err != nil {
		tickTotal.WithLabelValues("error").Inc()
		h.record(err)
		return err
	}
	h.record(nil)

	members := h.registry.Members()

	var (
		mu   sync.Mutex
		dead []Subscriber
	)

	g := new(errgroup.Group)
	if h.maxParallel > 0 {
		g.SetLimit(h.maxParallel)
	}
	for _, s := range members {
		g.Go(func() error {
			if err := h.push(ctx, s, frame); err != nil {
				pushTotal.WithLabelValues("error").Inc()
				slog.Debug("subscriber push failed",
					slog.String("subscriber", s.ID()),
					slog.String("error", err.Error()))
				mu.Lock()
				dead = append(dead, s)
				mu.Unlock()
				return nil
			}
			pushTotal.WithLabelValues("success").Inc()
			return nil
		})
	}
	_ = g.Wait()

	for _, s := range dead {
		h.drop(s)
	}

	tickTotal.WithLabelValues("success").Inc()
	if len(dead) > 0 {
		slog.Info("dropped dead subscribers",
			slog.Int("dropped", len(dead)),
			slog.Int("active", h.registry.Len()))
	}
	return nil
}

// Run ticks once right away and then every interval until ctx is cancelled.
// Failed ticks are logged and the loop continues. On exit the registry is
// closed along with all remaining subscribers.
func (h *Hub) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("broadcast interval must be positive, got %v", interval)
	}

	slog.Info("broadcast loop started", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.runTick(ctx)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			slog.Info("broadcast loop stopped")
			return nil
		case <-ticker.C:
			h.runTick(ctx)
		}
	}
}

func (h *Hub) runTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := h.Tick(ctx); err != nil {
		slog.Warn("broadcast tick skipped", slog.String("error", err.Error()))
	}
}

// Ready reports whether the hub is producing snapshots. It fails before the
// first successful tick, after the loop has stopped, and while the last
// max-failed-ticks ticks have all failed.
func (h *Hub) Ready() error {
	if h.registry.Closed() {
		return errors.New("broadcast loop stopped")
	}

	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	if h.lastOK.IsZero() {
		if h.lastErr != nil {
			return fmt.Errorf("no snapshot collected yet: %w", h.lastErr)
		}
		return errors.New("no snapshot collected yet")
	}
	if h.maxFailures > 0 && h.failures >= h.maxFailures {
		return fmt.Errorf("last %d ticks failed: %w", h.failures, h.lastErr)
	}
	return nil
}

// record tracks tick outcomes for Ready.
func (h *Hub) record(err error) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	if err != nil {
		h.failures++
		h.lastErr = err
		return
	}
	h.failures = 0
	h.lastErr = nil
	h.lastOK = time.Now()
}

// push delivers frame to s, giving up after the push timeout. A push that
// outlives the timeout is abandoned; closing the subscriber unblocks it.
func (h *Hub) push(ctx context.Context, s Subscriber, frame *Frame) error {
	ctx, cancel := context.WithTimeout(ctx, h.pushTimeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("push panicked: %v", r)
			}
		}()
		errCh <- s.Push(ctx, frame)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("push timed out: %w", ctx.Err())
	}
}

// drop removes s from the registry and closes it.
func (h *Hub) drop(s Subscriber) {
	if h.registry.Unregister(s.ID()) {
		droppedTotal.Inc()
	}
	if err := s.Close(); err != nil {
		slog.Debug("failed to close subscriber",
			slog.String("subscriber", s.ID()),
			slog.String("error", err.Error()))
	}
}

// closeAll closes the registry so late subscribers are refused, then closes
// every member it held.
func (h *Hub) closeAll() {
	for _, s := range h.registry.Close() {
		if err := s.Close(); err != nil {
			slog.Debug("failed to close subscriber",
				slog.String("subscriber", s.ID()),
				slog.String("error", err.Error()))
		}
	}
}
