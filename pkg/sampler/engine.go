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

package sampler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/hostpulse/pkg/config"
	"github.com/NVIDIA/hostpulse/pkg/defaults"
	cerrors "github.com/NVIDIA/hostpulse/pkg/errors"
	"github.com/NVIDIA/hostpulse/pkg/probe"
	"github.com/NVIDIA/hostpulse/pkg/snapshot"
)

// Engine assembles snapshots from one probe pass. Each Engine owns its own
// rate state, so independent engines never influence each other.
type Engine struct {
	probe        probe.Probe
	detector     probe.Detector
	mode         config.Mode
	topN         int
	probeTimeout time.Duration
	now          func() time.Time
	machine      func() string
	rates        RateTracker
}

// Option configures an Engine.
type Option func(*Engine)

// WithProbe sets the metrics probe. Default is the local SystemProbe.
func WithProbe(p probe.Probe) Option {
	return func(e *Engine) {
		e.probe = p
	}
}

// WithDetector sets the container detector used in auto mode.
func WithDetector(d probe.Detector) Option {
	return func(e *Engine) {
		e.detector = d
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMachineName fixes the reported machine name.
func WithMachineName(name string) Option {
	return func(e *Engine) {
		e.machine = func() string { return name }
	}
}

// WithProbeTimeout bounds each individual probe call.
func WithProbeTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.probeTimeout = d
	}
}

// New creates an Engine for the given settings.
func New(settings *config.Settings, opts ...Option) *Engine {
	if settings == nil {
		settings = config.Default()
	}

	e := &Engine{
		mode:         settings.MonitorMode,
		topN:         settings.TopN,
		probeTimeout: defaults.ProbeTimeout,
		now:          time.Now,
		machine:      MachineName,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.probe == nil {
		e.probe = probe.NewSystemProbe()
	}
	if e.detector == nil {
		e.detector = probe.NewEnvDetector()
	}
	return e
}

// MachineName identifies the sampled node: NODE_NAME, then
// KUBERNETES_NODE_NAME, then the host name.
func MachineName() string {
	if name := os.Getenv("NODE_NAME"); name != "" {
		return name
	}
	if name := os.Getenv("KUBERNETES_NODE_NAME"); name != "" {
		return name
	}
	name, err := os.Hostname()
	if err != nil {
		slog.Debug("failed to read host name", "error", err)
		return ""
	}
	return name
}

// Source resolves the monitor mode for one sample.
func (e *Engine) Source(ctx context.Context) snapshot.Source {
	switch e.mode {
	case config.ModeHost:
		return snapshot.SourceHost
	case config.ModeContainer:
		return snapshot.SourceContainer
	}
	if e.detector.InContainer(ctx) {
		return snapshot.SourceContainer
	}
	return snapshot.SourceHost
}

// Collect performs one probe pass and returns a fresh Snapshot. It fails only
// when a mandatory probe fails; optional metrics degrade to empty values.
func (e *Engine) Collect(ctx context.Context) (*snapshot.Snapshot, error) {
	start := time.Now()
	defer func() {
		collectDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, defaults.CollectTimeout)
	defer cancel()

	now := e.now().UTC()
	source := e.Source(ctx)

	var (
		cpuPercent float64
		cpuCores   int
		memory     probe.Memory
		swap       probe.Swap
		netIO      probe.NetCounters
		netAt      time.Time
		bootTime   uint64
		procs      []probe.Process
		disks      map[string]snapshot.DiskUsage

		loadAvg  probe.Optional[probe.LoadAvg]
		temps    probe.Optional[[]probe.Temperature]
		fans     probe.Optional[[]probe.Fan]
		battery  probe.Optional[*probe.Battery]
		probeTTL = e.probeTimeout
	)

	g, gctx := errgroup.WithContext(ctx)

	mandatory(gctx, g, probeTTL, "cpu_percent", e.probe.CPUPercent, &cpuPercent)
	mandatory(gctx, g, probeTTL, "cpu_count", e.probe.CPUCount, &cpuCores)
	mandatory(gctx, g, probeTTL, "virtual_memory", e.probe.VirtualMemory, &memory)
	mandatory(gctx, g, probeTTL, "swap_memory", e.probe.SwapMemory, &swap)
	// The rate window ends when the counters are read, not when the pass starts.
	g.Go(func() error {
		v, err := probe.Invoke(gctx, probeTTL, "net_counters", e.probe.NetCounters)
		if err != nil {
			return err
		}
		netIO, netAt = v, e.now().UTC()
		return nil
	})
	mandatory(gctx, g, probeTTL, "boot_time", e.probe.BootTime, &bootTime)
	mandatory(gctx, g, probeTTL, "processes", e.probe.Processes, &procs)

	g.Go(func() error {
		var err error
		disks, err = e.collectDisks(gctx)
		return err
	})

	g.Go(func() error {
		loadAvg = optional(gctx, probeTTL, "load_avg", e.probe.LoadAvg)
		return nil
	})
	g.Go(func() error {
		temps = optional(gctx, probeTTL, "temperatures", e.probe.Temperatures)
		return nil
	})
	g.Go(func() error {
		fans = optional(gctx, probeTTL, "fans", e.probe.Fans)
		return nil
	})
	g.Go(func() error {
		battery = optional(gctx, probeTTL, "battery", e.probe.Battery)
		return nil
	})

	if err := g.Wait(); err != nil {
		collectTotal.WithLabelValues("error").Inc()
		slog.Error("snapshot collection failed", "error", err)
		var se *cerrors.StructuredError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, cerrors.Wrap(cerrors.ErrCodeInternal, "snapshot collection failed", err)
	}

	snap := snapshot.New()
	snap.Source = source
	snap.Machine = e.machine()
	snap.Timestamp = now
	snap.CPUPercent = cpuPercent
	snap.CPUCores = cpuCores
	snap.Memory = snapshot.Memory(memory)
	snap.Swap = snapshot.Swap(swap)
	snap.Disks = disks
	snap.NetCumulative = snapshot.NetCounters(netIO)
	snap.NetRate = e.rates.Rate(netAt, netIO.BytesSent, netIO.BytesRecv)
	snap.BootTime = bootTime
	snap.TopProcesses = Rank(procs, e.topN)

	if l, ok := loadAvg.Get(); ok {
		snap.LoadAvg = &snapshot.LoadAvg{l.Load1, l.Load5, l.Load15}
	}
	if readings, ok := temps.Get(); ok {
		for _, t := range readings {
			snap.Sensors[t.Group] = append(snap.Sensors[t.Group], snapshot.SensorReading{
				Label:    t.Label,
				Current:  t.Current,
				High:     t.High,
				Critical: t.Critical,
			})
		}
	}
	if readings, ok := fans.Get(); ok {
		for _, f := range readings {
			snap.Fans[f.Group] = append(snap.Fans[f.Group], snapshot.FanReading{
				Label:   f.Label,
				Current: f.RPM,
			})
		}
	}
	if b, ok := battery.Get(); ok && b != nil {
		snap.Battery = &snapshot.Battery{
			Percent:      b.Percent,
			SecsLeft:     b.SecsLeft,
			PowerPlugged: b.PowerPlugged,
		}
	}

	collectTotal.WithLabelValues("success").Inc()
	slog.Debug("snapshot collected",
		slog.String("source", string(snap.Source)),
		slog.Int("processes", len(procs)),
		slog.Int("disks", len(snap.Disks)),
		slog.Duration("duration", time.Since(start)))

	return snap, nil
}

// collectDisks lists mount points and reads each one's usage. Mounts whose
// usage cannot be read are left out.
func (e *Engine) collectDisks(ctx context.Context) (map[string]snapshot.DiskUsage, error) {
	mounts, err := probe.Invoke(ctx, e.probeTimeout, "mountpoints", e.probe.Mountpoints)
	if err != nil {
		return nil, err
	}

	disks := make(map[string]snapshot.DiskUsage, len(mounts))
	for _, m := range mounts {
		usage := probe.Call(ctx, e.probeTimeout, "disk_usage", func(ctx context.Context) (probe.DiskUsage, error) {
			return e.probe.DiskUsage(ctx, m)
		})
		u, ok := usage.Get()
		if !ok {
			diskSkippedTotal.Inc()
			slog.Debug("skipping unreadable mount point", "mountpoint", m)
			continue
		}
		disks[m] = snapshot.DiskUsage(u)
	}
	return disks, nil
}

func mandatory[T any](ctx context.Context, g *errgroup.Group, timeout time.Duration, name string, fn func(context.Context) (T, error), dst *T) {
	g.Go(func() error {
		v, err := probe.Invoke(ctx, timeout, name, fn)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	})
}

func optional[T any](ctx context.Context, timeout time.Duration, name string, fn func(context.Context) (T, error)) probe.Optional[T] {
	res := probe.Call(ctx, timeout, name, fn)
	if !res.Valid {
		probeUnsupportedTotal.WithLabelValues(name).Inc()
	}
	return res
}
