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

package probe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/shirou/gopsutil/v4/sensors"
)

// SystemProbe reads metrics of the local machine through gopsutil, with
// fans and battery read from sysfs.
type SystemProbe struct {
	sysfs *SysfsReader

	// procs keeps process handles between calls so per-process CPU percent
	// is measured against the previous enumeration.
	mu    sync.Mutex
	procs map[int32]*process.Process
}

// NewSystemProbe creates a probe for the local machine.
func NewSystemProbe() *SystemProbe {
	return &SystemProbe{
		sysfs: NewSysfsReader(),
		procs: make(map[int32]*process.Process),
	}
}

// CPUPercent implements Probe.
func (p *SystemProbe) CPUPercent(ctx context.Context) (float64, error) {
	pct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, fmt.Errorf("failed to read cpu percent: %w", err)
	}
	if len(pct) == 0 {
		return 0, fmt.Errorf("cpu percent returned no values")
	}
	return pct[0], nil
}

// CPUCount implements Probe.
func (p *SystemProbe) CPUCount(ctx context.Context) (int, error) {
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("failed to read cpu count: %w", err)
	}
	return n, nil
}

// VirtualMemory implements Probe.
func (p *SystemProbe) VirtualMemory(ctx context.Context) (Memory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Memory{}, fmt.Errorf("failed to read virtual memory: %w", err)
	}
	return Memory{
		Total:     vm.Total,
		Available: vm.Available,
		Used:      vm.Used,
		Free:      vm.Free,
		Percent:   vm.UsedPercent,
	}, nil
}

// SwapMemory implements Probe.
func (p *SystemProbe) SwapMemory(ctx context.Context) (Swap, error) {
	sw, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return Swap{}, fmt.Errorf("failed to read swap memory: %w", err)
	}
	return Swap{
		Total:   sw.Total,
		Used:    sw.Used,
		Free:    sw.Free,
		Percent: sw.UsedPercent,
	}, nil
}

// Mountpoints implements Probe.
func (p *SystemProbe) Mountpoints(ctx context.Context) ([]string, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	seen := make(map[string]struct{}, len(parts))
	mounts := make([]string, 0, len(parts))
	for _, part := range parts {
		if _, dup := seen[part.Mountpoint]; dup {
			continue
		}
		seen[part.Mountpoint] = struct{}{}
		mounts = append(mounts, part.Mountpoint)
	}
	return mounts, nil
}

// DiskUsage implements Probe.
func (p *SystemProbe) DiskUsage(ctx context.Context, mountpoint string) (DiskUsage, error) {
	u, err := disk.UsageWithContext(ctx, mountpoint)
	if err != nil {
		return DiskUsage{}, fmt.Errorf("failed to read usage of %s: %w", mountpoint, err)
	}
	return DiskUsage{
		Total:   u.Total,
		Used:    u.Used,
		Free:    u.Free,
		Percent: u.UsedPercent,
	}, nil
}

// NetCounters implements Probe.
func (p *SystemProbe) NetCounters(ctx context.Context) (NetCounters, error) {
	io, err := psnet.IOCountersWithContext(ctx, false)
	if err != nil {
		return NetCounters{}, fmt.Errorf("failed to read network counters: %w", err)
	}
	if len(io) == 0 {
		return NetCounters{}, fmt.Errorf("network counters returned no values")
	}
	return NetCounters{
		BytesSent: io[0].BytesSent,
		BytesRecv: io[0].BytesRecv,
	}, nil
}

// BootTime implements Probe.
func (p *SystemProbe) BootTime(ctx context.Context) (uint64, error) {
	bt, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read boot time: %w", err)
	}
	return bt, nil
}

// Processes implements Probe.
func (p *SystemProbe) Processes(ctx context.Context) ([]Process, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	live := make(map[int32]*process.Process, len(pids))
	out := make([]Process, 0, len(pids))

	for _, pid := range pids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		proc, ok := p.procs[pid]
		if !ok {
			proc, err = process.NewProcessWithContext(ctx, pid)
			if err != nil {
				continue
			}
		}

		entry, ok := readProcess(ctx, proc)
		if !ok {
			continue
		}
		live[pid] = proc
		out = append(out, entry)
	}

	p.procs = live
	return out, nil
}

// readProcess returns false when the process exited mid-read.
func readProcess(ctx context.Context, proc *process.Process) (Process, bool) {
	name, err := proc.NameWithContext(ctx)
	if err != nil && vanished(err) {
		return Process{}, false
	}

	entry := Process{PID: proc.Pid, Name: name}

	if user, err := proc.UsernameWithContext(ctx); err == nil {
		entry.User = user
	}

	cpuPct, err := proc.PercentWithContext(ctx, 0)
	switch {
	case err == nil:
		entry.CPUPercent = &cpuPct
	case vanished(err):
		return Process{}, false
	}

	if memPct, err := proc.MemoryPercentWithContext(ctx); err == nil {
		v := float64(memPct)
		entry.MemoryPercent = &v
	}

	return entry, true
}

func vanished(err error) bool {
	return errors.Is(err, process.ErrorProcessNotRunning) || errors.Is(err, fs.ErrNotExist)
}

// LoadAvg implements Probe.
func (p *SystemProbe) LoadAvg(ctx context.Context) (LoadAvg, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadAvg{}, fmt.Errorf("failed to read load average: %w", err)
	}
	return LoadAvg{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}, nil
}

// Temperatures implements Probe. Partial results are returned when some
// sensors could not be read.
func (p *SystemProbe) Temperatures(ctx context.Context) ([]Temperature, error) {
	stats, err := sensors.TemperaturesWithContext(ctx)
	if err != nil && len(stats) == 0 {
		return nil, fmt.Errorf("failed to read temperatures: %w", err)
	}

	out := make([]Temperature, 0, len(stats))
	for _, s := range stats {
		group, label := splitSensorKey(s.SensorKey)
		out = append(out, Temperature{
			Group:    group,
			Label:    label,
			Current:  s.Temperature,
			High:     threshold(s.High),
			Critical: threshold(s.Critical),
		})
	}
	return out, nil
}

// splitSensorKey splits keys such as "coretemp_core_0" into the chip name
// and the sensor label.
func splitSensorKey(key string) (string, string) {
	group, label, found := strings.Cut(key, "_")
	if !found {
		return key, ""
	}
	return group, label
}

func threshold(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

// Fans implements Probe.
func (p *SystemProbe) Fans(ctx context.Context) ([]Fan, error) {
	return p.sysfs.Fans(ctx)
}

// Battery implements Probe.
func (p *SystemProbe) Battery(ctx context.Context) (*Battery, error) {
	return p.sysfs.Battery(ctx)
}
