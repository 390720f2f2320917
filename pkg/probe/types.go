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
)

// ErrUnsupported is returned by a probe call the platform cannot serve.
var ErrUnsupported = errors.New("metric not supported on this platform")

// Probe reads current OS or container metrics. Every call is synchronous,
// may fail on its own, and never affects other calls.
type Probe interface {
	// CPUPercent returns overall CPU utilization since the previous call.
	CPUPercent(ctx context.Context) (float64, error)
	// CPUCount returns the number of logical cores.
	CPUCount(ctx context.Context) (int, error)
	VirtualMemory(ctx context.Context) (Memory, error)
	SwapMemory(ctx context.Context) (Swap, error)
	// Mountpoints lists mounted physical filesystems.
	Mountpoints(ctx context.Context) ([]string, error)
	DiskUsage(ctx context.Context, mountpoint string) (DiskUsage, error)
	// NetCounters returns byte counters summed across all interfaces.
	NetCounters(ctx context.Context) (NetCounters, error)
	// BootTime returns host boot time in epoch seconds.
	BootTime(ctx context.Context) (uint64, error)
	// Processes enumerates the process table. Processes that exit during
	// enumeration are left out.
	Processes(ctx context.Context) ([]Process, error)

	LoadAvg(ctx context.Context) (LoadAvg, error)
	Temperatures(ctx context.Context) ([]Temperature, error)
	Fans(ctx context.Context) ([]Fan, error)
	// Battery returns nil without error when the machine has no battery.
	Battery(ctx context.Context) (*Battery, error)
}

// Detector reports whether the current process runs inside a container.
type Detector interface {
	InContainer(ctx context.Context) bool
}

// Memory is physical memory usage in bytes.
type Memory struct {
	Total     uint64
	Available uint64
	Used      uint64
	Free      uint64
	Percent   float64
}

// Swap is swap usage in bytes.
type Swap struct {
	Total   uint64
	Used    uint64
	Free    uint64
	Percent float64
}

// DiskUsage is usage of one filesystem in bytes.
type DiskUsage struct {
	Total   uint64
	Used    uint64
	Free    uint64
	Percent float64
}

// NetCounters are cumulative byte counters.
type NetCounters struct {
	BytesSent uint64
	BytesRecv uint64
}

// LoadAvg is the 1, 5 and 15 minute load average.
type LoadAvg struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// Temperature is one sensor reading in degrees Celsius. High and Critical
// are nil when the sensor does not report thresholds.
type Temperature struct {
	Group    string
	Label    string
	Current  float64
	High     *float64
	Critical *float64
}

// Fan is one fan speed reading in RPM.
type Fan struct {
	Group string
	Label string
	RPM   float64
}

// Battery is the state of the primary battery.
type Battery struct {
	Percent float64
	// SecsLeft is nil when plugged in or when the estimate is unknown.
	SecsLeft     *int64
	PowerPlugged *bool
}

// Process is one raw process table entry. CPUPercent and MemoryPercent are
// nil when the reading could not be taken.
type Process struct {
	PID           int32
	Name          string
	User          string
	CPUPercent    *float64
	MemoryPercent *float64
}
