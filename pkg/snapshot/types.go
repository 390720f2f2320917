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

package snapshot

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies what a snapshot pertains to.
type Source string

const (
	// SourceHost means metrics describe the host machine.
	SourceHost Source = "host"
	// SourceContainer means metrics describe the container the process runs in.
	SourceContainer Source = "container"
)

// ParseSource converts a string into a Source.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceHost:
		return SourceHost, nil
	case SourceContainer:
		return SourceContainer, nil
	default:
		return "", fmt.Errorf("unknown source %q", s)
	}
}

// Snapshot is one point-in-time capture of all sampled metrics.
// A Snapshot is never modified after it is returned by the sampler.
type Snapshot struct {
	Source        Source                     `json:"source" yaml:"source"`
	Machine       string                     `json:"machine" yaml:"machine"`
	Timestamp     time.Time                  `json:"timestamp" yaml:"timestamp"`
	CPUPercent    float64                    `json:"cpu_percent" yaml:"cpu_percent"`
	CPUCores      int                        `json:"cpu_cores" yaml:"cpu_cores"`
	LoadAvg       *LoadAvg                   `json:"load_avg" yaml:"load_avg"`
	Memory        Memory                     `json:"memory" yaml:"memory"`
	Swap          Swap                       `json:"swap" yaml:"swap"`
	Sensors       map[string][]SensorReading `json:"sensors" yaml:"sensors"`
	Fans          map[string][]FanReading    `json:"fans" yaml:"fans"`
	Battery       *Battery                   `json:"battery" yaml:"battery"`
	Disks         map[string]DiskUsage       `json:"disks" yaml:"disks"`
	NetCumulative NetCounters                `json:"net_cumulative" yaml:"net_cumulative"`
	NetRate       NetRate                    `json:"net_rate" yaml:"net_rate"`
	BootTime      uint64                     `json:"boot_time" yaml:"boot_time"`
	TopProcesses  []Process                  `json:"top_processes" yaml:"top_processes"`
}

// LoadAvg is the 1, 5 and 15 minute load average.
// It is serialized as a three element array.
type LoadAvg [3]float64

// Memory describes physical memory usage in bytes.
type Memory struct {
	Total     uint64  `json:"total" yaml:"total"`
	Available uint64  `json:"available" yaml:"available"`
	Used      uint64  `json:"used" yaml:"used"`
	Free      uint64  `json:"free" yaml:"free"`
	Percent   float64 `json:"percent" yaml:"percent"`
}

// Swap describes swap usage in bytes.
type Swap struct {
	Total   uint64  `json:"total" yaml:"total"`
	Used    uint64  `json:"used" yaml:"used"`
	Free    uint64  `json:"free" yaml:"free"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// SensorReading is one temperature reading in degrees Celsius.
type SensorReading struct {
	Label    string   `json:"label" yaml:"label"`
	Current  float64  `json:"current" yaml:"current"`
	High     *float64 `json:"high" yaml:"high"`
	Critical *float64 `json:"critical" yaml:"critical"`
}

// FanReading is one fan speed reading in RPM.
type FanReading struct {
	Label   string  `json:"label" yaml:"label"`
	Current float64 `json:"current" yaml:"current"`
}

// Battery describes the battery state, when a battery exists.
type Battery struct {
	Percent      float64 `json:"percent" yaml:"percent"`
	SecsLeft     *int64  `json:"secs_left" yaml:"secs_left"`
	PowerPlugged *bool   `json:"power_plugged" yaml:"power_plugged"`
}

// DiskUsage describes usage of one mounted filesystem in bytes.
type DiskUsage struct {
	Total   uint64  `json:"total" yaml:"total"`
	Used    uint64  `json:"used" yaml:"used"`
	Free    uint64  `json:"free" yaml:"free"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// NetCounters are cumulative byte counters across all interfaces.
type NetCounters struct {
	BytesSent uint64 `json:"bytes_sent" yaml:"bytes_sent"`
	BytesRecv uint64 `json:"bytes_recv" yaml:"bytes_recv"`
}

// NetRate is network throughput in bits per second.
type NetRate struct {
	UpBps   float64 `json:"up_bps" yaml:"up_bps"`
	DownBps float64 `json:"down_bps" yaml:"down_bps"`
}

// Process is one entry of the ranked process table.
type Process struct {
	PID           int32   `json:"pid" yaml:"pid"`
	Name          string  `json:"name" yaml:"name"`
	User          string  `json:"user" yaml:"user"`
	CPUPercent    float64 `json:"cpu_percent" yaml:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent" yaml:"memory_percent"`
}

// New returns a Snapshot with all collections initialized, so an encoded
// snapshot is structurally complete even when optional metrics are missing.
func New() *Snapshot {
	return &Snapshot{
		Sensors:      make(map[string][]SensorReading),
		Fans:         make(map[string][]FanReading),
		Disks:        make(map[string]DiskUsage),
		TopProcesses: make([]Process, 0),
	}
}
