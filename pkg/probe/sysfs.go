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
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/NVIDIA/hostpulse/pkg/hostfs"
)

// SysfsReader reads fan and battery state from the Linux sysfs tree.
type SysfsReader struct {
	// Root is the sysfs mount point.
	Root   string
	reader *hostfs.Reader
}

// NewSysfsReader returns a reader rooted at the host sysfs.
func NewSysfsReader() *SysfsReader {
	return &SysfsReader{
		Root:   hostfs.SysPath(),
		reader: hostfs.NewReader(),
	}
}

func (s *SysfsReader) supported() bool {
	return runtime.GOOS == "linux"
}

// Fans returns hwmon fan readings grouped by chip name.
func (s *SysfsReader) Fans(ctx context.Context) ([]Fan, error) {
	if !s.supported() {
		return nil, ErrUnsupported
	}

	hwmon := filepath.Join(s.Root, "class", "hwmon")
	files, _ := filepath.Glob(filepath.Join(hwmon, "hwmon*", "fan*_input"))
	if len(files) == 0 {
		files, _ = filepath.Glob(filepath.Join(hwmon, "hwmon*", "device", "fan*_input"))
	}
	if len(files) == 0 {
		if _, err := os.Stat(hwmon); err != nil {
			return nil, ErrUnsupported
		}
		return []Fan{}, nil
	}
	sort.Strings(files)

	fans := make([]Fan, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rpm, err := s.reader.GetFloat(f)
		if err != nil {
			continue
		}

		base := strings.TrimSuffix(f, "_input")
		group, err := s.reader.GetString(filepath.Join(filepath.Dir(base), "name"))
		if err != nil {
			group = filepath.Base(filepath.Dir(base))
		}
		label, _ := s.reader.GetString(base + "_label")

		fans = append(fans, Fan{Group: group, Label: label, RPM: rpm})
	}
	return fans, nil
}

// Battery returns the state of the first battery power supply, or nil when
// there is none.
func (s *SysfsReader) Battery(ctx context.Context) (*Battery, error) {
	if !s.supported() {
		return nil, ErrUnsupported
	}

	supplies := filepath.Join(s.Root, "class", "power_supply")
	entries, err := os.ReadDir(supplies)
	if err != nil {
		return nil, ErrUnsupported
	}

	var names []string
	for _, e := range entries {
		n := e.Name()
		if strings.HasPrefix(n, "BAT") || strings.Contains(strings.ToLower(n), "battery") {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	sort.Strings(names)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := filepath.Join(supplies, names[0])
	energyNow, hasEnergyNow := s.first(filepath.Join(root, "energy_now"), filepath.Join(root, "charge_now"))
	powerNow, hasPowerNow := s.first(filepath.Join(root, "power_now"), filepath.Join(root, "current_now"))
	energyFull, hasEnergyFull := s.first(filepath.Join(root, "energy_full"), filepath.Join(root, "charge_full"))
	timeToEmpty, hasTimeToEmpty := s.first(filepath.Join(root, "time_to_empty_now"))

	b := &Battery{}
	switch {
	case hasEnergyNow && hasEnergyFull && energyFull > 0:
		b.Percent = 100 * energyNow / energyFull
	default:
		capacity, err := s.reader.GetFloat(filepath.Join(root, "capacity"))
		if err != nil {
			return nil, nil
		}
		b.Percent = capacity
	}

	if online, ok := s.first(filepath.Join(supplies, "AC0", "online"), filepath.Join(supplies, "AC", "online")); ok {
		plugged := online == 1
		b.PowerPlugged = &plugged
	} else if status, err := s.reader.GetString(filepath.Join(root, "status")); err == nil {
		switch strings.ToLower(status) {
		case "discharging":
			plugged := false
			b.PowerPlugged = &plugged
		case "charging", "full":
			plugged := true
			b.PowerPlugged = &plugged
		}
	}

	if b.PowerPlugged != nil && *b.PowerPlugged {
		return b, nil
	}

	switch {
	case hasEnergyNow && hasPowerNow && powerNow != 0:
		secs := int64(energyNow / math.Abs(powerNow) * 3600)
		b.SecsLeft = &secs
	case hasTimeToEmpty:
		secs := int64(timeToEmpty * 60)
		b.SecsLeft = &secs
	}

	return b, nil
}

// first returns the value of the first readable numeric file.
func (s *SysfsReader) first(paths ...string) (float64, bool) {
	for _, p := range paths {
		if v, err := s.reader.GetFloat(p); err == nil {
			return v, true
		}
	}
	return 0, false
}
