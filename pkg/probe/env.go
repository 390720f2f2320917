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
	"log/slog"
	"os"

	"github.com/NVIDIA/hostpulse/pkg/hostfs"
)

const (
	// DockerMarkerPath is created by the Docker runtime in every container.
	DockerMarkerPath = "/.dockerenv"
	// InitCgroupPath lists the control groups of PID 1 as seen by this process.
	InitCgroupPath = "/proc/1/cgroup"
)

// containerCgroups are substrings of a cgroup path that indicate containment.
var containerCgroups = []string{"docker", "kubepods"}

// EnvDetector detects containment from the Docker marker file and the init
// process control groups. Unreadable files count as not detected.
type EnvDetector struct {
	MarkerPath string
	CgroupPath string
	reader     *hostfs.Reader
}

// NewEnvDetector returns a detector using the well-known paths.
func NewEnvDetector() *EnvDetector {
	return &EnvDetector{
		MarkerPath: DockerMarkerPath,
		CgroupPath: InitCgroupPath,
		reader:     hostfs.NewReader(hostfs.WithMaxSize(1 << 20)),
	}
}

// InContainer implements Detector.
func (d *EnvDetector) InContainer(ctx context.Context) bool {
	if _, err := os.Stat(d.MarkerPath); err == nil {
		return true
	}

	if ctx.Err() != nil {
		return false
	}

	found, err := d.reader.Contains(d.CgroupPath, containerCgroups...)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Debug("failed to read init cgroup", "path", d.CgroupPath, "error", err)
		}
		return false
	}
	return found
}

// StaticDetector always reports the same result.
type StaticDetector bool

// InContainer implements Detector.
func (d StaticDetector) InContainer(context.Context) bool {
	return bool(d)
}
