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
	"os/exec"
	"runtime"
	"testing"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSensorKey(t *testing.T) {
	tests := []struct {
		key       string
		wantGroup string
		wantLabel string
	}{
		{"coretemp_core_0", "coretemp", "core_0"},
		{"acpitz", "acpitz", ""},
		{"nvme_composite", "nvme", "composite"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			g, l := splitSensorKey(tt.key)
			assert.Equal(t, tt.wantGroup, g)
			assert.Equal(t, tt.wantLabel, l)
		})
	}
}

func TestThreshold(t *testing.T) {
	assert.Nil(t, threshold(0))
	v := threshold(95)
	require.NotNil(t, v)
	assert.Equal(t, 95.0, *v)
}

func TestSystemProbe_Local(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping local machine probe in short mode")
	}

	p := NewSystemProbe()
	ctx := context.Background()

	n, err := p.CPUCount(ctx)
	require.NoError(t, err)
	assert.Positive(t, n)

	m, err := p.VirtualMemory(ctx)
	require.NoError(t, err)
	assert.Positive(t, m.Total)

	procs, err := p.Processes(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, procs)
}

func TestVanished(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"process not running", process.ErrorProcessNotRunning, true},
		{"wrapped not running", fmt.Errorf("read status: %w", process.ErrorProcessNotRunning), true},
		{"wrapped not exist", fmt.Errorf("open /proc/1234/stat: %w", fs.ErrNotExist), true},
		{"permission denied", fs.ErrPermission, false},
		{"unrelated", errors.New("parse error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vanished(tt.err))
		})
	}
}

// exitedProcess returns a handle to a child process that has already been
// killed and reaped.
func exitedProcess(t *testing.T) *process.Process {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("requires /proc")
	}
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())

	proc, err := process.NewProcessWithContext(context.Background(), int32(cmd.Process.Pid))
	require.NoError(t, err)

	require.NoError(t, cmd.Process.Kill())
	_ = cmd.Wait()
	return proc
}

func TestReadProcess_ExitedBetweenListAndRead(t *testing.T) {
	proc := exitedProcess(t)

	_, ok := readProcess(context.Background(), proc)
	assert.False(t, ok)
}

func TestSystemProbe_ProcessesSkipsExited(t *testing.T) {
	proc := exitedProcess(t)

	p := NewSystemProbe()
	p.procs[proc.Pid] = proc

	procs, err := p.Processes(context.Background())
	require.NoError(t, err)
	for _, entry := range procs {
		assert.NotEqual(t, proc.Pid, entry.PID)
	}
	assert.NotContains(t, p.procs, proc.Pid)
}
