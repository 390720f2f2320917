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

package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hostpulse/pkg/config"
	"github.com/NVIDIA/hostpulse/pkg/serializer"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{"valid yaml format", "yaml", serializer.FormatYAML, false},
		{"valid json format", "json", serializer.FormatJSON, false},
		{"valid table format", "table", serializer.FormatTable, false},
		{"upper case accepted", "JSON", serializer.FormatJSON, false},
		{"invalid format xml", "xml", "", true},
		{"empty format", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: tt.format},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if tt.wantErr {
						assert.Error(t, err)
						return nil
					}
					assert.NoError(t, err)
					assert.Equal(t, tt.wantFormat, got)
					return nil
				},
			}

			require.NoError(t, cmd.Run(context.Background(), []string{"test"}))
		})
	}
}

func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.KeyAllowOrigins, config.KeyWSInterval, config.KeyTopNProcs, config.KeyMonitorMode} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	// keep a stray .env in the working directory from leaking in
	t.Chdir(t.TempDir())
}

func TestSettingsFromCmd(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "hostpulse.env")
	require.NoError(t, os.WriteFile(envFile, []byte("TOP_N_PROCS=7\nMONITOR_MODE=host\n"), 0o600))

	tests := []struct {
		name     string
		args     []string
		wantTopN int
		wantMode config.Mode
		wantErr  bool
	}{
		{"defaults", nil, 5, config.ModeAuto, false},
		{"config file", []string{"--config", envFile}, 7, config.ModeHost, false},
		{"flag overrides file", []string{"--config", envFile, "--top", "2", "--mode", "container"}, 2, config.ModeContainer, false},
		{"zero top allowed", []string{"--top", "0"}, 0, config.ModeAuto, false},
		{"negative top rejected", []string{"--top=-1"}, 0, "", true},
		{"unknown mode rejected", []string{"--mode", "vm"}, 0, "", true},
		{"missing config file rejected", []string{"--config", "/nonexistent.env"}, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSettingsEnv(t)

			var (
				got    *config.Settings
				gotErr error
			)
			cmd := &cli.Command{
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "mode"},
					&cli.IntFlag{Name: "top"},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, gotErr = settingsFromCmd(c)
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, tt.args...)))

			if tt.wantErr {
				assert.Error(t, gotErr)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.wantTopN, got.TopN)
			assert.Equal(t, tt.wantMode, got.MonitorMode)
		})
	}
}
