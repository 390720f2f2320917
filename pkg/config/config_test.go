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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/NVIDIA/hostpulse/pkg/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{KeyAllowOrigins, KeyWSInterval, KeyTopNProcs, KeyMonitorMode} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromViper_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, []string{"*"}, s.AllowOrigins)
	assert.Equal(t, 2*time.Second, s.Interval)
	assert.Equal(t, 5, s.TopN)
	assert.Equal(t, ModeAuto, s.MonitorMode)
}

func TestFromViper_Env(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, s *Settings)
		wantErr bool
	}{
		{
			name: "fractional interval",
			env:  map[string]string{KeyWSInterval: "0.5"},
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, 500*time.Millisecond, s.Interval)
			},
		},
		{
			name: "json origins",
			env:  map[string]string{KeyAllowOrigins: `["http://a.example","http://b.example"]`},
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, s.AllowOrigins)
			},
		},
		{
			name: "csv origins",
			env:  map[string]string{KeyAllowOrigins: "http://a.example, http://b.example,"},
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, s.AllowOrigins)
			},
		},
		{
			name: "zero top n",
			env:  map[string]string{KeyTopNProcs: "0"},
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, 0, s.TopN)
			},
		},
		{
			name: "mode is case insensitive",
			env:  map[string]string{KeyMonitorMode: "Container"},
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, ModeContainer, s.MonitorMode)
			},
		},
		{name: "zero interval", env: map[string]string{KeyWSInterval: "0"}, wantErr: true},
		{name: "negative interval", env: map[string]string{KeyWSInterval: "-1"}, wantErr: true},
		{name: "non numeric interval", env: map[string]string{KeyWSInterval: "soon"}, wantErr: true},
		{name: "negative top n", env: map[string]string{KeyTopNProcs: "-3"}, wantErr: true},
		{name: "fractional top n", env: map[string]string{KeyTopNProcs: "2.5"}, wantErr: true},
		{name: "unknown mode", env: map[string]string{KeyMonitorMode: "vm"}, wantErr: true},
		{name: "malformed json origins", env: map[string]string{KeyAllowOrigins: "[oops"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			s, err := FromViper(viper.New())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, cerrors.IsCode(err, cerrors.ErrCodeInvalidConfig))
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "hostpulse.env")
	content := "WS_INTERVAL=1.5\nTOP_N_PROCS=10\nMONITOR_MODE=host\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, s.Interval)
	assert.Equal(t, 10, s.TopN)
	assert.Equal(t, ModeHost, s.MonitorMode)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "hostpulse.env")
	require.NoError(t, os.WriteFile(path, []byte("TOP_N_PROCS=10\n"), 0o600))
	t.Setenv(KeyTopNProcs, "3")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TopN)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.True(t, cerrors.IsCode(err, cerrors.ErrCodeInvalidConfig))
}

func TestSettings_Validate(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	s.Interval = 0
	assert.Error(t, s.Validate())

	s = Default()
	s.TopN = -1
	assert.Error(t, s.Validate())

	s = Default()
	s.MonitorMode = "bogus"
	assert.Error(t, s.Validate())
}

func TestSettings_OriginAllowed(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"wildcard", []string{"*"}, "http://any.example", true},
		{"empty origin", []string{"http://a.example"}, "", true},
		{"listed", []string{"http://a.example"}, "http://a.example", true},
		{"trailing slash", []string{"http://a.example/"}, "http://a.example", true},
		{"case insensitive", []string{"http://A.example"}, "http://a.example", true},
		{"not listed", []string{"http://a.example"}, "http://b.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Settings{AllowOrigins: tt.allowed}
			assert.Equal(t, tt.want, s.OriginAllowed(tt.origin))
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" AUTO ")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	_, err = ParseMode("")
	assert.Error(t, err)
}
