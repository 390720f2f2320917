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
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/NVIDIA/hostpulse/pkg/defaults"
	cerrors "github.com/NVIDIA/hostpulse/pkg/errors"
)

// Recognized configuration keys. Each key is read from the environment
// variable of the same name, or from the dotenv file.
const (
	KeyAllowOrigins = "ALLOW_ORIGINS"
	KeyWSInterval   = "WS_INTERVAL"
	KeyTopNProcs    = "TOP_N_PROCS"
	KeyMonitorMode  = "MONITOR_MODE"

	// DefaultEnvFile is read when present and no explicit file is given.
	DefaultEnvFile = ".env"

	// AllOrigins permits any cross-origin caller.
	AllOrigins = "*"
)

// Mode selects whether snapshots are reported as host or container metrics.
type Mode string

const (
	// ModeAuto detects containment at sample time.
	ModeAuto Mode = "auto"
	// ModeHost always reports host.
	ModeHost Mode = "host"
	// ModeContainer always reports container.
	ModeContainer Mode = "container"
)

// ParseMode converts a string into a Mode, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAuto, ModeHost, ModeContainer:
		return m, nil
	default:
		return "", fmt.Errorf("unknown monitor mode %q (want auto, host or container)", s)
	}
}

// Settings is the process-wide configuration, read-only after startup.
type Settings struct {
	// AllowOrigins lists permitted cross-origin hosts. "*" allows all.
	AllowOrigins []string
	// Interval is the time between broadcast ticks.
	Interval time.Duration
	// TopN is the number of ranked processes per snapshot.
	TopN int
	// MonitorMode selects host, container or auto detection.
	MonitorMode Mode
}

// Default returns settings with all defaults applied.
func Default() *Settings {
	return &Settings{
		AllowOrigins: []string{AllOrigins},
		Interval:     defaults.BroadcastInterval,
		TopN:         defaults.TopProcesses,
		MonitorMode:  ModeAuto,
	}
}

// Load reads settings from the dotenv file at path and from the environment.
// Environment variables take precedence over the file. When path is empty,
// DefaultEnvFile is used if it exists. An explicit path that cannot be read
// is an error.
func Load(path string) (*Settings, error) {
	v := viper.New()

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			file = DefaultEnvFile
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, cerrors.WrapWithContext(cerrors.ErrCodeInvalidConfig,
				"failed to read config file", err, map[string]any{"path": file})
		}
	}

	return FromViper(v)
}

// FromViper builds settings from a viper instance, binding the recognized
// keys to the environment and applying defaults.
func FromViper(v *viper.Viper) (*Settings, error) {
	d := Default()
	v.SetDefault(KeyAllowOrigins, d.AllowOrigins)
	v.SetDefault(KeyWSInterval, d.Interval.Seconds())
	v.SetDefault(KeyTopNProcs, d.TopN)
	v.SetDefault(KeyMonitorMode, string(d.MonitorMode))
	v.AutomaticEnv()

	origins, err := parseOrigins(v.Get(KeyAllowOrigins))
	if err != nil {
		return nil, invalid(KeyAllowOrigins, err)
	}

	seconds, err := floatValue(v.Get(KeyWSInterval))
	if err != nil {
		return nil, invalid(KeyWSInterval, err)
	}
	if seconds <= 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return nil, invalid(KeyWSInterval, fmt.Errorf("must be a positive number of seconds, got %v", seconds))
	}

	topN, err := intValue(v.Get(KeyTopNProcs))
	if err != nil {
		return nil, invalid(KeyTopNProcs, err)
	}

	mode, err := ParseMode(v.GetString(KeyMonitorMode))
	if err != nil {
		return nil, invalid(KeyMonitorMode, err)
	}

	s := &Settings{
		AllowOrigins: origins,
		Interval:     time.Duration(seconds * float64(time.Second)),
		TopN:         topN,
		MonitorMode:  mode,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks settings ranges.
func (s *Settings) Validate() error {
	if s.Interval <= 0 {
		return invalid(KeyWSInterval, fmt.Errorf("must be positive, got %v", s.Interval))
	}
	if s.TopN < 0 {
		return invalid(KeyTopNProcs, fmt.Errorf("must not be negative, got %d", s.TopN))
	}
	if _, err := ParseMode(string(s.MonitorMode)); err != nil {
		return invalid(KeyMonitorMode, err)
	}
	return nil
}

// OriginAllowed reports whether a cross-origin request from origin is permitted.
// An empty origin (same-origin or non-browser client) is always allowed.
func (s *Settings) OriginAllowed(origin string) bool {
	if origin == "" || slices.Contains(s.AllowOrigins, AllOrigins) {
		return true
	}
	for _, o := range s.AllowOrigins {
		if strings.EqualFold(strings.TrimSuffix(o, "/"), strings.TrimSuffix(origin, "/")) {
			return true
		}
	}
	return false
}

func invalid(key string, cause error) error {
	return cerrors.WrapWithContext(cerrors.ErrCodeInvalidConfig,
		fmt.Sprintf("invalid %s", key), cause, map[string]any{"key": key})
}

// parseOrigins accepts a JSON list, a comma-separated string or a string slice.
func parseOrigins(raw any) ([]string, error) {
	var list []string
	switch val := raw.(type) {
	case []string:
		list = val
	case []any:
		for _, item := range val {
			list = append(list, fmt.Sprint(item))
		}
	case string:
		trimmed := strings.TrimSpace(val)
		if strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
				return nil, fmt.Errorf("malformed origin list: %w", err)
			}
			break
		}
		list = strings.Split(trimmed, ",")
	default:
		return nil, fmt.Errorf("unsupported origin list type %T", raw)
	}

	out := make([]string, 0, len(list))
	for _, o := range list {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("origin list is empty")
	}
	return out, nil
}

func floatValue(raw any) (float64, error) {
	switch val := raw.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", val)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported number type %T", raw)
	}
}

func intValue(raw any) (int, error) {
	switch val := raw.(type) {
	case int:
		return val, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported integer type %T", raw)
	}
}
