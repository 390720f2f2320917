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

package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseConfig(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("ADDRESS", "")
		t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "")

		cfg := parseConfig()

		assert.Equal(t, "", cfg.Address)
		assert.Equal(t, 8080, cfg.Port)
		assert.EqualValues(t, 100, cfg.RateLimit)
		assert.Equal(t, 200, cfg.RateLimitBurst)
		assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
		assert.Equal(t, 5*time.Second, cfg.ReadHeaderTimeout)
		assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
		assert.Equal(t, 120*time.Second, cfg.IdleTimeout)
		assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
		assert.Empty(t, cfg.AllowOrigins)
	})

	tests := []struct {
		name     string
		env      map[string]string
		port     int
		address  string
		shutdown time.Duration
	}{
		{"custom port", map[string]string{"PORT": "9090"}, 9090, "", 30 * time.Second},
		{"invalid port uses default", map[string]string{"PORT": "invalid"}, 8080, "", 30 * time.Second},
		{"out of range port uses default", map[string]string{"PORT": "70000"}, 8080, "", 30 * time.Second},
		{"address", map[string]string{"ADDRESS": "127.0.0.1"}, 8080, "127.0.0.1", 30 * time.Second},
		{"shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT_SECONDS": "5"}, 8080, "", 5 * time.Second},
		{"negative shutdown ignored", map[string]string{"SHUTDOWN_TIMEOUT_SECONDS": "-1"}, 8080, "", 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", "")
			t.Setenv("ADDRESS", "")
			t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := parseConfig()

			assert.Equal(t, tt.port, cfg.Port)
			assert.Equal(t, tt.address, cfg.Address)
			assert.Equal(t, tt.shutdown, cfg.ShutdownTimeout)
		})
	}
}
