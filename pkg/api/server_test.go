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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/hostpulse/pkg/config"
	"github.com/NVIDIA/hostpulse/pkg/server"
)

func TestConstants(t *testing.T) {
	assert.Equal(t, "hostpulsed", name)
	assert.Equal(t, "dev", versionDefault)
	assert.NotEmpty(t, version)
	assert.NotEmpty(t, commit)
	assert.NotEmpty(t, date)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func getReady(t *testing.T, port string) (int, server.HealthResponse) {
	t.Helper()
	var body server.HealthResponse
	resp, err := http.Get("http://127.0.0.1:" + port + "/ready")
	if err != nil {
		return 0, body
	}
	defer resp.Body.Close()
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestServiceRun(t *testing.T) {
	port := strconv.Itoa(freePort(t))
	t.Setenv("ADDRESS", "127.0.0.1")
	t.Setenv("PORT", port)

	settings := config.Default()
	settings.Interval = 20 * time.Millisecond
	c := &fakeCollector{}
	svc := NewService(settings, c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()

	// the hub samples on every tick even with no subscribers
	require.Eventually(t, func() bool { return c.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		code, _ := getReady(t, port)
		return code == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
	assert.Error(t, svc.Hub().Ready())
}

func TestServiceRun_NotReadyWhileSamplingFails(t *testing.T) {
	port := strconv.Itoa(freePort(t))
	t.Setenv("ADDRESS", "127.0.0.1")
	t.Setenv("PORT", port)

	settings := config.Default()
	settings.Interval = 20 * time.Millisecond
	c := &fakeCollector{err: errors.New("probe down")}
	svc := NewService(settings, c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()

	require.Eventually(t, func() bool { return c.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		code, _ := getReady(t, port)
		return code == http.StatusServiceUnavailable
	}, 2*time.Second, 10*time.Millisecond)

	_, body := getReady(t, port)
	assert.Equal(t, "not_ready", body.Status)
	assert.Contains(t, body.Reason, "probe down")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestServiceRun_InvalidInterval(t *testing.T) {
	t.Setenv("ADDRESS", "127.0.0.1")
	t.Setenv("PORT", strconv.Itoa(freePort(t)))

	settings := config.Default()
	settings.Interval = 0
	svc := NewService(settings, &fakeCollector{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := svc.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval")
}

func TestServe_InvalidConfig(t *testing.T) {
	err := Serve(context.Background(), "/nonexistent/hostpulse.env", "error")
	require.Error(t, err)
}
