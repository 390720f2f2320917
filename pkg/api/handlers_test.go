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
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/hostpulse/pkg/config"
	cerrors "github.com/NVIDIA/hostpulse/pkg/errors"
	"github.com/NVIDIA/hostpulse/pkg/server"
	"github.com/NVIDIA/hostpulse/pkg/snapshot"
)

type fakeCollector struct {
	calls atomic.Int64
	err   error
}

func (f *fakeCollector) Collect(_ context.Context) (*snapshot.Snapshot, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	s := snapshot.New()
	s.Source = snapshot.SourceHost
	s.Machine = "node-1"
	s.Timestamp = time.Unix(1700000000+n, 0).UTC()
	s.CPUCores = 8
	s.Disks["/"] = snapshot.DiskUsage{Total: 100, Used: 40, Free: 60, Percent: 40}
	return s, nil
}

func newTestService(t *testing.T, settings *config.Settings, c *fakeCollector) (*Service, *httptest.Server) {
	t.Helper()
	svc := NewService(settings, c)
	ts := httptest.NewServer(svc.Server().Handler())
	t.Cleanup(ts.Close)
	return svc, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + StreamPath
}

func TestHandleStats(t *testing.T) {
	c := &fakeCollector{}
	_, ts := newTestService(t, config.Default(), c)

	resp, err := http.Get(ts.URL + StatsPath)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, "host", raw["source"])
	assert.Equal(t, "node-1", raw["machine"])
	assert.Contains(t, raw, "load_avg")
	assert.Nil(t, raw["battery"])
	assert.Equal(t, map[string]any{}, raw["sensors"])
}

func TestHandleStats_FreshSamplePerRequest(t *testing.T) {
	c := &fakeCollector{}
	h := NewHandlers(config.Default(), c, nil)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.HandleStats(w, httptest.NewRequest(http.MethodGet, StatsPath, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.EqualValues(t, 3, c.calls.Load())
}

func TestHandleStats_MethodNotAllowed(t *testing.T) {
	c := &fakeCollector{}
	h := NewHandlers(config.Default(), c, nil)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleStats(w, httptest.NewRequest(method, StatsPath, nil))

			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
			assert.Equal(t, http.MethodGet, w.Header().Get("Allow"))
		})
	}
	assert.Zero(t, c.calls.Load())
}

func TestHandleStats_SampleFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "probe failure",
			err:        cerrors.WrapWithContext(cerrors.ErrCodeInternal, "failed to read virtual_memory", errors.New("boom"), map[string]any{"probe": "virtual_memory"}),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
		},
		{
			name:       "probe timeout",
			err:        cerrors.Wrap(cerrors.ErrCodeTimeout, "failed to read processes", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "TIMEOUT",
		},
		{
			name:       "unstructured error",
			err:        errors.New("unexpected"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(config.Default(), &fakeCollector{err: tt.err}, nil)

			w := httptest.NewRecorder()
			h.HandleStats(w, httptest.NewRequest(http.MethodGet, StatsPath, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.True(t, resp.Retryable)
		})
	}
}

func TestHandleStream(t *testing.T) {
	c := &fakeCollector{}
	svc, ts := newTestService(t, config.Default(), c)
	registry := svc.Hub().Registry()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	defer ws.Close()

	// initial snapshot arrives before the first tick
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	mt, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, mt)
	first, err := snapshot.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "node-1", first.Machine)

	require.Eventually(t, func() bool { return registry.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, svc.Hub().Tick(context.Background()))
	_, data, err = ws.ReadMessage()
	require.NoError(t, err)
	second, err := snapshot.Decode(data)
	require.NoError(t, err)
	assert.True(t, second.Timestamp.After(first.Timestamp))

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return registry.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandleStream_ManySubscribersShareOneSample(t *testing.T) {
	c := &fakeCollector{}
	svc, ts := newTestService(t, config.Default(), c)

	const n = 5
	conns := make([]*websocket.Conn, 0, n)
	for i := 0; i < n; i++ {
		ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
		require.NoError(t, err)
		defer ws.Close()
		_, _, err = ws.ReadMessage()
		require.NoError(t, err)
		conns = append(conns, ws)
	}
	require.Eventually(t, func() bool { return svc.Hub().Registry().Len() == n }, 2*time.Second, 10*time.Millisecond)

	before := c.calls.Load()
	require.NoError(t, svc.Hub().Tick(context.Background()))
	assert.Equal(t, before+1, c.calls.Load())

	var want []byte
	for _, ws := range conns {
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, data, err := ws.ReadMessage()
		require.NoError(t, err)
		if want == nil {
			want = data
		}
		assert.Equal(t, string(want), string(data))
	}
}

func TestHandleStream_RejectsOrigin(t *testing.T) {
	settings := config.Default()
	settings.AllowOrigins = []string{"http://localhost:3000"}
	svc, ts := newTestService(t, settings, &fakeCollector{})

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, svc.Hub().Registry().Len())

	header = http.Header{"Origin": []string{"http://localhost:3000"}}
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts), header)
	require.NoError(t, err)
	ws.Close()
}

func TestHandleStream_InitialSampleFailure(t *testing.T) {
	c := &fakeCollector{err: errors.New("boom")}
	svc, ts := newTestService(t, config.Default(), c)

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = ws.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, svc.Hub().Registry().Len())
}

func TestHandleStream_RefusedAfterBroadcastStops(t *testing.T) {
	c := &fakeCollector{}
	svc, ts := newTestService(t, config.Default(), c)
	registry := svc.Hub().Registry()
	registry.Close()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = ws.ReadMessage()
	require.NoError(t, err, "initial snapshot is sent before registration")

	_, _, err = ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Zero(t, registry.Len())
}

func TestRootListsRoutes(t *testing.T) {
	_, ts := newTestService(t, config.Default(), &fakeCollector{})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	var root server.RootResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&root))
	assert.Equal(t, name, root.Name)
	assert.Contains(t, root.Routes, "GET "+StatsPath)
	assert.Contains(t, root.Routes, "GET "+StreamPath)
}

func TestCORSOnStats(t *testing.T) {
	settings := config.Default()
	settings.AllowOrigins = []string{"http://localhost:3000"}
	_, ts := newTestService(t, settings, &fakeCollector{})

	req, err := http.NewRequest(http.MethodGet, ts.URL+StatsPath, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
