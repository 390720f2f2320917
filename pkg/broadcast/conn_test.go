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

package broadcast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/hostpulse/pkg/snapshot"
)

// wsPair starts a server that wraps each accepted connection in a Conn and
// hands it to the test, and dials it.
func wsPair(t *testing.T) (*Conn, *websocket.Conn, <-chan error) {
	t.Helper()

	conns := make(chan *Conn, 1)
	readErr := make(chan error, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewConn(ws)
		conns <- c
		readErr <- c.ReadLoop()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { client.Close() })

	select {
	case c := <-conns:
		return c, client, readErr
	case <-time.After(2 * time.Second):
		t.Fatal("server did not accept connection")
		return nil, nil, nil
	}
}

func TestConn_PushDeliversJSON(t *testing.T) {
	c, client, _ := wsPair(t)
	assert.NotEmpty(t, c.ID())

	snap := snapshot.New()
	snap.Source = snapshot.SourceContainer
	snap.Machine = "node-a"
	snap.Timestamp = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	frame, err := NewFrame(snap)
	require.NoError(t, err)
	require.NoError(t, c.Push(ctx, frame))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	mt, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, mt)

	got, err := snapshot.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, snapshot.SourceContainer, got.Source)
	assert.Equal(t, "node-a", got.Machine)
}

func TestConn_ReadLoopEndsOnClientClose(t *testing.T) {
	_, client, readErr := wsPair(t)

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("ignored")))
	require.NoError(t, client.Close())

	select {
	case err := <-readErr:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not end")
	}
}

func TestConn_PushAfterClose(t *testing.T) {
	c, client, _ := wsPair(t)

	require.NoError(t, c.Close())
	assert.NoError(t, c.Close(), "second close is a no-op")

	select {
	case <-c.Done():
	default:
		t.Fatal("done not closed")
	}

	frame, err := NewFrame(snapshot.New())
	require.NoError(t, err)
	assert.Error(t, c.Push(context.Background(), frame))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = client.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestConn_HubDropsClosedPeer(t *testing.T) {
	c, client, readErr := wsPair(t)

	r := NewRegistry()
	r.Register(c)
	h := NewHub(&fakeCollector{}, r, WithPushTimeout(500*time.Millisecond))

	require.NoError(t, h.Tick(context.Background()))
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := client.ReadMessage()
	require.NoError(t, err)

	require.NoError(t, client.Close())
	<-readErr

	require.Eventually(t, func() bool {
		_ = h.Tick(context.Background())
		return r.Len() == 0
	}, 2*time.Second, 20*time.Millisecond)
}
