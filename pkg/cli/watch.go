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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hostpulse/pkg/defaults"
	"github.com/NVIDIA/hostpulse/pkg/serializer"
	"github.com/NVIDIA/hostpulse/pkg/snapshot"
)

const defaultStreamURL = "ws://localhost:8080/ws/stats"

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print snapshots streamed by a running daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "WebSocket stream URL",
				Sources: cli.EnvVars("HOSTPULSE_URL"),
				Value:   defaultStreamURL,
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "stop after this many snapshots (0: until interrupted)",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			if cmd.Int("count") < 0 {
				return fmt.Errorf("invalid --count %d: must not be negative", cmd.Int("count"))
			}

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				_ = w.Close()
			}()

			return watch(ctx, cmd.String("url"), int(cmd.Int("count")), w)
		},
	}
}

func watch(ctx context.Context, url string, count int, out serializer.Serializer) error {
	dialer := websocket.Dialer{HandshakeTimeout: defaults.WebSocketHandshakeTimeout}
	ws, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer ws.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = ws.Close()
	})
	defer stop()

	for received := 0; count == 0 || received < count; received++ {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("stream interrupted: %w", err)
		}

		snap, err := snapshot.Decode(data)
		if err != nil {
			return err
		}
		if err := out.Serialize(ctx, snap); err != nil {
			return err
		}
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(defaults.SubscriberCloseTimeout)); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		slog.Debug("failed to send close frame", "error", err)
	}
	return nil
}
