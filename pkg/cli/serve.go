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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hostpulse/pkg/api"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the metrics daemon",
		Description: `Serves GET /api/stats and the GET /ws/stats WebSocket stream, plus
/health, /ready and /metrics. The listen address comes from PORT and
ADDRESS.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return api.Serve(ctx, cmd.String("config"), cmd.String("log-level"))
		},
	}
}
