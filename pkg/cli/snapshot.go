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
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/hostpulse/pkg/broadcast"
	"github.com/NVIDIA/hostpulse/pkg/config"
	"github.com/NVIDIA/hostpulse/pkg/sampler"
	"github.com/NVIDIA/hostpulse/pkg/serializer"
)

// newCollector builds the sampler used by the snapshot command.
var newCollector = func(settings *config.Settings) broadcast.Collector {
	return sampler.New(settings)
}

func snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:                  "snapshot",
		EnableShellCompletion: true,
		Usage:                 "Sample the machine once and print the snapshot",
		Description: `Takes one fresh sample of CPU, memory, swap, disks, network, sensors,
fans, battery and the top processes, and writes it as JSON, YAML or a
FIELD/VALUE table.

The network rate of a one-off snapshot is always zero, since there is no
earlier sample to compare against.

# Examples

  hostpulse snapshot
  hostpulse snapshot --format table --top 10
  hostpulse snapshot --mode container --output snap.yaml --format yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mode",
				Usage: "monitor mode override (auto, host, container)",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "number of top processes override",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			settings, err := settingsFromCmd(cmd)
			if err != nil {
				return err
			}

			snap, err := newCollector(settings).Collect(ctx)
			if err != nil {
				return fmt.Errorf("failed to collect snapshot: %w", err)
			}

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				_ = w.Close()
			}()
			return w.Serialize(ctx, snap)
		},
	}
}

// settingsFromCmd loads settings and applies command-line overrides.
func settingsFromCmd(cmd *cli.Command) (*config.Settings, error) {
	settings, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("mode") {
		mode, err := config.ParseMode(cmd.String("mode"))
		if err != nil {
			return nil, err
		}
		settings.MonitorMode = mode
	}

	if cmd.IsSet("top") {
		top := cmd.Int("top")
		if top < 0 {
			return nil, fmt.Errorf("invalid --top %d: must not be negative", top)
		}
		settings.TopN = int(top)
	}

	return settings, nil
}
