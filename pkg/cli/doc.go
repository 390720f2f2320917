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

// Package cli implements the hostpulse command-line interface.
//
// # Commands
//
// snapshot - Sample the machine once:
//
//	hostpulse snapshot [--format json|yaml|table] [--output file] [--mode auto|host|container] [--top N]
//
// Takes one fresh sample and writes it to stdout or a file. A one-off
// snapshot always reports a zero network rate.
//
// serve - Run the daemon:
//
//	hostpulse serve [--config .env]
//
// Same as the hostpulsed binary. Serves /api/stats, the /ws/stats stream,
// /health, /ready and /metrics.
//
// watch - Follow a running daemon:
//
//	hostpulse watch [--url ws://localhost:8080/ws/stats] [--count N] [--format table]
//
// # Global Flags
//
//	--config       dotenv settings file (default: .env when present)
//	--log-level    debug, info, warn, error (env LOG_LEVEL)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Environment Variables
//
//	ALLOW_ORIGINS         JSON list or comma separated origins, "*" for any
//	WS_INTERVAL           seconds between broadcast ticks
//	TOP_N_PROCS           number of processes in top_processes
//	MONITOR_MODE          auto, host or container
//	NODE_NAME             machine name override
//	KUBERNETES_NODE_NAME  fallback machine name
//	HOST_PROC, HOST_SYS   host /proc and /sys mounts when running in a container
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/hostpulse/pkg/cli.version=1.0.0'"
package cli
