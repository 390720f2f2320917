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

package snapshot

import (
	"encoding/json"
	"fmt"
	"time"
)

// Encode serializes a snapshot into its wire format.
// Timestamps are written as RFC 3339 UTC strings with sub-second precision.
func Encode(s *Snapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	out := *s
	out.Timestamp = s.Timestamp.UTC()
	b, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return b, nil
}

// Decode parses a snapshot from its wire format.
// Collections absent or null on the wire decode as empty, never nil.
func Decode(data []byte) (*Snapshot, error) {
	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	s.normalize()
	return s, nil
}

func (s *Snapshot) normalize() {
	if s.Sensors == nil {
		s.Sensors = make(map[string][]SensorReading)
	}
	if s.Fans == nil {
		s.Fans = make(map[string][]FanReading)
	}
	if s.Disks == nil {
		s.Disks = make(map[string]DiskUsage)
	}
	if s.TopProcesses == nil {
		s.TopProcesses = make([]Process, 0)
	}
	s.Timestamp = s.Timestamp.In(time.UTC)
}
