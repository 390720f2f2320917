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
	"fmt"

	"github.com/NVIDIA/hostpulse/pkg/snapshot"
)

// Frame is a snapshot together with its wire encoding. A tick encodes once
// and hands the same Frame to every subscriber, so Data must not be modified.
type Frame struct {
	Snapshot *snapshot.Snapshot
	Data     []byte
}

// NewFrame encodes snap for delivery.
func NewFrame(snap *snapshot.Snapshot) (*Frame, error) {
	data, err := snapshot.Encode(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return &Frame{Snapshot: snap, Data: data}, nil
}
