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
	"sort"
	"sync"
)

// Subscriber receives snapshot frames. Push may be called concurrently with Close
// but never concurrently with itself.
type Subscriber interface {
	// ID uniquely identifies the subscriber within a registry.
	ID() string
	// Push delivers one frame. Any error marks the subscriber dead.
	Push(ctx context.Context, frame *Frame) error
	// Close releases the underlying connection. It is safe to call more than once.
	Close() error
}

type member struct {
	sub Subscriber
	seq uint64
}

// Registry is the set of active subscribers. It is safe for concurrent use.
// Once closed it refuses new members.
type Registry struct {
	mu      sync.Mutex
	members map[string]member
	seq     uint64
	closed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{members: make(map[string]member)}
}

// Register adds s to the active set. It reports false when a subscriber with
// the same ID is already registered or the registry is closed, in which case
// the set is unchanged.
func (r *Registry) Register(s Subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	if _, ok := r.members[s.ID()]; ok {
		return false
	}
	r.seq++
	r.members[s.ID()] = member{sub: s, seq: r.seq}
	activeSubscribers.Set(float64(len(r.members)))
	return true
}

// Unregister removes the subscriber with the given ID. It reports false when
// no such subscriber was registered.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	activeSubscribers.Set(float64(len(r.members)))
	return true
}

// Members returns a point-in-time copy of the active set in registration
// order. The copy is unaffected by later Register or Unregister calls.
func (r *Registry) Members() []Subscriber {
	r.mu.Lock()
	list := make([]member, 0, len(r.members))
	for _, m := range r.members {
		list = append(list, m)
	}
	r.mu.Unlock()

	return ordered(list)
}

// Close empties the registry and refuses later registrations. It returns the
// members that were active, in registration order. Closing twice returns nil.
func (r *Registry) Close() []Subscriber {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	list := make([]member, 0, len(r.members))
	for _, m := range r.members {
		list = append(list, m)
	}
	r.members = make(map[string]member)
	activeSubscribers.Set(0)
	r.mu.Unlock()

	return ordered(list)
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func ordered(list []member) []Subscriber {
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })

	subs := make([]Subscriber, len(list))
	for i, m := range list {
		subs[i] = m.sub
	}
	return subs
}

// Len returns the number of active subscribers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}
