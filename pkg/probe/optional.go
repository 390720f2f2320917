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

package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	cerrors "github.com/NVIDIA/hostpulse/pkg/errors"
)

// Optional holds the result of a best-effort probe. Valid is false when the
// metric is unsupported or its read failed.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Supported wraps a successfully read value.
func Supported[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// Unsupported returns the empty result.
func Unsupported[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is valid.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// Call runs an optional probe bounded by timeout. Errors, timeouts and panics
// all yield Unsupported.
func Call[T any](ctx context.Context, timeout time.Duration, name string, fn func(context.Context) (T, error)) Optional[T] {
	v, err := guard(ctx, timeout, fn)
	if err != nil {
		slog.Debug("optional probe unavailable", "probe", name, "error", err)
		return Unsupported[T]()
	}
	return Supported(v)
}

// Invoke runs a mandatory probe bounded by timeout. A failure is returned as
// a structured error with code TIMEOUT when the deadline passed, or INTERNAL.
func Invoke[T any](ctx context.Context, timeout time.Duration, name string, fn func(context.Context) (T, error)) (T, error) {
	v, err := guard(ctx, timeout, fn)
	if err != nil {
		code := cerrors.ErrCodeInternal
		if errors.Is(err, context.DeadlineExceeded) {
			code = cerrors.ErrCodeTimeout
		}
		var zero T
		return zero, cerrors.WrapWithContext(code, "failed to read "+name, err,
			map[string]any{"probe": name})
	}
	return v, nil
}

// guard runs fn in its own goroutine so a probe that ignores its context
// cannot hold the caller past the deadline.
func guard[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("probe panicked: %v", r)}
			}
		}()
		v, err := fn(ctx)
		ch <- result{v: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
