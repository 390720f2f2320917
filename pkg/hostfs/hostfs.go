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

package hostfs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// EnvHostSys overrides the sysfs root, matching the gopsutil convention
	// for monitoring a host from inside a container.
	EnvHostSys = "HOST_SYS"
	// EnvHostProc overrides the procfs root.
	EnvHostProc = "HOST_PROC"

	defaultSysRoot  = "/sys"
	defaultProcRoot = "/proc"
)

// SysPath joins elems under the sysfs root.
func SysPath(elems ...string) string {
	return rootPath(EnvHostSys, defaultSysRoot, elems...)
}

// ProcPath joins elems under the procfs root.
func ProcPath(elems ...string) string {
	return rootPath(EnvHostProc, defaultProcRoot, elems...)
}

func rootPath(env, def string, elems ...string) string {
	root := os.Getenv(env)
	if root == "" {
		root = def
	}
	return filepath.Join(append([]string{root}, elems...)...)
}

// Option configures a Reader.
type Option func(*Reader)

// Reader reads small pseudo-files from procfs and sysfs.
type Reader struct {
	delimiter    string
	maxSize      int
	skipComments bool
}

// WithDelimiter sets the delimiter used to split entries. Default is newline.
func WithDelimiter(delim string) Option {
	return func(r *Reader) {
		r.delimiter = delim
	}
}

// WithMaxSize sets the maximum file size in bytes. Default is 64KB.
func WithMaxSize(size int) Option {
	return func(r *Reader) {
		r.maxSize = size
	}
}

// WithSkipComments sets whether lines starting with "#" are dropped. Default is false.
func WithSkipComments(skip bool) Option {
	return func(r *Reader) {
		r.skipComments = skip
	}
}

// NewReader creates a Reader with the provided options.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		delimiter: "\n",
		maxSize:   64 << 10,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetLines reads the file at path and returns its non-empty, trimmed entries.
// An error is returned if the file cannot be read, exceeds the maximum size,
// or is not valid UTF-8.
func (r *Reader) GetLines(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	if len(b) > r.maxSize {
		return nil, fmt.Errorf("file %q exceeds maximum size of %d bytes", path, r.maxSize)
	}

	if !utf8.Valid(b) {
		return nil, fmt.Errorf("content of file %q is not valid UTF-8", path)
	}

	parts := strings.Split(string(b), r.delimiter)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		if r.skipComments && strings.HasPrefix(clean, "#") {
			continue
		}
		result = append(result, clean)
	}

	return result, nil
}

// GetString returns the first entry of the file at path.
func (r *Reader) GetString(path string) (string, error) {
	lines, err := r.GetLines(path)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("file %q is empty", path)
	}
	return lines[0], nil
}

// GetFloat parses the first entry of the file at path as a float.
func (r *Reader) GetFloat(path string) (float64, error) {
	s, err := r.GetString(path)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		slog.Debug("non-numeric pseudo-file", slog.String("path", path), slog.String("value", s))
		return 0, fmt.Errorf("content of file %q is not numeric: %w", path, err)
	}
	return f, nil
}

// Contains reports whether the file at path contains any of the substrings.
func (r *Reader) Contains(path string, substrs ...string) (bool, error) {
	lines, err := r.GetLines(path)
	if err != nil {
		return false, err
	}
	for _, line := range lines {
		for _, s := range substrs {
			if strings.Contains(line, s) {
				return true, nil
			}
		}
	}
	return false, nil
}
