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

package server

import (
	"net/http"
	"strings"
)

const (
	// DefaultAPIVersion is the default API version if none is negotiated
	DefaultAPIVersion = "v1"

	// vendorMediaPrefix precedes the version in a vendor Accept header,
	// e.g. application/vnd.nvidia.hostpulse.v1+json.
	vendorMediaPrefix = "application/vnd.nvidia.hostpulse."
)

var supportedAPIVersions = map[string]bool{
	"v1": true,
}

// negotiateAPIVersion picks the first supported hostpulse media type from all
// Accept header values. Unknown or missing versions fall back to
// DefaultAPIVersion.
func negotiateAPIVersion(r *http.Request) string {
	for _, accept := range r.Header.Values("Accept") {
		for mediaType := range strings.SplitSeq(accept, ",") {
			mediaType, _, _ = strings.Cut(mediaType, ";")
			rest, ok := strings.CutPrefix(strings.TrimSpace(mediaType), vendorMediaPrefix)
			if !ok {
				continue
			}
			if version, _, _ := strings.Cut(rest, "+"); isValidAPIVersion(version) {
				return version
			}
		}
	}
	return DefaultAPIVersion
}

// isValidAPIVersion checks if the provided version string is a valid API version.
func isValidAPIVersion(version string) bool {
	return supportedAPIVersions[version]
}

// SetAPIVersionHeader sets the API version header in the response.
func SetAPIVersionHeader(w http.ResponseWriter, version string) {
	w.Header().Set("X-API-Version", version)
}
