// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kraklabs/graphmap/internal/errors"
)

// schemaMajor returns the leading integer component of a "MAJOR.MINOR.PATCH"
// schema version string, or an error if it can't be parsed at all.
func schemaMajor(version string) (int, error) {
	parts := strings.SplitN(version, ".", 2)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed schema version %q: %w", version, err)
	}
	return major, nil
}

// Encode writes g as the §6.1 artifact JSON document to w, pretty-printed
// with two-space indentation.
func Encode(w io.Writer, g *CodeGraph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// Decode reads one §6.1 artifact JSON document from r. Per §4.9, unknown
// fields are ignored (the default behavior of encoding/json), and a
// document whose metadata.version carries an unsupported major version
// fails with SchemaVersionUnsupported rather than a generic decode error.
func Decode(r io.Reader) (*CodeGraph, error) {
	var probe struct {
		Metadata struct {
			Version string `json:"version"`
		} `json:"metadata"`
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("decode artifact metadata: %w", err)
	}

	wantMajor, err := schemaMajor(SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("internal: %w", err)
	}
	gotMajor, err := schemaMajor(probe.Metadata.Version)
	if err != nil {
		return nil, errors.NewSchemaVersionUnsupported(
			"artifact has an unparsable schema version",
			probe.Metadata.Version,
			fmt.Sprintf("regenerate the artifact with a graphmap build supporting schema %s", SchemaVersion),
		)
	}
	if gotMajor != wantMajor {
		return nil, errors.NewSchemaVersionUnsupported(
			fmt.Sprintf("artifact schema version %s is not compatible with %s", probe.Metadata.Version, SchemaVersion),
			fmt.Sprintf("major version %d != %d", gotMajor, wantMajor),
			fmt.Sprintf("regenerate the artifact with a graphmap build supporting schema %s", SchemaVersion),
		)
	}

	var g CodeGraph
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &g, nil
}
