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

// Command graphmap-go-helper is the out-of-process typed extraction path
// for Go, spoken over the spec.md §6.3 protocol: a single JSON request
// {files[], projectRoot, module?, buildTags?} on stdin, a single JSON
// response {nodes[], edges[]} on stdout, warnings line-oriented on
// stderr, exit 0 on success.
//
// It exists as its own binary, rather than running in-process, so a
// typed-load crash or hang in golang.org/x/tools/go/packages can't take
// down the graphmap CLI itself: the parent kills the child on timeout
// and fails the run with HelperTimeout; a non-zero exit makes the parent
// degrade to the AST-only fallback.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kraklabs/graphmap/pkg/extract/golang"
)

func main() {
	os.Exit(run(os.Stdin, os.Stdout, os.Stderr))
}

func run(stdin io.Reader, stdout, stderr io.Writer) int {
	body, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "graphmap-go-helper: read request: %v\n", err)
		return 1
	}

	var req golang.Request
	if err := json.Unmarshal(body, &req); err != nil {
		fmt.Fprintf(stderr, "graphmap-go-helper: decode request: %v\n", err)
		return 1
	}

	result, err := golang.AnalyzeTyped(req.ProjectRoot, req.Files, req.BuildTags)
	if err != nil {
		fmt.Fprintf(stderr, "graphmap-go-helper: typed analysis failed: %v\n", err)
		return 1
	}

	resp := golang.Response{Nodes: result.Nodes, Edges: result.Edges}
	enc := json.NewEncoder(stdout)
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintf(stderr, "graphmap-go-helper: encode response: %v\n", err)
		return 1
	}
	return 0
}
