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

// Command graphmap-python-helper is the out-of-process extraction path
// for Python, spoken over the spec.md §6.3 protocol: a single JSON
// request {files[], projectRoot, module?} on stdin, a single JSON
// response {nodes[], edges[]} on stdout, warnings line-oriented on
// stderr, exit 0 on success.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/extract/python"
)

func main() {
	os.Exit(run(os.Stdin, os.Stdout, os.Stderr))
}

func run(stdin io.Reader, stdout, stderr io.Writer) int {
	body, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "graphmap-python-helper: read request: %v\n", err)
		return 1
	}

	var req python.Request
	if err := json.Unmarshal(body, &req); err != nil {
		fmt.Fprintf(stderr, "graphmap-python-helper: decode request: %v\n", err)
		return 1
	}

	sink := diagnostics.New(nil)
	result, err := python.AnalyzeProject(req.ProjectRoot, req.Files, sink)
	if err != nil {
		fmt.Fprintf(stderr, "graphmap-python-helper: analysis failed: %v\n", err)
		return 1
	}
	for _, d := range sink.Entries() {
		fmt.Fprintf(stderr, "%s: %s:%d: %s\n", d.Kind, d.FilePath, d.Line, d.Message)
	}

	resp := python.Response{Nodes: result.Nodes, Edges: result.Edges}
	enc := json.NewEncoder(stdout)
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintf(stderr, "graphmap-python-helper: encode response: %v\n", err)
		return 1
	}
	return 0
}
