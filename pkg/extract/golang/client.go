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

package golang

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/kraklabs/graphmap/internal/bootstrap"
	"github.com/kraklabs/graphmap/internal/errors"
	"github.com/kraklabs/graphmap/internal/metrics"
	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/extract"
	"github.com/kraklabs/graphmap/pkg/graph"
)

// HelperTimeout is the default soft timeout for the Go helper child process
// (spec.md §5: "default 60s for Go").
const HelperTimeout = 60 * time.Second

// Extractor is the Go LanguageExtractor. Per spec.md §5/§6.3 it is an
// external-helper extractor: Analyze spawns HelperBinaryName, feeds it a
// Request on stdin, and reads a Response from stdout. It degrades to the
// in-process AST-only Fallback when the helper can't be found or exits
// with an error; a helper timeout is fatal (HelperTimeout).
type Extractor struct {
	Helpers *bootstrap.HelperCache
}

var _ extract.LanguageExtractor = (*Extractor)(nil)

// Analyze implements the LanguageExtractor contract.
func (e *Extractor) Analyze(cfg extract.Config, files []extract.FileEntity, sink *diagnostics.Sink) (extract.Result, error) {
	helpers := e.Helpers
	if helpers == nil {
		helpers = bootstrap.NewHelperCache()
	}

	path, err := helpers.Resolve(HelperBinaryName, nil)
	if err != nil {
		metrics.HelperFallback("go")
		if sink != nil {
			sink.Warnf("HelperUnavailable", "", 0, "%s not found, falling back to AST-only Go extraction: %v", HelperBinaryName, err)
		}
		return Fallback(cfg, files, sink)
	}

	relFiles := make([]string, 0, len(files))
	for _, f := range files {
		if f.Language != graph.LanguageGo {
			continue
		}
		relFiles = append(relFiles, graph.NormalizePath(f.Path))
	}

	metrics.HelperInvoked("go")
	req := Request{Files: relFiles, ProjectRoot: cfg.ProjectRoot, Module: cfg.GoModule, BuildTags: cfg.GoBuildTags}
	resp, err := runHelper(path, req, HelperTimeout)
	if err != nil {
		if isTimeout(err) {
			metrics.HelperTimedOut("go")
			helpers.Forget(HelperBinaryName)
			return extract.Result{}, errors.NewHelperTimeout(
				"graphmap-go-helper exceeded its time budget", err.Error(),
				"increase the project's size or split the analysis by sub-package", err,
			)
		}
		metrics.HelperFailed("go")
		metrics.HelperFallback("go")
		if sink != nil {
			sink.Warnf("HelperUnavailable", "", 0, "graphmap-go-helper failed, falling back to AST-only Go extraction: %v", err)
		}
		return Fallback(cfg, files, sink)
	}

	return extract.Result{Nodes: resp.Nodes, Edges: resp.Edges, FilesAnalyzed: len(relFiles)}, nil
}

type timeoutError struct{ err error }

func (t *timeoutError) Error() string { return t.err.Error() }
func (t *timeoutError) Unwrap() error { return t.err }

func isTimeout(err error) bool {
	_, ok := err.(*timeoutError)
	return ok
}

// runHelper spawns the helper at path, writes req as a single JSON document on stdin,
// closes stdin, and decodes a single Response from stdout, per spec.md
// §6.3's single-shot protocol.
func runHelper(path string, req Request, timeout time.Duration) (*Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal helper request: %w", err)
	}

	cmd := exec.CommandContext(ctx, path)
	cmd.Stdin = bytes.NewReader(body)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, &timeoutError{err: fmt.Errorf("helper timed out after %s", timeout)}
	}
	if err != nil {
		return nil, fmt.Errorf("helper exited with error: %w (stderr: %s)", err, stderr.String())
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode helper response: %w", err)
	}
	return &resp, nil
}
