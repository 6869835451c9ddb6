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

package python

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/kraklabs/graphmap/internal/bootstrap"
	"github.com/kraklabs/graphmap/internal/errors"
	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/extract"
	"github.com/kraklabs/graphmap/pkg/graph"
)

// HelperTimeout is the default soft timeout for the Python helper child
// process (spec.md §5: "default 30s for Python").
const HelperTimeout = 30 * time.Second

// Extractor is the Python LanguageExtractor. Per spec.md §5/§6.3 it is an
// external-helper extractor, the same shape as Go's. Unlike Go, spec.md
// §7's HelperUnavailable row gives Python no fallback path ("otherwise
// fatal"): a missing or broken helper always surfaces as a fatal error.
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
		return extract.Result{}, errors.NewHelperUnavailable(
			fmt.Sprintf("%s not found on PATH", HelperBinaryName), err.Error(),
			"build and install graphmap-python-helper, or omit Python from include[]", err,
		)
	}

	relFiles := make([]string, 0, len(files))
	for _, f := range files {
		if f.Language != graph.LanguagePython {
			continue
		}
		relFiles = append(relFiles, graph.NormalizePath(f.Path))
	}

	req := Request{
		Files: relFiles, ProjectRoot: cfg.ProjectRoot,
		PythonVersion: cfg.PythonVersion, VenvPath: cfg.PythonVenvPath, SourceRoots: cfg.PythonSourceRoots,
	}
	resp, stderr, err := runHelper(path, req, HelperTimeout)
	if err != nil {
		if isTimeout(err) {
			helpers.Forget(HelperBinaryName)
			return extract.Result{}, errors.NewHelperTimeout(
				"graphmap-python-helper exceeded its time budget", err.Error(),
				"increase the project's size or split the analysis by sub-package", err,
			)
		}
		return extract.Result{}, errors.NewHelperUnavailable(
			"graphmap-python-helper exited with an error", err.Error(),
			"run graphmap-python-helper directly against the project to see its stderr output", err,
		)
	}

	if sink != nil {
		for _, line := range splitNonEmptyLines(stderr) {
			sink.Warnf("ExtractorParseError", "", 0, "%s", line)
		}
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
// §6.3's single-shot protocol. stderr is returned for the caller to
// surface as line-oriented warnings.
func runHelper(path string, req Request, timeout time.Duration) (*Response, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("marshal helper request: %w", err)
	}

	cmd := exec.CommandContext(ctx, path)
	cmd.Stdin = bytes.NewReader(body)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, stderr.String(), &timeoutError{err: fmt.Errorf("helper timed out after %s", timeout)}
	}
	if err != nil {
		return nil, stderr.String(), fmt.Errorf("helper exited with error: %w (stderr: %s)", err, stderr.String())
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, stderr.String(), fmt.Errorf("decode helper response: %w", err)
	}
	return &resp, stderr.String(), nil
}

func splitNonEmptyLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			line := s[start:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			if line != "" {
				out = append(out, line)
			}
			start = i + 1
		}
	}
	return out
}
