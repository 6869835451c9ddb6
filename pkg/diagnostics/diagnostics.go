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

// Package diagnostics is the process-wide, concurrency-safe sink for
// per-file and per-run diagnostics. It is initialized once per analysis
// run and flushed at the end; it is never a package-level singleton,
// always passed explicitly to the components that write to it.
package diagnostics

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/kraklabs/graphmap/pkg/graph"
)

// Sink collects diagnostics emitted during one analysis run. Appends are
// safe for concurrent use by parallel extractor workers; Entries returns a
// stable copy ordered by insertion.
type Sink struct {
	logger *slog.Logger

	mu      sync.Mutex
	entries []graph.Diagnostic
}

// New creates a diagnostics sink that also logs every entry through logger
// (log/slog, following the dotted-key convention e.g.
// "extract.go.syntax_error"). A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{logger: logger}
}

// Add records a diagnostic and logs it at Warn (non-fatal) or Error (fatal).
func (s *Sink) Add(d graph.Diagnostic) {
	s.mu.Lock()
	s.entries = append(s.entries, d)
	s.mu.Unlock()

	attrs := []any{"kind", d.Kind}
	if d.FilePath != "" {
		attrs = append(attrs, "path", d.FilePath)
	}
	if d.Line != 0 {
		attrs = append(attrs, "line", d.Line)
	}
	if d.Fatal {
		s.logger.Error("diagnostics."+d.Kind, append(attrs, "message", d.Message)...)
		return
	}
	s.logger.Warn("diagnostics."+d.Kind, append(attrs, "message", d.Message)...)
}

// Warnf records a non-fatal diagnostic for a file.
func (s *Sink) Warnf(kind, filePath string, line int, format string, args ...any) {
	s.Add(graph.Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), FilePath: filePath, Line: line})
}

// Entries returns a copy of every diagnostic recorded so far, in insertion order.
func (s *Sink) Entries() []graph.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]graph.Diagnostic, len(s.entries))
	copy(out, s.entries)
	return out
}
