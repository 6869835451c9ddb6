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

// Package extract defines the LanguageExtractor contract every
// per-language implementation (golang, typescript, python) satisfies,
// plus the FileEntity handoff type FileDiscovery produces for them.
package extract

import (
	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/graph"
)

// FileEntity is one file handed from FileDiscovery to a LanguageExtractor.
// It is purely an internal pipeline value, never part of the wire artifact.
type FileEntity struct {
	Path     string // project-relative, forward slashes
	Language graph.Language
	Size     int64
}

// Config is the subset of ResolvedConfig a LanguageExtractor consumes.
// Mirrors spec.md §6.2; fields not relevant to a given language are left zero.
type Config struct {
	ProjectRoot string

	GoModule     string
	GoBuildTags  []string

	PythonVersion  string
	PythonVenvPath string
	PythonSourceRoots []string

	TypeScriptTSConfig string
}

// Result is what a LanguageExtractor returns for one analysis run.
type Result struct {
	Nodes         []graph.Node
	Edges         []graph.Edge
	FilesAnalyzed int
}

// LanguageExtractor is the one-method trait every per-language
// implementation satisfies: parse a project, emit raw nodes and raw
// edges with stable identifiers, and surface diagnostics on the sink
// instead of returning them out of band.
type LanguageExtractor interface {
	Analyze(cfg Config, files []FileEntity, sink *diagnostics.Sink) (Result, error)
}
