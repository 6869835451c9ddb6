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

// Package assembler implements the GraphAssembler (spec.md §4.8): it
// sequences FileDiscovery, the per-language extractors, EntryPointMatcher,
// ReachabilityEngine, ClusterBuilder and StatsAggregator into one
// deterministically-ordered CodeGraph artifact, then re-asserts the §3
// invariants as a last-line defense before handing the artifact back.
package assembler

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kraklabs/graphmap/internal/contract"
	"github.com/kraklabs/graphmap/internal/errors"
	"github.com/kraklabs/graphmap/pkg/cluster"
	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/discovery"
	"github.com/kraklabs/graphmap/pkg/entrypoint"
	"github.com/kraklabs/graphmap/pkg/extract"
	"github.com/kraklabs/graphmap/pkg/graph"
	"github.com/kraklabs/graphmap/pkg/reachability"
	"github.com/kraklabs/graphmap/pkg/stats"
)

// Input is everything the assembler needs to produce one CodeGraph: the
// resolved configuration plus one LanguageExtractor per language graphmap
// knows how to analyze. A nil extractor simply means that language's files
// (if any are discovered) are skipped with no diagnostic: the caller wires
// only the extractors it wants enabled.
type Input struct {
	ProjectRoot string
	Include     []string
	Exclude     []string
	EntryRules  []entrypoint.Rule

	GoModule          string
	GoBuildTags       []string
	PythonVersion     string
	PythonVenvPath    string
	PythonSourceRoots []string
	TSConfig          string

	Go         extract.LanguageExtractor
	TypeScript extract.LanguageExtractor
	Python     extract.LanguageExtractor

	// Config is echoed verbatim into metadata.config (§6.1): the resolved
	// configuration object the CLI driver loaded, opaque to the assembler.
	Config any

	// Now returns the current instant; overridable so assembly stays
	// deterministic and testable. Defaults to time.Now.
	Now func() time.Time

	Sink *diagnostics.Sink
}

var languageExtensions = map[string]graph.Language{
	".go":  graph.LanguageGo,
	".ts":  graph.LanguageTypeScript,
	".tsx": graph.LanguageTypeScript,
	".py":  graph.LanguagePython,
}

// languageOf returns the Language a file path's extension maps to, and
// whether it is one graphmap recognizes at all.
func languageOf(relPath string) (graph.Language, bool) {
	lang, ok := languageExtensions[strings.ToLower(filepath.Ext(relPath))]
	return lang, ok
}

// Assemble runs FileDiscovery, dispatches each discovered file to its
// LanguageExtractor, then sequences EntryPointMatcher, ReachabilityEngine,
// ClusterBuilder and StatsAggregator over the merged result, per §4.8. The
// returned artifact has already been through the determinism-ordering pass
// and the §8 invariant re-check; an invariant failure surfaces as
// InvariantViolated, which is always an internal bug, never a user mistake.
func Assemble(in Input) (*graph.CodeGraph, error) {
	now := in.Now
	if now == nil {
		now = time.Now
	}
	begin := now()

	sink := in.Sink
	if sink == nil {
		sink = diagnostics.New(nil)
	}

	paths, err := discovery.Discover(in.ProjectRoot, in.Include, in.Exclude)
	if err != nil {
		return nil, errors.NewConfigInvalid(
			"file discovery failed", err.Error(),
			"check include/exclude glob syntax and projectRoot permissions", err,
		)
	}

	filesByLang := make(map[graph.Language][]extract.FileEntity)
	totalFiles := 0
	for _, p := range paths {
		lang, ok := languageOf(p)
		if !ok {
			continue
		}
		filesByLang[lang] = append(filesByLang[lang], extract.FileEntity{Path: p, Language: lang})
		totalFiles++
	}

	cfg := extract.Config{
		ProjectRoot: in.ProjectRoot,
		GoModule:    in.GoModule, GoBuildTags: in.GoBuildTags,
		PythonVersion: in.PythonVersion, PythonVenvPath: in.PythonVenvPath, PythonSourceRoots: in.PythonSourceRoots,
		TypeScriptTSConfig: in.TSConfig,
	}

	var allNodes []graph.Node
	var allEdges []graph.Edge
	var primaryLanguage graph.Language

	type languageRun struct {
		lang graph.Language
		ext  extract.LanguageExtractor
	}
	runs := []languageRun{
		{graph.LanguageGo, in.Go},
		{graph.LanguageTypeScript, in.TypeScript},
		{graph.LanguagePython, in.Python},
	}

	for _, run := range runs {
		files := filesByLang[run.lang]
		if len(files) == 0 || run.ext == nil {
			continue
		}
		if primaryLanguage == "" {
			primaryLanguage = run.lang
		}

		result, err := run.ext.Analyze(cfg, files, sink)
		if err != nil {
			return nil, err
		}
		allNodes = append(allNodes, result.Nodes...)
		allEdges = append(allEdges, result.Edges...)
	}

	entryIDs, entryOrder := entrypoint.Match(allNodes, in.EntryRules, sink)
	markEntryPoints(allNodes, entryIDs)

	reachability.Classify(allNodes, allEdges, entryIDs)

	clusters := cluster.Build(allNodes)
	statsBlock := stats.Build(allNodes, entryOrder)

	orderNodes(allNodes)
	orderEdges(allEdges)
	orderClusters(clusters)
	entryTargets := sortedKeys(entryIDs)

	var deadCount, unusedCount int
	for _, n := range allNodes {
		if n.Status == graph.StatusDead {
			deadCount++
		}
		if len(n.UnusedParameters) > 0 {
			unusedCount++
		}
	}

	g := &graph.CodeGraph{
		Metadata: graph.Metadata{
			Version:               graph.SchemaVersion,
			GeneratedAt:            begin.UTC().Format(time.RFC3339),
			Language:               primaryLanguage,
			ProjectRoot:            in.ProjectRoot,
			AnalysisTimeMs:         time.Since(begin).Milliseconds(),
			TotalFiles:             totalFiles,
			TotalFunctions:         len(allNodes),
			TotalEdges:             len(allEdges),
			TotalDeadFunctions:     deadCount,
			TotalUnusedParameters:  unusedCount,
			Config:                 in.Config,
			Diagnostics:            sink.Entries(),
		},
		Nodes:     allNodes,
		Edges:     allEdges,
		EntryNode: graph.NewEntryNode(entryTargets),
		Clusters:  clusters,
		Stats:     statsBlock,
	}

	if r := contract.ValidateGraph(g); !r.OK {
		return nil, errors.NewInvariantViolated(r.Message)
	}

	return g, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func markEntryPoints(nodes []graph.Node, entryIDs map[string]bool) {
	for i := range nodes {
		if entryIDs[nodes[i].ID] {
			nodes[i].IsEntryPoint = true
		}
	}
}

func orderNodes(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}

func orderEdges(edges []graph.Edge) {
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		if a.CallSite.FilePath != b.CallSite.FilePath {
			return a.CallSite.FilePath < b.CallSite.FilePath
		}
		if a.CallSite.Line != b.CallSite.Line {
			return a.CallSite.Line < b.CallSite.Line
		}
		if a.CallSite.Column != b.CallSite.Column {
			return a.CallSite.Column < b.CallSite.Column
		}
		return a.Kind < b.Kind
	})
}

func orderClusters(clusters []graph.Cluster) {
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].ID < clusters[j].ID })
}
