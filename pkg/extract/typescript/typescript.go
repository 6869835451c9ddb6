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

// Package typescript implements the TypeScript LanguageExtractor.
//
// Unlike Go and Python, spec.md's concurrency model does not list
// TypeScript as an external-helper extractor, so there is no real
// compiler-backed type checker available to this process. This package
// stands a hand-built, two-pass symbol table up in its place: pass one
// (collector.indexFile) records every file's declarations, import bindings
// and re-export aliases; pass two (resolver.resolveFile) walks each file
// and follows
// the symbol table (chasing re-export chains where needed) to find each
// call's in-project target.
package typescript

import (
	"context"
	"os"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/extract"
	"github.com/kraklabs/graphmap/pkg/graph"
)

// Extractor is the TypeScript LanguageExtractor.
type Extractor struct{}

var _ extract.LanguageExtractor = (*Extractor)(nil)

// higherOrderMethods is the set of Array/Promise-style methods whose
// function-valued argument becomes a callback edge per spec.md §4.2.1.
var higherOrderMethods = map[string]bool{
	"map": true, "filter": true, "forEach": true, "reduce": true, "reduceRight": true,
	"some": true, "every": true, "find": true, "findIndex": true, "flatMap": true,
	"sort": true, "then": true, "catch": true, "finally": true,
}

type declKind int

const (
	declFunction declKind = iota
	declClass
)

type declInfo struct {
	id         string
	kind       declKind
	ctorID     string // non-empty if declClass and it has an explicit constructor
	methodByName map[string]string
}

type importBinding struct {
	localName    string
	importedName string // "" for default/namespace imports
	source       string // raw import specifier text, quotes stripped
	isDefault    bool
	isNamespace  bool
}

type reexportBinding struct {
	localName    string // the exported name other files import by
	importedName string // the name in the source module ("" => same as localName)
	source       string
}

type fileIndex struct {
	relPath   string
	content   []byte
	tree      *sitter.Tree
	decls     map[string]*declInfo
	imports   []importBinding
	reexports []reexportBinding
	funcRanges []funcRange
}

// funcRange records the byte span of a collected function/method body so
// pass 2 can map a call expression back to its enclosing caller id.
type funcRange struct {
	start, end uint32
	id         string
}

// Analyze implements the LanguageExtractor contract.
func (e *Extractor) Analyze(cfg extract.Config, files []extract.FileEntity, sink *diagnostics.Sink) (extract.Result, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())

	idx := make(map[string]*fileIndex)
	var order []string
	for _, f := range files {
		if f.Language != graph.LanguageTypeScript {
			continue
		}
		relPath := graph.NormalizePath(f.Path)
		content, err := os.ReadFile(cfg.ProjectRoot + "/" + relPath)
		if err != nil {
			if sink != nil {
				sink.Warnf("ExtractorFileError", relPath, 0, "cannot read file: %v", err)
			}
			continue
		}
		tree, err := parser.ParseCtx(context.Background(), nil, content)
		if err != nil {
			if sink != nil {
				sink.Warnf("ExtractorParseError", relPath, 0, "tree-sitter parse failed: %v", err)
			}
			continue
		}
		fi := &fileIndex{relPath: relPath, content: content, tree: tree, decls: make(map[string]*declInfo)}
		idx[relPath] = fi
		order = append(order, relPath)
	}

	var nodes []graph.Node
	for _, relPath := range order {
		fi := idx[relPath]
		c := &collector{fi: fi}
		c.indexFile(fi.tree.RootNode())
		nodes = append(nodes, c.nodes...)
	}

	var edges []graph.Edge
	for _, relPath := range order {
		fi := idx[relPath]
		r := &resolver{idx: idx, projectRoot: cfg.ProjectRoot}
		edges = append(edges, r.resolveFile(fi)...)
	}

	for _, fi := range idx {
		fi.tree.Close()
	}

	return extract.Result{Nodes: nodes, Edges: edges, FilesAnalyzed: len(order)}, nil
}

// decoratorPattern matches @Name, @Name(...), @obj.path(...), @obj.path.
var decoratorPattern = regexp.MustCompile(`^@([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*)`)

func decoratorsOf(n *sitter.Node, content []byte) []string {
	if n == nil {
		return nil
	}
	var out []string
	for prev := n.PrevSibling(); prev != nil && prev.Type() == "decorator"; prev = prev.PrevSibling() {
		text := string(content[prev.StartByte():prev.EndByte()])
		if m := decoratorPattern.FindStringSubmatch(text); m != nil {
			out = append([]string{m[1]}, out...)
		}
	}
	return out
}

func isExported(n *sitter.Node) bool {
	parent := n.Parent()
	if parent != nil && parent.Type() == "export_statement" {
		return true
	}
	return false
}
