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

// Package python implements the Python LanguageExtractor. Per spec.md
// §5/§6.3 this is an external-helper extractor: client.go spawns the
// graphmap-python-helper child process, which runs AnalyzeProject (this
// file) in its own process. Unlike Go, there is no typed fallback here:
// spec.md §7's HelperUnavailable row gives Python no degraded path, so a
// helper that can't be found or run is always fatal.
//
// "Full type resolution is not attempted; call resolution is
// best-effort" (spec.md §4.2.3): this walks the tree-sitter Python
// grammar directly, grounded on the call/decorator/base-class extraction
// patterns shown in the pack's other Python-over-tree-sitter extractors,
// and resolves calls by simple name within the same file (module-level
// defs and the methods of classes declared in that file).
package python

import (
	"context"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/extract"
	"github.com/kraklabs/graphmap/pkg/graph"
)

// AnalyzeProject walks every given Python source file and returns the
// nodes/edges it can extract. Called both by the in-process test harness
// and by cmd/graphmap-python-helper's request handler.
func AnalyzeProject(projectRoot string, relFiles []string, sink *diagnostics.Sink) (extract.Result, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	var nodes []graph.Node
	var edges []graph.Edge
	analyzed := 0

	for _, relPath := range relFiles {
		content, err := os.ReadFile(projectRoot + "/" + relPath)
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

		fw := newFileWalker(relPath, content)
		fw.collect(tree.RootNode())
		fw.resolveCalls()
		fw.synthesizeMainEntry()

		nodes = append(nodes, fw.nodes...)
		edges = append(edges, fw.edges...)
		analyzed++
		tree.Close()
	}

	return extract.Result{Nodes: nodes, Edges: edges, FilesAnalyzed: analyzed}, nil
}

type funcEntry struct {
	id   string
	node *sitter.Node // the function_definition/lambda node
	cls  string        // enclosing class name, "" if module-scope
}

type fileWalker struct {
	relPath string
	content []byte

	nodes []graph.Node
	edges []graph.Edge

	byName    map[string]*funcEntry             // module-scope def name -> entry
	methods   map[string]map[string]*funcEntry  // class name -> method name -> entry
	classes   map[string]bool
	mainBlock *sitter.Node // body of `if __name__ == "__main__":`, if any
	root      *sitter.Node
}

func newFileWalker(relPath string, content []byte) *fileWalker {
	return &fileWalker{
		relPath: relPath, content: content,
		byName: make(map[string]*funcEntry), methods: make(map[string]map[string]*funcEntry),
		classes: make(map[string]bool),
	}
}

func (w *fileWalker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(w.content[n.StartByte():n.EndByte()])
}

func (w *fileWalker) collect(root *sitter.Node) {
	w.root = root
	for i := 0; i < int(root.ChildCount()); i++ {
		w.collectTop(root.Child(i))
	}
}

func (w *fileWalker) collectTop(n *sitter.Node) {
	switch n.Type() {
	case "function_definition":
		w.addFunction(n, "", nil)
	case "class_definition":
		w.addClass(n)
	case "decorated_definition":
		inner := decoratedInner(n)
		if inner != nil && inner.Type() == "function_definition" {
			w.addFunction(inner, "", decoratorsOf(n, w.content))
		} else if inner != nil && inner.Type() == "class_definition" {
			w.addClass(inner)
		}
	case "if_statement":
		if isMainGuard(n, w.content) {
			w.mainBlock = n.ChildByFieldName("consequence")
		}
	case "expression_statement":
		w.collectModuleLambda(n)
	}
}

func (w *fileWalker) collectModuleLambda(n *sitter.Node) {
	assign := firstNamedChild(n)
	if assign == nil || assign.Type() != "assignment" {
		return
	}
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "identifier" || right.Type() != "lambda" {
		return
	}
	name := w.text(left)
	w.addFunction(right, "", nil, name)
}

func decoratedInner(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "function_definition" || child.Type() == "class_definition" {
			return child
		}
	}
	return nil
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

// isMainGuard reports whether n is `if __name__ == "__main__":`.
func isMainGuard(n *sitter.Node, content []byte) bool {
	cond := n.ChildByFieldName("condition")
	if cond == nil || cond.Type() != "comparison_operator" {
		return false
	}
	text := string(content[cond.StartByte():cond.EndByte()])
	text = strings.ReplaceAll(text, " ", "")
	return text == `__name__=="__main__"` || text == `__name__=='__main__'`
}

// addFunction adds a function_definition (or lambda, with an explicit
// override name) node, optionally decorated and optionally owned by a
// class (clsName != "").
func (w *fileWalker) addFunction(n *sitter.Node, clsName string, decorators []string, overrideName ...string) {
	name := ""
	if len(overrideName) > 0 {
		name = overrideName[0]
	} else {
		name = w.text(n.ChildByFieldName("name"))
	}
	if name == "" {
		return
	}

	startLine := int(n.StartPoint().Row) + 1
	endLine := int(n.EndPoint().Row) + 1

	kind := graph.KindFunction
	qualifiedName := name
	if clsName != "" {
		kind = graph.KindMethod
		qualifiedName = graph.GenerateMethodQualifiedName(clsName, name)
	} else if n.Type() == "lambda" {
		kind = graph.KindLambda
	}

	visibility := classifyVisibility(name)
	id := graph.GenerateFunctionID(w.relPath, qualifiedName)

	node := graph.Node{
		ID: id, Name: name, QualifiedName: qualifiedName, FilePath: w.relPath,
		StartLine: startLine, EndLine: endLine, Language: graph.LanguagePython,
		Kind: kind, Visibility: visibility,
		Parameters:      collectPythonParams(n, w.content, clsName != ""),
		PackageOrModule: graph.PackageOrModule(w.relPath),
		LinesOfCode:     endLine - startLine + 1,
		Status:          graph.StatusDead, Color: graph.ColorRed,
		Decorators: decorators,
	}
	w.nodes = append(w.nodes, node)
	analyzeUnusedParameters(&w.nodes[len(w.nodes)-1], n, w.content, clsName != "")

	entry := &funcEntry{id: id, node: n, cls: clsName}
	if clsName == "" {
		w.byName[name] = entry
		return
	}
	if w.methods[clsName] == nil {
		w.methods[clsName] = make(map[string]*funcEntry)
	}
	w.methods[clsName][name] = entry
}

func (w *fileWalker) addClass(n *sitter.Node) {
	name := w.text(n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	w.classes[name] = true

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Type() {
		case "function_definition":
			w.addFunction(member, name, nil)
		case "decorated_definition":
			inner := decoratedInner(member)
			if inner != nil && inner.Type() == "function_definition" {
				w.addFunction(inner, name, decoratorsOf(member, w.content))
			}
		}
	}
}

// classifyVisibility implements spec.md §4.2.3's visibility rule: dunder-
// or underscore-prefixed names are private, everything else exported.
// The "module" case -- called only from a __main__ block -- is applied
// afterward, once the whole file's call graph is known; see
// fileWalker.demoteMainOnlyVisibility.
func classifyVisibility(name string) graph.Visibility {
	if strings.HasPrefix(name, "_") {
		return graph.VisibilityPrivate
	}
	return graph.VisibilityExported
}

func decoratorsOf(decorated *sitter.Node, content []byte) []string {
	var out []string
	for i := 0; i < int(decorated.ChildCount()); i++ {
		child := decorated.Child(i)
		if child.Type() != "decorator" {
			continue
		}
		out = append(out, decoratorText(child, content))
	}
	return out
}

func decoratorText(decorator *sitter.Node, content []byte) string {
	for i := 0; i < int(decorator.ChildCount()); i++ {
		child := decorator.Child(i)
		switch child.Type() {
		case "identifier", "attribute":
			return string(content[child.StartByte():child.EndByte()])
		case "call":
			fn := child.ChildByFieldName("function")
			if fn != nil {
				return string(content[fn.StartByte():fn.EndByte()])
			}
		}
	}
	return ""
}
