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
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/graphmap/pkg/graph"
)

// resolveCalls walks every collected function/method body (plus the
// __main__ guard block, if any) and emits an edge for each call
// expression it can resolve by simple name within the same file. Full
// type resolution is out of scope (spec.md §4.2.3): an attribute call
// like `obj.method()` only resolves when obj is `self` inside a method,
// or when a `obj = ClassName(...)` assignment appears anywhere in the
// file (localVarClass does not check scope or order).
func (w *fileWalker) resolveCalls() {
	for _, entry := range w.byName {
		w.walkBody(entry.node.ChildByFieldName("body"), entry)
	}
	for _, methods := range w.methods {
		for _, entry := range methods {
			w.walkBody(entry.node.ChildByFieldName("body"), entry)
		}
	}
}

func (w *fileWalker) walkBody(body *sitter.Node, caller *funcEntry) {
	if body == nil {
		return
	}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call" {
			w.resolveCall(n, caller)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
}

func (w *fileWalker) resolveCall(call *sitter.Node, caller *funcEntry) {
	fnNode := call.ChildByFieldName("function")
	if fnNode == nil {
		return
	}
	site := callSiteOf(w.relPath, call)

	switch fnNode.Type() {
	case "identifier":
		name := w.text(fnNode)
		if w.classes[name] {
			if target, ok := w.constructorTarget(name); ok {
				w.emit(caller.id, target, graph.EdgeConstructor, site, true)
			}
			return
		}
		if entry, ok := w.byName[name]; ok {
			w.emit(caller.id, entry.id, graph.EdgeDirect, site, true)
			return
		}
		w.emit(caller.id, graph.DynamicTarget(name+"()"), graph.EdgeDynamic, site, false)

	case "attribute":
		w.resolveAttributeCall(fnNode, caller, site)
	}
}

func (w *fileWalker) resolveAttributeCall(attr *sitter.Node, caller *funcEntry, site graph.CallSite) {
	objNode := attr.ChildByFieldName("object")
	attrNode := attr.ChildByFieldName("attribute")
	if objNode == nil || attrNode == nil {
		return
	}
	methodName := w.text(attrNode)

	if objNode.Type() == "identifier" && w.text(objNode) == "self" && caller.cls != "" {
		if entry, ok := w.methods[caller.cls][methodName]; ok {
			w.emit(caller.id, entry.id, graph.EdgeMethod, site, true)
			return
		}
	}

	if objNode.Type() == "identifier" {
		if cls, ok := w.localVarClass(objNode); ok {
			if entry, ok := w.methods[cls][methodName]; ok {
				w.emit(caller.id, entry.id, graph.EdgeMethod, site, true)
				return
			}
		}
	}

	expr := w.text(objNode) + "." + methodName
	w.emit(caller.id, graph.DynamicTarget(expr+"()"), graph.EdgeDynamic, site, false)
}

// localVarClass best-effort maps a simple local-variable identifier back
// to the class it was constructed from by scanning the file for a
// `var = ClassName(...)` assignment.
func (w *fileWalker) localVarClass(ident *sitter.Node) (string, bool) {
	varName := w.text(ident)
	var found string
	var search func(n *sitter.Node)
	search = func(n *sitter.Node) {
		if n == nil || found != "" {
			return
		}
		if n.Type() == "assignment" {
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			if left != nil && right != nil && left.Type() == "identifier" && w.text(left) == varName && right.Type() == "call" {
				fn := right.ChildByFieldName("function")
				if fn != nil && fn.Type() == "identifier" && w.classes[w.text(fn)] {
					found = w.text(fn)
					return
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			search(n.Child(i))
		}
	}
	search(w.root)
	return found, found != ""
}

func (w *fileWalker) constructorTarget(className string) (string, bool) {
	if methods, ok := w.methods[className]; ok {
		if entry, ok := methods["__init__"]; ok {
			return entry.id, true
		}
	}
	return "", false
}

func (w *fileWalker) emit(source, target string, kind graph.EdgeKind, site graph.CallSite, resolved bool) {
	w.edges = append(w.edges, graph.Edge{Source: source, Target: target, CallSite: site, Kind: kind, IsResolved: resolved})
}

func callSiteOf(relPath string, n *sitter.Node) graph.CallSite {
	pt := n.StartPoint()
	return graph.CallSite{FilePath: relPath, Line: int(pt.Row) + 1, Column: int(pt.Column) + 1}
}

// synthesizeMainEntry implements spec.md §4.2.3's "explicitly tagged
// entry by the extractor (var-init equivalent)": when the file has an
// `if __name__ == "__main__":` block, a synthetic node is created for it
// and wired with varinit edges to every module-scope function it calls
// directly, mirroring the Go extractor's scanVarInit synthetic node.
func (w *fileWalker) synthesizeMainEntry() {
	if w.mainBlock == nil {
		return
	}
	seen := make(map[string]bool)
	var targets []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call" {
			fnNode := n.ChildByFieldName("function")
			if fnNode != nil && fnNode.Type() == "identifier" {
				name := w.text(fnNode)
				if entry, ok := w.byName[name]; ok && !seen[entry.id] {
					seen[entry.id] = true
					targets = append(targets, entry.id)
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(w.mainBlock)
	if len(targets) == 0 {
		return
	}

	id := graph.GenerateFunctionID(w.relPath, graph.VarInitQualifiedName)
	startLine := int(w.mainBlock.StartPoint().Row) + 1
	endLine := int(w.mainBlock.EndPoint().Row) + 1
	w.nodes = append(w.nodes, graph.Node{
		ID: id, Name: graph.VarInitQualifiedName, QualifiedName: graph.VarInitQualifiedName,
		FilePath: w.relPath, StartLine: startLine, EndLine: endLine, Language: graph.LanguagePython,
		Kind: graph.KindInit, Visibility: graph.VisibilityModule, IsEntryPoint: true,
		PackageOrModule: graph.PackageOrModule(w.relPath), LinesOfCode: endLine - startLine + 1,
		Status: graph.StatusEntry, Color: graph.ColorBlue,
	})
	for _, target := range targets {
		w.edges = append(w.edges, graph.Edge{
			Source: id, Target: target,
			CallSite: graph.CallSite{FilePath: w.relPath, Line: startLine, Column: 1},
			Kind:     graph.EdgeVarinit, IsResolved: true,
		})
	}

	w.demoteMainOnlyVisibility(seen)
}

// demoteMainOnlyVisibility implements spec.md §4.2.3's "module" case: a
// function called only from the __main__ block, with no other
// within-file caller, is reclassified from exported/private to module
// visibility.
func (w *fileWalker) demoteMainOnlyVisibility(mainTargets map[string]bool) {
	calledElsewhere := make(map[string]bool)
	for _, e := range w.edges {
		if e.Kind == graph.EdgeVarinit {
			continue
		}
		calledElsewhere[e.Target] = true
	}
	for i := range w.nodes {
		if mainTargets[w.nodes[i].ID] && !calledElsewhere[w.nodes[i].ID] {
			w.nodes[i].Visibility = graph.VisibilityModule
		}
	}
}
