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

package typescript

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/graphmap/pkg/graph"
)

// resolver is pass 2: walk a file's call expressions and resolve each one
// against the symbol table built by collector, following re-export alias
// chains across files where needed.
type resolver struct {
	idx         map[string]*fileIndex
	projectRoot string
}

func (r *resolver) resolveFile(fi *fileIndex) []graph.Edge {
	var edges []graph.Edge
	r.walk(fi, fi.tree.RootNode(), &edges)
	return edges
}

func (r *resolver) walk(fi *fileIndex, n *sitter.Node, edges *[]graph.Edge) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "call_expression":
		r.resolveCallExpression(fi, n, edges)
	case "new_expression":
		r.resolveNewExpression(fi, n, edges)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		r.walk(fi, n.Child(i), edges)
	}
}

func (r *resolver) text(fi *fileIndex, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(fi.content[n.StartByte():n.EndByte()])
}

// callerID finds the innermost collected function/method whose byte
// range contains pos, per the ranges collector.recordRange populated.
func (r *resolver) callerID(fi *fileIndex, pos uint32) (string, bool) {
	best := ""
	bestSpan := ^uint32(0)
	for _, fr := range fi.funcRanges {
		if pos >= fr.start && pos < fr.end {
			span := fr.end - fr.start
			if span < bestSpan {
				bestSpan = span
				best = fr.id
			}
		}
	}
	return best, best != ""
}

func (r *resolver) callSite(fi *fileIndex, n *sitter.Node) graph.CallSite {
	pt := n.StartPoint()
	return graph.CallSite{FilePath: fi.relPath, Line: int(pt.Row) + 1, Column: int(pt.Column) + 1}
}

func (r *resolver) emit(edges *[]graph.Edge, source, target string, kind graph.EdgeKind, site graph.CallSite, resolved bool) {
	*edges = append(*edges, graph.Edge{Source: source, Target: target, CallSite: site, Kind: kind, IsResolved: resolved})
}

func (r *resolver) resolveCallExpression(fi *fileIndex, call *sitter.Node, edges *[]graph.Edge) {
	caller, ok := r.callerID(fi, call.StartByte())
	if !ok {
		return
	}
	fnNode := call.ChildByFieldName("function")
	if fnNode == nil {
		return
	}
	site := r.callSite(fi, call)

	switch fnNode.Type() {
	case "identifier":
		name := r.text(fi, fnNode)
		if target, ok := r.resolveLocalName(fi, name); ok {
			r.emit(edges, caller, target, graph.EdgeDirect, site, true)
			r.maybeCallback(fi, call, target, edges)
			return
		}
		r.emit(edges, caller, graph.DynamicTarget(name+"()"), graph.EdgeDynamic, site, false)

	case "member_expression":
		r.resolveMethodCall(fi, call, fnNode, caller, site, edges)

	case "subscript_expression":
		expr := r.text(fi, fnNode)
		r.emit(edges, caller, graph.DynamicTarget(expr+"()"), graph.EdgeDynamic, site, false)
	}
}

func (r *resolver) resolveMethodCall(fi *fileIndex, call, fnNode *sitter.Node, caller string, site graph.CallSite, edges *[]graph.Edge) {
	objNode := fnNode.ChildByFieldName("object")
	propNode := fnNode.ChildByFieldName("property")
	if objNode == nil || propNode == nil {
		return
	}
	propName := r.text(fi, propNode)

	if higherOrderMethods[propName] {
		if cbTarget, ok := r.callbackArgTarget(fi, call); ok {
			r.emit(edges, caller, cbTarget, graph.EdgeCallback, site, true)
		}
	}

	objText := r.text(fi, objNode)
	if objText == "this" {
		if target, ok := r.resolveMethodOnEnclosingClass(fi, caller, propName); ok {
			r.emit(edges, caller, target, graph.EdgeMethod, site, true)
			return
		}
	}

	if className, ok := r.resolveLocalClassVar(fi, objText); ok {
		if decl, ok := fi.decls[className]; ok && decl.kind == declClass {
			if target, ok := decl.methodByName[propName]; ok {
				r.emit(edges, caller, target, graph.EdgeMethod, site, true)
				return
			}
		}
	}

	r.emit(edges, caller, graph.DynamicTarget(objText+"."+propName+"()"), graph.EdgeDynamic, site, false)
}

// callbackArgTarget returns the target id of the first function-valued
// argument to a higher-order call: a bare function reference resolves
// directly; an inline arrow/function expression has no standalone node
// (collector only names module/class-scope declarations), so there is
// nothing to point the callback edge at and the caller reports none.
func (r *resolver) callbackArgTarget(fi *fileIndex, call *sitter.Node) (string, bool) {
	argsNode := call.ChildByFieldName("arguments")
	if argsNode == nil {
		return "", false
	}
	for i := 0; i < int(argsNode.ChildCount()); i++ {
		arg := argsNode.Child(i)
		if arg.Type() == "identifier" {
			return r.resolveLocalName(fi, r.text(fi, arg))
		}
	}
	return "", false
}

func (r *resolver) resolveMethodOnEnclosingClass(fi *fileIndex, callerID, methodName string) (string, bool) {
	for _, decl := range fi.decls {
		if decl.kind != declClass {
			continue
		}
		if decl.ctorID == callerID {
			if target, ok := decl.methodByName[methodName]; ok {
				return target, true
			}
		}
		for _, id := range decl.methodByName {
			if id == callerID {
				if target, ok := decl.methodByName[methodName]; ok {
					return target, true
				}
			}
		}
	}
	return "", false
}

// resolveLocalClassVar best-effort maps a simple identifier used as a
// call receiver back to the class it was constructed from, by scanning
// for a `const x = new ClassName(...)` initializer anywhere in the file.
func (r *resolver) resolveLocalClassVar(fi *fileIndex, varName string) (string, bool) {
	var found string
	var search func(n *sitter.Node)
	search = func(n *sitter.Node) {
		if n == nil || found != "" {
			return
		}
		if n.Type() == "variable_declarator" {
			nameNode := n.ChildByFieldName("name")
			valueNode := n.ChildByFieldName("value")
			if nameNode != nil && valueNode != nil && r.text(fi, nameNode) == varName && valueNode.Type() == "new_expression" {
				ctorNode := valueNode.ChildByFieldName("constructor")
				if ctorNode != nil {
					found = r.text(fi, ctorNode)
					return
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			search(n.Child(i))
		}
	}
	search(fi.tree.RootNode())
	return found, found != ""
}

func (r *resolver) resolveNewExpression(fi *fileIndex, newExpr *sitter.Node, edges *[]graph.Edge) {
	caller, ok := r.callerID(fi, newExpr.StartByte())
	if !ok {
		return
	}
	ctorNode := newExpr.ChildByFieldName("constructor")
	if ctorNode == nil {
		return
	}
	className := r.text(fi, ctorNode)
	site := r.callSite(fi, newExpr)

	if decl, ok := r.resolveLocalDecl(fi, className); ok && decl.kind == declClass {
		target := decl.ctorID
		if target == "" {
			// No explicit constructor: an implicit constructor has no node
			// to point at, so no edge is emitted.
			return
		}
		r.emit(edges, caller, target, graph.EdgeConstructor, site, true)
		return
	}
	r.emit(edges, caller, graph.DynamicTarget("new "+className+"()"), graph.EdgeDynamic, site, false)
}

// resolveLocalName resolves a bare identifier call target: a same-file
// declaration, or an imported binding chased through re-export chains.
func (r *resolver) resolveLocalName(fi *fileIndex, name string) (string, bool) {
	if decl, ok := fi.decls[name]; ok {
		if decl.kind == declFunction {
			return decl.id, true
		}
		return "", false
	}
	return r.resolveImport(fi, name, make(map[string]bool))
}

func (r *resolver) resolveLocalDecl(fi *fileIndex, name string) (*declInfo, bool) {
	decl, ok := fi.decls[name]
	return decl, ok
}

// resolveImport follows an imported name to its source file, then (if
// that file only re-exports the name onward) keeps chasing until it
// lands on an actual declaration, per spec.md's re-export alias example.
func (r *resolver) resolveImport(fi *fileIndex, name string, visited map[string]bool) (string, bool) {
	key := fi.relPath + "#" + name
	if visited[key] {
		return "", false
	}
	visited[key] = true

	for _, imp := range fi.imports {
		if imp.localName != name || imp.isNamespace {
			continue
		}
		target := r.resolveModuleSpecifier(fi.relPath, imp.source)
		targetFile, ok := r.idx[target]
		if !ok {
			return "", false
		}
		lookFor := imp.importedName
		if imp.isDefault || lookFor == "" {
			if decl, ok := targetFile.decls[name]; ok && decl.kind == declFunction {
				return decl.id, true
			}
			lookFor = name
		}
		if decl, ok := targetFile.decls[lookFor]; ok && decl.kind == declFunction {
			return decl.id, true
		}
		if target, ok := r.resolveImport(targetFile, lookFor, visited); ok {
			return target, true
		}
		if target, ok := r.resolveReexport(targetFile, lookFor, visited); ok {
			return target, true
		}
	}
	return r.resolveReexport(fi, name, visited)
}

func (r *resolver) resolveReexport(fi *fileIndex, name string, visited map[string]bool) (string, bool) {
	for _, rex := range fi.reexports {
		if rex.localName != name {
			continue
		}
		lookFor := rex.importedName
		if lookFor == "" {
			lookFor = name
		}
		target := r.resolveModuleSpecifier(fi.relPath, rex.source)
		targetFile, ok := r.idx[target]
		if !ok {
			continue
		}
		if decl, ok := targetFile.decls[lookFor]; ok && decl.kind == declFunction {
			return decl.id, true
		}
		if id, ok := r.resolveImport(targetFile, lookFor, visited); ok {
			return id, true
		}
		if id, ok := r.resolveReexport(targetFile, lookFor, visited); ok {
			return id, true
		}
	}
	return "", false
}

// resolveModuleSpecifier maps a relative import specifier to one of the
// project's indexed relPaths, trying the .ts/.tsx extensions and an
// index-file fallback the way Node's module resolution would.
func (r *resolver) resolveModuleSpecifier(fromRelPath, spec string) string {
	if !strings.HasPrefix(spec, ".") {
		return ""
	}
	dir := filepath.Dir(fromRelPath)
	joined := graph.NormalizePath(filepath.Join(dir, spec))

	candidates := []string{joined, joined + ".ts", joined + ".tsx", joined + "/index.ts", joined + "/index.tsx"}
	for _, c := range candidates {
		if _, ok := r.idx[c]; ok {
			return c
		}
	}
	return ""
}
