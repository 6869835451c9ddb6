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

// Package golang implements the Go LanguageExtractor. Per spec.md §5/§6.3
// this is an external-helper extractor: Extractor.Analyze (client.go)
// spawns the graphmap-go-helper child process, which runs AnalyzeTyped
// (this file) in its own process using golang.org/x/tools/go/packages +
// go/types for full interface fan-out and constructor fan-out. Analyze
// degrades to the in-process, AST-only Fallback (fallback.go) when the
// helper is unavailable or exits with an error; a helper timeout is fatal.
package golang

import (
	"errors"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/extract"
	"github.com/kraklabs/graphmap/pkg/graph"
)

// errTypeCheckFailed signals that the loaded packages carried type errors
// severe enough that the symbol table can't be trusted; the caller (the
// helper's main, or Extractor.Analyze's fallback path) treats this the
// same as a load failure.
var errTypeCheckFailed = errors.New("golang: typed package load reported errors")

// AnalyzeTyped loads projectRoot's packages with type information and
// extracts nodes/edges for every file in relFiles. It is the body of the
// graphmap-go-helper child process (cmd/graphmap-go-helper); it is also
// called directly by tests that don't want to exercise the subprocess
// boundary.
func AnalyzeTyped(projectRoot string, relFiles []string, buildTags []string) (extract.Result, error) {
	inSet := make(map[string]bool, len(relFiles))
	for _, f := range relFiles {
		inSet[graph.NormalizePath(f)] = true
	}

	pcfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
			packages.NeedSyntax | packages.NeedTypesInfo,
		Dir:        projectRoot,
		BuildFlags: buildFlags(buildTags),
	}

	pkgs, err := packages.Load(pcfg, "./...")
	if err != nil {
		return extract.Result{}, err
	}
	if packages.PrintErrors(pkgs) > 0 {
		return extract.Result{}, errTypeCheckFailed
	}

	b := newBuilder(projectRoot, inSet, nil)
	for _, pkg := range pkgs {
		b.declarePackage(pkg)
	}
	for _, pkg := range pkgs {
		b.walkPackage(pkg)
	}
	b.resolveConstructorFanOut()

	return extract.Result{Nodes: b.nodes, Edges: b.dedupedEdges(), FilesAnalyzed: len(b.filesAnalyzed)}, nil
}

func buildFlags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	return []string{"-tags=" + strings.Join(tags, ",")}
}

// declInfo remembers enough about a declared node to resolve calls and
// fan-out against it in the second pass.
type declInfo struct {
	id           string
	qualifiedName string
	receiverType string // "" for plain functions
	isMethod     bool
	decl         *ast.FuncDecl
	fset         *token.FileSet
	pkg          *packages.Package
}

type builder struct {
	projectRoot  string
	inSet        map[string]bool
	sink         *diagnostics.Sink

	nodes []graph.Node
	edges []graph.Edge

	// funcByObj maps a *types.Func object to its declaration info.
	funcByObj map[types.Object]*declInfo
	// methodsByType maps a named type's object to its declared methods.
	methodsByType map[types.Object][]*declInfo
	// implsByIface caches interface method-set -> concrete implementers.
	implsByIface map[*types.Interface][]types.Object

	filesAnalyzed map[string]bool

	// constructorCandidates are funcs whose return type is a named type;
	// fan-out to that type's methods is resolved once all decls are known.
	constructorCandidates []*declInfo
	constructorTarget     map[*declInfo]types.Object

	varInitFiles map[string]bool // files that got a synthetic var-init node
}

func newBuilder(projectRoot string, inSet map[string]bool, sink *diagnostics.Sink) *builder {
	return &builder{
		projectRoot:       projectRoot,
		inSet:             inSet,
		sink:              sink,
		funcByObj:         make(map[types.Object]*declInfo),
		methodsByType:     make(map[types.Object][]*declInfo),
		implsByIface:      make(map[*types.Interface][]types.Object),
		filesAnalyzed:     make(map[string]bool),
		constructorTarget: make(map[*declInfo]types.Object),
		varInitFiles:      make(map[string]bool),
	}
}

func (b *builder) relPath(fset *token.FileSet, pos token.Pos) string {
	abs := fset.Position(pos).Filename
	rel, err := filepath.Rel(b.projectRoot, abs)
	if err != nil {
		rel = abs
	}
	return graph.NormalizePath(rel)
}

// declarePackage is pass 1: enumerate every function/method declaration,
// populate funcByObj/methodsByType, and emit its Node.
func (b *builder) declarePackage(pkg *packages.Package) {
	if pkg.TypesInfo == nil {
		return
	}
	for _, file := range pkg.Syntax {
		relPath := b.relPath(pkg.Fset, file.Pos())
		if !b.inSet[relPath] {
			continue
		}
		b.filesAnalyzed[relPath] = true

		ast.Inspect(file, func(n ast.Node) bool {
			fd, ok := n.(*ast.FuncDecl)
			if !ok {
				return true
			}
			b.declareFunc(pkg, fd, relPath)
			return true
		})
	}
}

func (b *builder) declareFunc(pkg *packages.Package, fd *ast.FuncDecl, relPath string) {
	obj := pkg.TypesInfo.Defs[fd.Name]
	fn, ok := obj.(*types.Func)
	if !ok {
		return
	}

	name := fd.Name.Name
	receiverType := ""
	isMethod := fd.Recv != nil && len(fd.Recv.List) > 0
	if isMethod {
		receiverType = baseTypeName(fd.Recv.List[0].Type)
	}

	qualifiedName := name
	kind := graph.KindFunction
	if isMethod {
		qualifiedName = graph.GenerateMethodQualifiedName(receiverType, name)
		kind = graph.KindMethod
	}

	visibility := graph.VisibilityModule
	if ast.IsExported(name) {
		visibility = graph.VisibilityExported
	}

	id := graph.GenerateFunctionID(relPath, qualifiedName)
	startLine := pkg.Fset.Position(fd.Pos()).Line
	endLine := pkg.Fset.Position(fd.End()).Line

	node := graph.Node{
		ID:              id,
		Name:            name,
		QualifiedName:   qualifiedName,
		FilePath:        relPath,
		StartLine:       startLine,
		EndLine:         endLine,
		Language:        graph.LanguageGo,
		Kind:            kind,
		Visibility:      visibility,
		Parameters:      collectParameters(fd),
		PackageOrModule: graph.PackageOrModule(relPath),
		LinesOfCode:     endLine - startLine + 1,
		Status:          graph.StatusDead,
		Color:           graph.ColorRed,
	}
	analyzeUnusedParameters(&node, fd)

	b.nodes = append(b.nodes, node)

	info := &declInfo{id: id, qualifiedName: qualifiedName, receiverType: receiverType, isMethod: isMethod, decl: fd, fset: pkg.Fset, pkg: pkg}
	b.funcByObj[fn] = info

	if isMethod {
		recvObj := receiverObject(pkg, fd)
		if recvObj != nil {
			b.methodsByType[recvObj] = append(b.methodsByType[recvObj], info)
		}
	} else if fd.Type.Results != nil && len(fd.Type.Results.List) == 1 {
		// Constructor-fan-out candidate: single named-type return.
		if target := namedReturnObject(pkg, fd); target != nil {
			b.constructorCandidates = append(b.constructorCandidates, info)
			b.constructorTarget[info] = target
		}
	}
}

func receiverObject(pkg *packages.Package, fd *ast.FuncDecl) types.Object {
	recvType := fd.Recv.List[0].Type
	if star, ok := recvType.(*ast.StarExpr); ok {
		recvType = star.X
	}
	ident, ok := recvType.(*ast.Ident)
	if !ok {
		return nil
	}
	return pkg.TypesInfo.Uses[ident]
}

func namedReturnObject(pkg *packages.Package, fd *ast.FuncDecl) types.Object {
	result := fd.Type.Results.List[0].Type
	if star, ok := result.(*ast.StarExpr); ok {
		result = star.X
	}
	ident, ok := result.(*ast.Ident)
	if !ok {
		return nil
	}
	return pkg.TypesInfo.Uses[ident]
}

func baseTypeName(expr ast.Expr) string {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if idx, ok := expr.(*ast.IndexExpr); ok { // generic receiver T[P]
		expr = idx.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

func collectParameters(fd *ast.FuncDecl) []graph.Parameter {
	var params []graph.Parameter
	if fd.Type.Params == nil {
		return params
	}
	pos := 0
	for _, field := range fd.Type.Params.List {
		typ := exprString(field.Type)
		if len(field.Names) == 0 {
			params = append(params, graph.Parameter{Name: "_", Type: typ, IsUsed: true, Position: pos})
			pos++
			continue
		}
		for _, name := range field.Names {
			params = append(params, graph.Parameter{Name: name.Name, Type: typ, IsUsed: false, Position: pos})
			pos++
		}
	}
	return params
}

func exprString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return "*" + exprString(e.X)
	case *ast.SelectorExpr:
		return exprString(e.X) + "." + e.Sel.Name
	case *ast.ArrayType:
		return "[]" + exprString(e.Elt)
	default:
		return ""
	}
}

// analyzeUnusedParameters implements §4.3: a simple-identifier parameter
// is used iff it appears in a non-declaring position in the body; names
// starting with "_" are always used; every parameter of a function with
// no body is used.
func analyzeUnusedParameters(node *graph.Node, fd *ast.FuncDecl) {
	if fd.Body == nil {
		for i := range node.Parameters {
			node.Parameters[i].IsUsed = true
		}
		return
	}

	used := make(map[string]bool)
	ast.Inspect(fd.Body, func(n ast.Node) bool {
		// Skip the Sel half of a SelectorExpr: a field/method name that
		// happens to match a parameter name isn't a use of that parameter.
		if sel, ok := n.(*ast.SelectorExpr); ok {
			ast.Inspect(sel.X, func(inner ast.Node) bool {
				if ident, ok := inner.(*ast.Ident); ok {
					used[ident.Name] = true
				}
				return true
			})
			return false
		}
		if ident, ok := n.(*ast.Ident); ok {
			used[ident.Name] = true
		}
		return true
	})

	var unused []string
	for i := range node.Parameters {
		p := &node.Parameters[i]
		if strings.HasPrefix(p.Name, "_") {
			p.IsUsed = true
			continue
		}
		p.IsUsed = used[p.Name]
		if !p.IsUsed {
			unused = append(unused, p.Name)
		}
	}
	node.UnusedParameters = unused
}

// walkPackage is pass 2: walk every declared function's body, resolving
// calls and function-valued references against the symbol table built
// in pass 1, and scan package-level var/const blocks for DI var-init
// provider patterns.
func (b *builder) walkPackage(pkg *packages.Package) {
	if pkg.TypesInfo == nil {
		return
	}
	for _, file := range pkg.Syntax {
		relPath := b.relPath(pkg.Fset, file.Pos())
		if !b.inSet[relPath] {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			fd, ok := n.(*ast.FuncDecl)
			if !ok {
				return true
			}
			caller := b.funcByObj[funcObjOf(pkg, fd)]
			if caller == nil || fd.Body == nil {
				return true
			}
			b.walkBody(pkg, fd.Body, caller)
			return false
		})

		b.scanVarInit(pkg, file, relPath)
	}
}

func funcObjOf(pkg *packages.Package, fd *ast.FuncDecl) types.Object {
	return pkg.TypesInfo.Defs[fd.Name]
}

func (b *builder) walkBody(pkg *packages.Package, body ast.Node, caller *declInfo) {
	callSites := make(map[ast.Node]bool)
	ast.Inspect(body, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpr); ok {
			b.resolveCall(pkg, call, caller)
			callSites[call.Fun] = true
		}
		return true
	})
	ast.Inspect(body, func(n ast.Node) bool {
		switch expr := n.(type) {
		case *ast.Ident:
			if !callSites[expr] {
				b.maybeFuncref(pkg, expr, caller)
			}
		case *ast.SelectorExpr:
			if !callSites[expr] {
				b.maybeMethodValue(pkg, expr, caller)
			}
		}
		return true
	})
}

func (b *builder) resolveCall(pkg *packages.Package, call *ast.CallExpr, caller *declInfo) {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		obj := pkg.TypesInfo.Uses[fn]
		if target := b.funcByObj[asFunc(obj)]; target != nil {
			b.addEdge(caller.id, target.id, graph.EdgeDirect, pkg, call.Pos())
		}
	case *ast.SelectorExpr:
		b.resolveSelectorCall(pkg, fn, caller, call.Pos())
	}
}

func asFunc(obj types.Object) types.Object {
	if obj == nil {
		return nil
	}
	if _, ok := obj.(*types.Func); ok {
		return obj
	}
	return nil
}

func (b *builder) resolveSelectorCall(pkg *packages.Package, sel *ast.SelectorExpr, caller *declInfo, pos token.Pos) {
	selObj := pkg.TypesInfo.Uses[sel.Sel]
	fnObj, ok := selObj.(*types.Func)
	if !ok {
		return
	}

	// Package-qualified call: pkg.Foo() → direct.
	if ident, ok := sel.X.(*ast.Ident); ok {
		if _, isPkgName := pkg.TypesInfo.Uses[ident].(*types.PkgName); isPkgName {
			if target := b.funcByObj[fnObj]; target != nil {
				b.addEdge(caller.id, target.id, graph.EdgeDirect, pkg, pos)
			}
			return
		}
	}

	recvType := pkg.TypesInfo.TypeOf(sel.X)
	if recvType == nil {
		return
	}
	if iface, ok := underlyingInterface(recvType); ok {
		for _, implObj := range b.implementers(iface) {
			impl := b.methodByName(implObj, fnObj.Name())
			if impl != nil {
				b.addEdge(caller.id, impl.id, graph.EdgeInterface, pkg, pos)
			}
		}
		return
	}

	if target := b.funcByObj[fnObj]; target != nil {
		b.addEdge(caller.id, target.id, graph.EdgeMethod, pkg, pos)
	}
}

func underlyingInterface(t types.Type) (*types.Interface, bool) {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	iface, ok := t.Underlying().(*types.Interface)
	return iface, ok
}

// implementers returns every in-project named type implementing iface,
// caching the result the first time it's computed per spec.md §4.2.2's
// "unresolved cache".
func (b *builder) implementers(iface *types.Interface) []types.Object {
	if cached, ok := b.implsByIface[iface]; ok {
		return cached
	}
	var out []types.Object
	for typeObj := range b.methodsByType {
		named, ok := typeObj.Type().(*types.Named)
		if !ok {
			continue
		}
		if types.Implements(named, iface) || types.Implements(types.NewPointer(named), iface) {
			out = append(out, typeObj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	b.implsByIface[iface] = out
	return out
}

func (b *builder) methodByName(typeObj types.Object, name string) *declInfo {
	for _, m := range b.methodsByType[typeObj] {
		if m.decl.Name.Name == name {
			return m
		}
	}
	return nil
}

// maybeFuncref records a funcref edge when an identifier resolves to an
// in-project function. Call-position idents also get a direct edge from
// resolveCall; dedupedEdges collapses both to the single (source,target)
// edge emitted first.
func (b *builder) maybeFuncref(pkg *packages.Package, ident *ast.Ident, caller *declInfo) {
	obj := pkg.TypesInfo.Uses[ident]
	fn, ok := obj.(*types.Func)
	if !ok {
		return
	}
	target := b.funcByObj[fn]
	if target == nil || target.isMethod {
		return
	}
	b.addEdge(caller.id, target.id, graph.EdgeFuncref, pkg, ident.Pos())
}

func (b *builder) maybeMethodValue(pkg *packages.Package, sel *ast.SelectorExpr, caller *declInfo) {
	obj := pkg.TypesInfo.Uses[sel.Sel]
	fn, ok := obj.(*types.Func)
	if !ok {
		return
	}
	target := b.funcByObj[fn]
	if target == nil {
		return
	}
	b.addEdge(caller.id, target.id, graph.EdgeFuncref, pkg, sel.Pos())
}

// scanVarInit implements §4.2's synthetic var-init node: a package-level
// var/const initializer that lists function values (the Go DI-provider
// pattern) synthesizes an entry-pointed "<relpath>:__var_init__" node
// with one varinit edge per referenced in-project function.
func (b *builder) scanVarInit(pkg *packages.Package, file *ast.File, relPath string) {
	var refs []types.Object
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || (gd.Tok != token.VAR && gd.Tok != token.CONST) {
			continue
		}
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, value := range vs.Values {
				ast.Inspect(value, func(n ast.Node) bool {
					ident, ok := n.(*ast.Ident)
					if !ok {
						return true
					}
					if fn, ok := pkg.TypesInfo.Uses[ident].(*types.Func); ok {
						if b.funcByObj[fn] != nil {
							refs = append(refs, fn)
						}
					}
					return true
				})
			}
		}
	}
	if len(refs) == 0 {
		return
	}

	id := graph.GenerateFunctionID(relPath, graph.VarInitQualifiedName)
	b.nodes = append(b.nodes, graph.Node{
		ID:              id,
		Name:            graph.VarInitQualifiedName,
		QualifiedName:   graph.VarInitQualifiedName,
		FilePath:        relPath,
		StartLine:       1,
		EndLine:         1,
		Language:        graph.LanguageGo,
		Kind:            graph.KindInit,
		Visibility:      graph.VisibilityModule,
		IsEntryPoint:    true,
		Parameters:      []graph.Parameter{},
		PackageOrModule: graph.PackageOrModule(relPath),
		LinesOfCode:     1,
		Status:          graph.StatusEntry,
		Color:           graph.ColorBlue,
	})
	b.varInitFiles[relPath] = true

	seen := make(map[string]bool)
	for _, fn := range refs {
		target := b.funcByObj[fn]
		if target == nil || seen[target.id] {
			continue
		}
		seen[target.id] = true
		b.edges = append(b.edges, graph.Edge{
			Source: id, Target: target.id, Kind: graph.EdgeVarinit, IsResolved: true,
			CallSite: graph.CallSite{FilePath: relPath, Line: 1, Column: 1},
		})
	}
}

// resolveConstructorFanOut implements §4.2.2's constructor fan-out: a
// standalone function returning named type T gets a provided edge to
// every method on T (or, if T is an interface, on every implementer).
func (b *builder) resolveConstructorFanOut() {
	for _, candidate := range b.constructorCandidates {
		target := b.constructorTarget[candidate]
		if iface, ok := target.Type().Underlying().(*types.Interface); ok {
			for _, implObj := range b.implementers(iface) {
				for _, m := range b.methodsByType[implObj] {
					b.edges = append(b.edges, graph.Edge{
						Source: candidate.id, Target: m.id, Kind: graph.EdgeProvided, IsResolved: true,
						CallSite: graph.CallSite{FilePath: b.relPath(candidate.fset, candidate.decl.Pos()), Line: 1, Column: 1},
					})
				}
			}
			continue
		}
		for _, m := range b.methodsByType[target] {
			b.edges = append(b.edges, graph.Edge{
				Source: candidate.id, Target: m.id, Kind: graph.EdgeProvided, IsResolved: true,
				CallSite: graph.CallSite{FilePath: b.relPath(candidate.fset, candidate.decl.Pos()), Line: 1, Column: 1},
			})
		}
	}
}

func (b *builder) addEdge(source, target string, kind graph.EdgeKind, pkg *packages.Package, pos token.Pos) {
	p := pkg.Fset.Position(pos)
	b.edges = append(b.edges, graph.Edge{
		Source: source, Target: target, Kind: kind, IsResolved: true,
		CallSite: graph.CallSite{FilePath: b.relPath(pkg.Fset, pos), Line: p.Line, Column: p.Column},
	})
}

// dedupedEdges drops duplicate (source,target) pairs whatever their kind
// per §4.2.2 ("Deduplicate edges by (source,target)"), keeping the first
// occurrence's kind and callSite.
func (b *builder) dedupedEdges() []graph.Edge {
	seen := make(map[string]bool, len(b.edges))
	out := make([]graph.Edge, 0, len(b.edges))
	for _, e := range b.edges {
		key := e.Source + "\x00" + e.Target
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
