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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/graphmap/pkg/graph"
)

// collector is pass 1: walk a file once, emitting Nodes and populating
// fi.decls/fi.imports/fi.reexports for pass 2 to resolve against.
type collector struct {
	fi    *fileIndex
	nodes []graph.Node
}

func (c *collector) recordRange(n *sitter.Node, id string) {
	c.fi.funcRanges = append(c.fi.funcRanges, funcRange{start: n.StartByte(), end: n.EndByte(), id: id})
}

func (c *collector) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(c.fi.content[n.StartByte():n.EndByte()])
}

func (c *collector) indexFile(root *sitter.Node) {
	c.walkTop(root)
}

// walkTop walks top-level statements plus recurses into class bodies;
// it does not descend into function bodies (that's pass 2's job).
func (c *collector) walkTop(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_declaration":
		c.addFunctionDecl(n)
		return
	case "class_declaration":
		c.addClassDecl(n)
		return
	case "lexical_declaration", "variable_declaration":
		c.addVariableDeclarators(n)
		return
	case "import_statement":
		c.addImport(n)
		return
	case "export_statement":
		if c.addReexport(n) {
			return
		}
		// export default / export <decl>: fall through to the wrapped decl.
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c.walkTop(n.Child(i))
	}
}

func (c *collector) addFunctionDecl(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	name := c.text(nameNode)
	if name == "" {
		name = "default"
	}
	startLine := int(n.StartPoint().Row) + 1
	endLine := int(n.EndPoint().Row) + 1

	visibility := graph.VisibilityModule
	if isExported(n) {
		visibility = graph.VisibilityExported
	}

	id := graph.GenerateFunctionID(c.fi.relPath, name)
	c.nodes = append(c.nodes, graph.Node{
		ID: id, Name: name, QualifiedName: name, FilePath: c.fi.relPath,
		StartLine: startLine, EndLine: endLine, Language: graph.LanguageTypeScript,
		Kind: graph.KindFunction, Visibility: visibility,
		Parameters:      collectParams(n, c.fi.content),
		PackageOrModule: graph.PackageOrModule(c.fi.relPath),
		LinesOfCode:     endLine - startLine + 1,
		Status:          graph.StatusDead, Color: graph.ColorRed,
		Decorators: decoratorsOf(n, c.fi.content),
	})
	analyzeUnusedParameters(&c.nodes[len(c.nodes)-1], n, c.fi.content)
	c.recordRange(n, id)
	c.fi.decls[name] = &declInfo{id: id, kind: declFunction}
}

func (c *collector) addVariableDeclarators(n *sitter.Node) {
	exported := isExported(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		valueNode := child.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}
		switch valueNode.Type() {
		case "arrow_function", "function_expression", "function":
		default:
			continue
		}
		name := c.text(nameNode)
		if name == "" {
			continue
		}
		startLine := int(valueNode.StartPoint().Row) + 1
		endLine := int(valueNode.EndPoint().Row) + 1
		visibility := graph.VisibilityModule
		if exported {
			visibility = graph.VisibilityExported
		}
		kind := graph.KindArrow
		if valueNode.Type() != "arrow_function" {
			kind = graph.KindClosure
		}
		id := graph.GenerateFunctionID(c.fi.relPath, name)
		c.nodes = append(c.nodes, graph.Node{
			ID: id, Name: name, QualifiedName: name, FilePath: c.fi.relPath,
			StartLine: startLine, EndLine: endLine, Language: graph.LanguageTypeScript,
			Kind: kind, Visibility: visibility,
			Parameters:      collectParams(valueNode, c.fi.content),
			PackageOrModule: graph.PackageOrModule(c.fi.relPath),
			LinesOfCode:     endLine - startLine + 1,
			Status:          graph.StatusDead, Color: graph.ColorRed,
			Decorators: decoratorsOf(n, c.fi.content),
		})
		analyzeUnusedParameters(&c.nodes[len(c.nodes)-1], valueNode, c.fi.content)
		c.recordRange(valueNode, id)
		c.fi.decls[name] = &declInfo{id: id, kind: declFunction}
	}
}

func (c *collector) addClassDecl(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	className := c.text(nameNode)
	if className == "" {
		return
	}
	info := &declInfo{kind: declClass, methodByName: make(map[string]string)}
	c.fi.decls[className] = info

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Type() {
		case "method_definition":
			c.addMethod(member, className, info)
		case "public_field_definition":
			c.addClassProperty(member, className)
		}
	}
}

func (c *collector) addMethod(n *sitter.Node, className string, info *declInfo) {
	nameNode := n.ChildByFieldName("name")
	methodName := c.text(nameNode)
	if methodName == "" {
		return
	}

	isGetter, isSetter := false, false
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nameNode {
			break
		}
		switch c.text(child) {
		case "get":
			isGetter = true
		case "set":
			isSetter = true
		}
	}
	switch {
	case isGetter:
		methodName = "get " + methodName
	case isSetter:
		methodName = "set " + methodName
	}

	startLine := int(n.StartPoint().Row) + 1
	endLine := int(n.EndPoint().Row) + 1
	qualifiedName := graph.GenerateMethodQualifiedName(className, methodName)
	if methodName == "constructor" {
		qualifiedName = graph.GenerateConstructorQualifiedName(className)
	}

	visibility := memberVisibility(n, c.fi.content)
	id := graph.GenerateFunctionID(c.fi.relPath, qualifiedName)
	node := graph.Node{
		ID: id, Name: methodName, QualifiedName: qualifiedName, FilePath: c.fi.relPath,
		StartLine: startLine, EndLine: endLine, Language: graph.LanguageTypeScript,
		Kind: graph.KindMethod, Visibility: visibility,
		Parameters:      collectParams(n, c.fi.content),
		PackageOrModule: graph.PackageOrModule(c.fi.relPath),
		LinesOfCode:     endLine - startLine + 1,
		Status:          graph.StatusDead, Color: graph.ColorRed,
		Decorators: decoratorsOf(n, c.fi.content),
	}
	c.nodes = append(c.nodes, node)
	analyzeUnusedParameters(&c.nodes[len(c.nodes)-1], n, c.fi.content)
	c.recordRange(n, id)

	if methodName == "constructor" {
		info.ctorID = id
	} else {
		info.methodByName[methodName] = id
	}
}

func (c *collector) addClassProperty(n *sitter.Node, className string) {
	nameNode := n.ChildByFieldName("name")
	valueNode := n.ChildByFieldName("value")
	if nameNode == nil || valueNode == nil {
		return
	}
	switch valueNode.Type() {
	case "arrow_function", "function_expression", "function":
	default:
		return
	}
	propName := c.text(nameNode)
	startLine := int(valueNode.StartPoint().Row) + 1
	endLine := int(valueNode.EndPoint().Row) + 1
	qualifiedName := graph.GenerateMethodQualifiedName(className, propName)
	kind := graph.KindArrow
	if valueNode.Type() != "arrow_function" {
		kind = graph.KindClosure
	}
	visibility := memberVisibility(n, c.fi.content)
	id := graph.GenerateFunctionID(c.fi.relPath, qualifiedName)
	c.nodes = append(c.nodes, graph.Node{
		ID: id, Name: propName, QualifiedName: qualifiedName, FilePath: c.fi.relPath,
		StartLine: startLine, EndLine: endLine, Language: graph.LanguageTypeScript,
		Kind: kind, Visibility: visibility,
		Parameters:      collectParams(valueNode, c.fi.content),
		PackageOrModule: graph.PackageOrModule(c.fi.relPath),
		LinesOfCode:     endLine - startLine + 1,
		Status:          graph.StatusDead, Color: graph.ColorRed,
		Decorators: decoratorsOf(n, c.fi.content),
	})
	analyzeUnusedParameters(&c.nodes[len(c.nodes)-1], valueNode, c.fi.content)
	c.recordRange(valueNode, id)
}

func memberVisibility(n *sitter.Node, content []byte) graph.Visibility {
	for i := 0; i < int(n.ChildCount()); i++ {
		switch string(content[n.Child(i).StartByte():n.Child(i).EndByte()]) {
		case "private":
			return graph.VisibilityPrivate
		case "protected":
			return graph.VisibilityInternal
		case "public":
			return graph.VisibilityPublic
		}
	}
	return graph.VisibilityPublic
}

func collectParams(fnNode *sitter.Node, content []byte) []graph.Parameter {
	paramsNode := fnNode.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}
	var params []graph.Parameter
	pos := 0
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		p := paramsNode.Child(i)
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			patternNode := p.ChildByFieldName("pattern")
			name := paramName(patternNode, content)
			params = append(params, graph.Parameter{Name: name, IsUsed: false, Position: pos})
			pos++
		case "rest_pattern":
			name := "..." + paramName(p.Child(int(p.ChildCount())-1), content)
			params = append(params, graph.Parameter{Name: name, IsUsed: false, Position: pos})
			pos++
		case "identifier":
			params = append(params, graph.Parameter{Name: string(content[p.StartByte():p.EndByte()]), IsUsed: false, Position: pos})
			pos++
		}
	}
	return params
}

func paramName(n *sitter.Node, content []byte) string {
	if n == nil {
		return "_"
	}
	switch n.Type() {
	case "identifier":
		return string(content[n.StartByte():n.EndByte()])
	case "object_pattern", "array_pattern":
		return string(content[n.StartByte():n.EndByte()])
	default:
		return string(content[n.StartByte():n.EndByte()])
	}
}

// addImport records local-name -> (source module, imported name) bindings
// from `import Foo from './a'`, `import { a, b as c } from './x'`, and
// `import * as ns from './y'`.
func (c *collector) addImport(n *sitter.Node) {
	sourceNode := n.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	source := strings.Trim(c.text(sourceNode), `"'`)

	clause := n.ChildByFieldName("import") // tree-sitter field name varies by grammar version
	if clause == nil {
		for i := 0; i < int(n.ChildCount()); i++ {
			if n.Child(i).Type() == "import_clause" {
				clause = n.Child(i)
				break
			}
		}
	}
	if clause == nil {
		return
	}
	c.walkImportClause(clause, source)
}

func (c *collector) walkImportClause(n *sitter.Node, source string) {
	switch n.Type() {
	case "identifier":
		local := c.text(n)
		c.fi.imports = append(c.fi.imports, importBinding{localName: local, source: source, isDefault: true})
	case "namespace_import":
		local := c.text(n.Child(int(n.ChildCount()) - 1))
		c.fi.imports = append(c.fi.imports, importBinding{localName: local, source: source, isNamespace: true})
	case "named_imports":
		for i := 0; i < int(n.ChildCount()); i++ {
			spec := n.Child(i)
			if spec.Type() != "import_specifier" {
				continue
			}
			nameNode := spec.ChildByFieldName("name")
			aliasNode := spec.ChildByFieldName("alias")
			imported := c.text(nameNode)
			local := imported
			if aliasNode != nil {
				local = c.text(aliasNode)
			}
			c.fi.imports = append(c.fi.imports, importBinding{localName: local, importedName: imported, source: source})
		}
	default:
		for i := 0; i < int(n.ChildCount()); i++ {
			c.walkImportClause(n.Child(i), source)
		}
	}
}

// addReexport handles `export { foo } from './a'` and `export * from
// './a'`; returns true when it consumed the export_statement (so the
// caller doesn't also try to index it as a plain declaration).
func (c *collector) addReexport(n *sitter.Node) bool {
	sourceNode := n.ChildByFieldName("source")
	if sourceNode == nil {
		return false
	}
	source := strings.Trim(c.text(sourceNode), `"'`)

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			spec := child.Child(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			nameNode := spec.ChildByFieldName("name")
			aliasNode := spec.ChildByFieldName("alias")
			imported := c.text(nameNode)
			local := imported
			if aliasNode != nil {
				local = c.text(aliasNode)
			}
			c.fi.reexports = append(c.fi.reexports, reexportBinding{localName: local, importedName: imported, source: source})
		}
	}
	return true
}
