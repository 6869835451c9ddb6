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

package golang

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/extract"
	"github.com/kraklabs/graphmap/pkg/graph"
)

// Fallback extracts Go nodes/edges with tree-sitter only, no go/types. It
// resolves calls within a file by simple name, same as the teacher's
// parser_go.go; it cannot see interface fan-out, constructor fan-out or
// cross-package calls, since none of that survives without a type checker.
func Fallback(cfg extract.Config, files []extract.FileEntity, sink *diagnostics.Sink) (extract.Result, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	var nodes []graph.Node
	var edges []graph.Edge
	filesAnalyzed := 0

	for _, f := range files {
		if f.Language != graph.LanguageGo {
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

		fc := newFileCollector(relPath, content)
		fc.walk(tree.RootNode())
		tree.Close()

		nodes = append(nodes, fc.nodes...)
		edges = append(edges, fc.edges...)
		filesAnalyzed++
	}

	return extract.Result{Nodes: nodes, Edges: edges, FilesAnalyzed: filesAnalyzed}, nil
}

type fnWithNode struct {
	id   string
	node *sitter.Node
}

type fileCollector struct {
	relPath     string
	content     []byte
	nodes       []graph.Node
	edges       []graph.Edge
	byName      map[string]string // simple name -> id, for same-file call resolution
	funcs       []fnWithNode
	anonCounter int
}

func newFileCollector(relPath string, content []byte) *fileCollector {
	return &fileCollector{relPath: relPath, content: content, byName: make(map[string]string)}
}

func (c *fileCollector) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_declaration":
		c.addFunc(n, c.funcDeclName(n), graph.KindFunction)
	case "method_declaration":
		c.addFunc(n, c.methodDeclName(n), graph.KindMethod)
	case "func_literal":
		c.anonCounter++
		c.addFunc(n, fmt.Sprintf("$anon_%d", c.anonCounter), graph.KindClosure)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c.walk(n.Child(i))
	}

	if n.Type() == "source_file" {
		c.resolveCalls()
	}
}

func (c *fileCollector) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(c.content[n.StartByte():n.EndByte()])
}

func (c *fileCollector) funcDeclName(n *sitter.Node) string {
	return c.text(n.ChildByFieldName("name"))
}

func (c *fileCollector) methodDeclName(n *sitter.Node) string {
	name := c.text(n.ChildByFieldName("name"))
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return name
	}
	receiverType := receiverTypeName(recv, c.content)
	if receiverType == "" {
		return name
	}
	return graph.GenerateMethodQualifiedName(receiverType, name)
}

func receiverTypeName(recv *sitter.Node, content []byte) string {
	// receiver is a parameter_list with one parameter_declaration whose
	// type is either an identifier or a pointer_type wrapping one.
	for i := 0; i < int(recv.ChildCount()); i++ {
		child := recv.Child(i)
		if child.Type() != "parameter_declaration" {
			continue
		}
		typeNode := child.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		if typeNode.Type() == "pointer_type" {
			typeNode = typeNode.Child(int(typeNode.ChildCount()) - 1)
		}
		return string(content[typeNode.StartByte():typeNode.EndByte()])
	}
	return ""
}

func (c *fileCollector) addFunc(n *sitter.Node, name string, kind graph.FunctionKind) {
	if name == "" {
		return
	}
	startLine := int(n.StartPoint().Row) + 1
	endLine := int(n.EndPoint().Row) + 1

	visibility := graph.VisibilityModule
	simple := name
	if idx := strings.LastIndex(simple, "."); idx >= 0 {
		simple = simple[idx+1:]
	}
	if simple != "" && simple[0] >= 'A' && simple[0] <= 'Z' {
		visibility = graph.VisibilityExported
	}

	id := graph.GenerateFunctionID(c.relPath, name)
	node := graph.Node{
		ID:              id,
		Name:            simple,
		QualifiedName:   name,
		FilePath:        c.relPath,
		StartLine:       startLine,
		EndLine:         endLine,
		Language:        graph.LanguageGo,
		Kind:            kind,
		Visibility:      visibility,
		Parameters:      c.collectParams(n),
		PackageOrModule: graph.PackageOrModule(c.relPath),
		LinesOfCode:     endLine - startLine + 1,
		Status:          graph.StatusDead,
		Color:           graph.ColorRed,
	}
	analyzeFallbackUnusedParameters(&node, n, c.content)
	c.nodes = append(c.nodes, node)
	c.byName[simple] = id
	c.funcs = append(c.funcs, fnWithNode{id: id, node: n})
}

func (c *fileCollector) collectParams(fnNode *sitter.Node) []graph.Parameter {
	paramsNode := fnNode.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}
	var params []graph.Parameter
	pos := 0
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		decl := paramsNode.Child(i)
		if decl.Type() != "parameter_declaration" && decl.Type() != "variadic_parameter_declaration" {
			continue
		}
		typeNode := decl.ChildByFieldName("type")
		typ := c.text(typeNode)
		nameNode := decl.ChildByFieldName("name")
		name := c.text(nameNode)
		if name == "" {
			name = "_"
		}
		params = append(params, graph.Parameter{Name: name, Type: typ, IsUsed: false, Position: pos})
		pos++
	}
	return params
}

// analyzeFallbackUnusedParameters ports golang.go's analyzeUnusedParameters
// to the tree-sitter AST the fallback path walks: a parameter is used iff
// its identifier appears in the body outside a selector expression's field
// position; "_"-prefixed names and bodyless declarations are always used.
func analyzeFallbackUnusedParameters(node *graph.Node, fnNode *sitter.Node, content []byte) {
	body := fnNode.ChildByFieldName("body")
	if body == nil {
		for i := range node.Parameters {
			node.Parameters[i].IsUsed = true
		}
		return
	}

	used := make(map[string]bool)
	collectGoUsedIdentifiers(body, content, used)

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

func collectGoUsedIdentifiers(n *sitter.Node, content []byte, used map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		used[string(content[n.StartByte():n.EndByte()])] = true
		return
	case "selector_expression":
		collectGoUsedIdentifiers(n.ChildByFieldName("operand"), content, used)
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectGoUsedIdentifiers(n.Child(i), content, used)
	}
}

// resolveCalls walks each collected function body for call_expression
// nodes whose callee resolves, by simple name, to another function
// declared in this same file. Cross-file and cross-package calls are
// unresolvable without type information and are silently dropped, same
// posture as the teacher's simplified (non-tree-sitter) Go fallback.
func (c *fileCollector) resolveCalls() {
	for _, fn := range c.funcs {
		body := fn.node.ChildByFieldName("body")
		if body == nil {
			continue
		}
		c.walkCalls(body, fn.id)
	}
}

func (c *fileCollector) walkCalls(n *sitter.Node, callerID string) {
	if n == nil {
		return
	}
	if n.Type() == "call_expression" {
		fnNode := n.ChildByFieldName("function")
		name := c.calleeName(fnNode)
		if name != "" {
			if targetID, ok := c.byName[name]; ok {
				c.edges = append(c.edges, graph.Edge{
					Source: callerID, Target: targetID, Kind: graph.EdgeDirect, IsResolved: true,
					CallSite: graph.CallSite{
						FilePath: c.relPath,
						Line:     int(n.StartPoint().Row) + 1,
						Column:   int(n.StartPoint().Column) + 1,
					},
				})
			}
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c.walkCalls(n.Child(i), callerID)
	}
}

func (c *fileCollector) calleeName(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier":
		return c.text(n)
	case "selector_expression":
		field := n.ChildByFieldName("field")
		return c.text(field)
	case "index_expression":
		return c.calleeName(n.ChildByFieldName("operand"))
	default:
		return ""
	}
}
