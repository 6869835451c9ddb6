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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/graphmap/pkg/graph"
)

// collectPythonParams builds the Parameter list for a function_definition
// or lambda node, skipping the first self/cls receiver when isMethod.
func collectPythonParams(n *sitter.Node, content []byte, isMethod bool) []graph.Parameter {
	paramsNode := n.ChildByFieldName("parameters")
	if paramsNode == nil {
		return lambdaParams(n, content, isMethod)
	}

	var params []graph.Parameter
	pos := 0
	skippedReceiver := false
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		p := paramsNode.Child(i)
		name, ok := paramIdentifier(p, content)
		if !ok {
			continue
		}
		if isMethod && !skippedReceiver && (name == "self" || name == "cls") {
			skippedReceiver = true
			continue
		}
		params = append(params, graph.Parameter{Name: name, IsUsed: false, Position: pos})
		pos++
	}
	return params
}

func lambdaParams(n *sitter.Node, content []byte, isMethod bool) []graph.Parameter {
	paramsNode := n.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}
	var params []graph.Parameter
	pos := 0
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		p := paramsNode.Child(i)
		name, ok := paramIdentifier(p, content)
		if !ok {
			continue
		}
		params = append(params, graph.Parameter{Name: name, IsUsed: false, Position: pos})
		pos++
	}
	_ = isMethod
	return params
}

func paramIdentifier(p *sitter.Node, content []byte) (string, bool) {
	switch p.Type() {
	case "identifier":
		return string(content[p.StartByte():p.EndByte()]), true
	case "typed_parameter", "default_parameter", "typed_default_parameter":
		nameNode := p.Child(0)
		if nameNode == nil {
			return "", false
		}
		if nameNode.Type() == "identifier" {
			return string(content[nameNode.StartByte():nameNode.EndByte()]), true
		}
		return "", false
	case "list_splat_pattern", "dictionary_splat_pattern":
		if p.NamedChildCount() == 0 {
			return "", false
		}
		inner := p.NamedChild(0)
		prefix := "*"
		if p.Type() == "dictionary_splat_pattern" {
			prefix = "**"
		}
		return prefix + string(content[inner.StartByte():inner.EndByte()]), true
	default:
		return "", false
	}
}

// analyzeUnusedParameters implements spec.md §4.3 for Python: `_`-prefixed
// names are always used, bodyless functions (stubs, `...`/`pass`-only
// bodies do still have a body node so are walked normally) mark every
// parameter used, otherwise a parameter is used iff its identifier
// appears in the body outside a member-access's attribute position.
func analyzeUnusedParameters(node *graph.Node, fnNode *sitter.Node, content []byte, isMethod bool) {
	bodyNode := fnNode.ChildByFieldName("body")
	if bodyNode == nil {
		for i := range node.Parameters {
			node.Parameters[i].IsUsed = true
		}
		return
	}

	used := make(map[string]bool)
	collectPythonUsedIdentifiers(bodyNode, content, used)

	var unused []string
	for i := range node.Parameters {
		p := &node.Parameters[i]
		// A rest binding (*args/**kwargs) is evaluated like any other
		// simple name, against its bare identifier (§4.3 rule 5); only a
		// leading underscore is always-used (rule 1).
		name := p.Name
		checkName := strings.TrimLeft(name, "*")
		if len(name) > 0 && name[0] == '_' {
			p.IsUsed = true
			continue
		}
		p.IsUsed = used[checkName]
		if !p.IsUsed {
			unused = append(unused, name)
		}
	}
	node.UnusedParameters = unused
}

func collectPythonUsedIdentifiers(n *sitter.Node, content []byte, used map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		used[string(content[n.StartByte():n.EndByte()])] = true
		return
	case "attribute":
		collectPythonUsedIdentifiers(n.ChildByFieldName("object"), content, used)
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectPythonUsedIdentifiers(n.Child(i), content, used)
	}
}
