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
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/graphmap/pkg/graph"
)

// analyzeUnusedParameters implements spec.md §4.3 for TypeScript: a
// parameter whose identifier (or, for destructuring/rest patterns, every
// identifier bound by the pattern) never occurs in the function body
// outside of a member-access's name position is unused. `_`-prefixed
// names and bodyless signatures are always considered used.
func analyzeUnusedParameters(node *graph.Node, fnNode *sitter.Node, content []byte) {
	bodyNode := fnNode.ChildByFieldName("body")
	if bodyNode == nil {
		for i := range node.Parameters {
			node.Parameters[i].IsUsed = true
		}
		return
	}

	used := make(map[string]bool)
	collectUsedIdentifiers(bodyNode, content, used)

	paramsNode := fnNode.ChildByFieldName("parameters")
	var unused []string
	for i := range node.Parameters {
		p := &node.Parameters[i]
		names := bindingNames(paramNodeAt(paramsNode, p.Position), content)
		if len(names) == 0 {
			names = []string{p.Name}
		}
		// Each binding inside a destructuring pattern is evaluated
		// independently (§4.3 rule 4): a parameter of kind "object
		// destructure" can report several unused entries, one per unused
		// binding name, while its other bindings count as used.
		anyUsed := false
		for _, n := range names {
			if n == "" || n[0] == '_' || used[n] {
				anyUsed = true
				continue
			}
			unused = append(unused, n)
		}
		p.IsUsed = anyUsed
	}
	node.UnusedParameters = unused
}

func paramNodeAt(paramsNode *sitter.Node, pos int) *sitter.Node {
	if paramsNode == nil {
		return nil
	}
	idx := 0
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		p := paramsNode.Child(i)
		switch p.Type() {
		case "required_parameter", "optional_parameter", "rest_pattern", "identifier":
			if idx == pos {
				return p
			}
			idx++
		}
	}
	return nil
}

// bindingNames returns every identifier bound by a parameter pattern:
// a plain name, every key's value-binding in an object pattern
// (recursively, including nested destructuring and default values), or
// every element of an array pattern, or the rest-binding name.
func bindingNames(n *sitter.Node, content []byte) []string {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "required_parameter", "optional_parameter":
		pattern := n.ChildByFieldName("pattern")
		return bindingNames(pattern, content)
	case "rest_pattern":
		if n.ChildCount() == 0 {
			return nil
		}
		return bindingNames(n.Child(int(n.ChildCount())-1), content)
	case "identifier":
		return []string{string(content[n.StartByte():n.EndByte()])}
	case "assignment_pattern":
		left := n.ChildByFieldName("left")
		return bindingNames(left, content)
	case "object_pattern":
		var out []string
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch child.Type() {
			case "shorthand_property_identifier_pattern":
				out = append(out, string(content[child.StartByte():child.EndByte()]))
			case "pair_pattern":
				value := child.ChildByFieldName("value")
				out = append(out, bindingNames(value, content)...)
			case "rest_pattern":
				out = append(out, bindingNames(child, content)...)
			}
		}
		return out
	case "array_pattern":
		var out []string
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch child.Type() {
			case "identifier", "object_pattern", "array_pattern", "assignment_pattern", "rest_pattern":
				out = append(out, bindingNames(child, content)...)
			}
		}
		return out
	default:
		return nil
	}
}

// collectUsedIdentifiers walks a function body collecting every
// identifier referenced outside a member-access's name position, per
// spec.md §4.3 rule 3 ("appearances as the name field of a member-access
// expression do not count").
func collectUsedIdentifiers(n *sitter.Node, content []byte, used map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier":
		used[string(content[n.StartByte():n.EndByte()])] = true
		return
	case "member_expression", "subscript_expression":
		collectUsedIdentifiers(n.ChildByFieldName("object"), content, used)
		if n.Type() == "subscript_expression" {
			collectUsedIdentifiers(n.ChildByFieldName("index"), content, used)
		}
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectUsedIdentifiers(n.Child(i), content, used)
	}
}
