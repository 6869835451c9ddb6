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

// Package entrypoint implements EntryPointMatcher: user-configured rules
// plus per-language auto-detection, producing the entry-id set the
// reachability engine BFS's from.
package entrypoint

import (
	"regexp"
	"strings"

	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/discovery"
	"github.com/kraklabs/graphmap/pkg/graph"
)

// RuleTag is the closed set of entry-point rule kinds.
type RuleTag string

const (
	RuleFile      RuleTag = "file"
	RuleFunction  RuleTag = "function"
	RuleDecorator RuleTag = "decorator"
	RuleExport    RuleTag = "export"
)

// Rule is one configured entry-point rule: {tag, pattern}.
type Rule struct {
	Tag     RuleTag `yaml:"tag" json:"tag"`
	Pattern string  `yaml:"pattern" json:"pattern"`
}

var goAutoEntryNames = regexp.MustCompile(`^(main|init|Test[A-Za-z0-9_]*|Benchmark[A-Za-z0-9_]*|Example[A-Za-z0-9_]*)$`)

// Match applies configured rules plus language auto-detection to nodes,
// setting IsEntryPoint in place and returning the final entry id set in
// first-matched insertion order (nodes are visited in their existing
// slice order, which the assembler keeps extraction-stable prior to the
// id-ascending sort applied later).
func Match(nodes []graph.Node, rules []Rule, sink *diagnostics.Sink) (map[string]bool, []string) {
	entrySet := make(map[string]bool)
	var insertionOrder []string

	mark := func(id string) {
		if !entrySet[id] {
			entrySet[id] = true
			insertionOrder = append(insertionOrder, id)
		}
	}

	validRules := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if (r.Tag == RuleFile || r.Tag == RuleExport) && !discovery.IsWellFormedGlob(r.Pattern) {
			if sink != nil {
				sink.Add(graph.Diagnostic{Kind: "MatcherGlobInvalid", Message: "malformed glob pattern: " + r.Pattern, Fatal: false})
			}
			continue
		}
		validRules = append(validRules, r)
	}

	for i := range nodes {
		n := &nodes[i]
		if matchesConfigured(*n, validRules) || matchesAuto(*n) {
			n.IsEntryPoint = true
		}
	}
	for _, n := range nodes {
		if n.IsEntryPoint {
			mark(n.ID)
		}
	}

	return entrySet, insertionOrder
}

func matchesConfigured(n graph.Node, rules []Rule) bool {
	for _, r := range rules {
		switch r.Tag {
		case RuleFile, RuleExport:
			if n.Visibility == graph.VisibilityExported && discovery.MatchGlob(n.FilePath, r.Pattern) {
				return true
			}
		case RuleFunction:
			if n.Name == r.Pattern || n.QualifiedName == r.Pattern || n.ID == r.Pattern {
				return true
			}
		case RuleDecorator:
			for _, d := range n.Decorators {
				if d == r.Pattern || strings.Contains(d, r.Pattern) {
					return true
				}
			}
		}
	}
	return false
}

func matchesAuto(n graph.Node) bool {
	switch n.Language {
	case graph.LanguageGo:
		return goAutoEntryNames.MatchString(n.Name)
	case graph.LanguagePython:
		return n.Name == "__main__"
	default:
		return false
	}
}
