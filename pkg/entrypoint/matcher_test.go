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

package entrypoint

import (
	"testing"

	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/graph"
)

func TestMatch_GoAutoDetectsMainAndTestFuncs(t *testing.T) {
	nodes := []graph.Node{
		{ID: "main.go:main", Name: "main", Language: graph.LanguageGo},
		{ID: "x_test.go:TestFoo", Name: "TestFoo", Language: graph.LanguageGo},
		{ID: "svc.go:helper", Name: "helper", Language: graph.LanguageGo},
	}
	entrySet, order := Match(nodes, nil, nil)

	if !entrySet["main.go:main"] || !entrySet["x_test.go:TestFoo"] {
		t.Errorf("expected main and TestFoo auto-detected as entries, got %v", entrySet)
	}
	if entrySet["svc.go:helper"] {
		t.Errorf("did not expect helper to be auto-detected as entry")
	}
	if len(order) != 2 {
		t.Errorf("expected 2 entries in insertion order, got %v", order)
	}
}

func TestMatch_PythonMainGuardAutoDetected(t *testing.T) {
	nodes := []graph.Node{
		{ID: "cli.py:__main__", Name: "__main__", Language: graph.LanguagePython},
	}
	entrySet, _ := Match(nodes, nil, nil)
	if !entrySet["cli.py:__main__"] {
		t.Errorf("expected __main__ node auto-detected as entry")
	}
}

func TestMatch_ConfiguredFunctionRule(t *testing.T) {
	nodes := []graph.Node{
		{ID: "svc.ts:handleRequest", Name: "handleRequest", QualifiedName: "handleRequest", Language: graph.LanguageTypeScript},
	}
	rules := []Rule{{Tag: RuleFunction, Pattern: "handleRequest"}}
	entrySet, _ := Match(nodes, rules, nil)
	if !entrySet["svc.ts:handleRequest"] {
		t.Errorf("expected configured function rule to mark handleRequest as entry")
	}
}

func TestMatch_ConfiguredFileRuleRequiresExportedVisibility(t *testing.T) {
	exported := graph.Node{ID: "api.ts:Handler", FilePath: "api.ts", Visibility: graph.VisibilityExported, Language: graph.LanguageTypeScript}
	private := graph.Node{ID: "api.ts:helper", FilePath: "api.ts", Visibility: graph.VisibilityPrivate, Language: graph.LanguageTypeScript}
	rules := []Rule{{Tag: RuleFile, Pattern: "api.ts"}}

	entrySet, _ := Match([]graph.Node{exported, private}, rules, nil)
	if !entrySet["api.ts:Handler"] {
		t.Errorf("expected exported node matched by file rule to be an entry")
	}
	if entrySet["api.ts:helper"] {
		t.Errorf("did not expect private node to match file rule despite same path")
	}
}

func TestMatch_ConfiguredDecoratorRule(t *testing.T) {
	nodes := []graph.Node{
		{ID: "app.py:handler", Decorators: []string{"@app.route('/x')"}, Language: graph.LanguagePython},
	}
	rules := []Rule{{Tag: RuleDecorator, Pattern: "@app.route"}}
	entrySet, _ := Match(nodes, rules, nil)
	if !entrySet["app.py:handler"] {
		t.Errorf("expected decorator-matched handler to be an entry")
	}
}

func TestMatch_MalformedGlobRuleSkippedWithDiagnostic(t *testing.T) {
	nodes := []graph.Node{
		{ID: "api.ts:Handler", FilePath: "api.ts", Visibility: graph.VisibilityExported, Language: graph.LanguageTypeScript},
	}
	rules := []Rule{{Tag: RuleFile, Pattern: "[unterminated"}}
	sink := diagnostics.New(nil)

	entrySet, _ := Match(nodes, rules, sink)
	if entrySet["api.ts:Handler"] {
		t.Errorf("malformed glob rule should not match anything")
	}
	if len(sink.Entries()) != 1 || sink.Entries()[0].Kind != "MatcherGlobInvalid" {
		t.Errorf("expected one MatcherGlobInvalid diagnostic, got %+v", sink.Entries())
	}
}
