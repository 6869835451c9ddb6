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
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/graphmap/pkg/extract"
	"github.com/kraklabs/graphmap/pkg/graph"
)

func writeTSFiles(t *testing.T, files map[string]string) (string, []extract.FileEntity) {
	t.Helper()
	root := t.TempDir()
	var entities []extract.FileEntity
	for rel, content := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
		entities = append(entities, extract.FileEntity{Path: rel, Language: graph.LanguageTypeScript})
	}
	return root, entities
}

func findNode(nodes []graph.Node, id string) (graph.Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return graph.Node{}, false
}

func hasEdge(edges []graph.Edge, source, target string, kind graph.EdgeKind) bool {
	for _, e := range edges {
		if e.Source == source && e.Target == target && e.Kind == kind {
			return true
		}
	}
	return false
}

func TestAnalyze_DirectCallAndExportedVisibility(t *testing.T) {
	root, files := writeTSFiles(t, map[string]string{
		"a.ts": `
export function helper() {
  return 1;
}

export function run() {
  return helper();
}
`,
	})

	var e Extractor
	result, err := e.Analyze(extract.Config{ProjectRoot: root}, files, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	helperID := "a.ts:helper"
	runID := "a.ts:run"
	if n, ok := findNode(result.Nodes, helperID); !ok || n.Visibility != graph.VisibilityExported {
		t.Fatalf("expected exported helper node, got %+v (found=%v)", n, ok)
	}
	if !hasEdge(result.Edges, runID, helperID, graph.EdgeDirect) {
		t.Errorf("expected direct edge run->helper, got %+v", result.Edges)
	}
}

func TestAnalyze_ClassMethodAndConstructor(t *testing.T) {
	root, files := writeTSFiles(t, map[string]string{
		"svc.ts": `
export class Service {
  constructor() {}

  process() {
    return 1;
  }

  run() {
    return this.process();
  }
}

export function build() {
  const s = new Service();
  return s.process();
}
`,
	})

	var e Extractor
	result, err := e.Analyze(extract.Config{ProjectRoot: root}, files, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	ctorID := "svc.ts:Service.constructor"
	processID := "svc.ts:Service.process"
	runID := "svc.ts:Service.run"
	buildID := "svc.ts:build"

	if _, ok := findNode(result.Nodes, ctorID); !ok {
		t.Fatalf("expected constructor node %s, nodes: %+v", ctorID, result.Nodes)
	}
	if !hasEdge(result.Edges, runID, processID, graph.EdgeMethod) {
		t.Errorf("expected method edge run->process via this., got %+v", result.Edges)
	}
	if !hasEdge(result.Edges, buildID, ctorID, graph.EdgeConstructor) {
		t.Errorf("expected constructor edge build->Service.constructor, got %+v", result.Edges)
	}
	if !hasEdge(result.Edges, buildID, processID, graph.EdgeMethod) {
		t.Errorf("expected method edge build->process via local class var, got %+v", result.Edges)
	}
}

// S6: re-export chain. Module a declares validate; module reexport
// re-exports it; module c imports from reexport and calls validate. The
// edge must target a.ts:validate, not reexport.ts:validate.
func TestAnalyze_ReexportChain(t *testing.T) {
	root, files := writeTSFiles(t, map[string]string{
		"a.ts": `
export function validate() {
  return true;
}
`,
		"reexport.ts": `
export { validate } from './a';
`,
		"c.ts": `
import { validate } from './reexport';

export function run() {
  return validate();
}
`,
	})

	var e Extractor
	result, err := e.Analyze(extract.Config{ProjectRoot: root}, files, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	runID := "c.ts:run"
	validateID := "a.ts:validate"
	for _, edge := range result.Edges {
		if edge.Source == runID {
			if edge.Target != validateID {
				t.Fatalf("expected re-export chain to resolve to %s, got %s", validateID, edge.Target)
			}
			if !edge.IsResolved {
				t.Errorf("expected resolved edge, got unresolved")
			}
			return
		}
	}
	t.Fatalf("no edge found from %s, edges: %+v", runID, result.Edges)
}

func TestAnalyze_DecoratorRecorded(t *testing.T) {
	root, files := writeTSFiles(t, map[string]string{
		"controller.ts": `
@Controller('/users')
export class UsersController {
  @Get('/')
  list() {
    return [];
  }
}
`,
	})

	var e Extractor
	result, err := e.Analyze(extract.Config{ProjectRoot: root}, files, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	n, ok := findNode(result.Nodes, "controller.ts:UsersController.list")
	if !ok {
		t.Fatalf("expected list method node, nodes: %+v", result.Nodes)
	}
	if len(n.Decorators) != 1 || n.Decorators[0] != "Get" {
		t.Errorf("expected decorators [Get], got %v", n.Decorators)
	}
}

func TestAnalyze_CallbackEdge(t *testing.T) {
	root, files := writeTSFiles(t, map[string]string{
		"list.ts": `
function double(x: number) {
  return x * 2;
}

export function run(nums: number[]) {
  return nums.map(double);
}
`,
	})

	var e Extractor
	result, err := e.Analyze(extract.Config{ProjectRoot: root}, files, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if !hasEdge(result.Edges, "list.ts:run", "list.ts:double", graph.EdgeCallback) {
		t.Errorf("expected callback edge run->double, got %+v", result.Edges)
	}
}

func TestAnalyze_DynamicCallUnresolved(t *testing.T) {
	root, files := writeTSFiles(t, map[string]string{
		"dyn.ts": `
export function run(handlers: Record<string, Function>, key: string) {
  return handlers[key]();
}
`,
	})

	var e Extractor
	result, err := e.Analyze(extract.Config{ProjectRoot: root}, files, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	found := false
	for _, edge := range result.Edges {
		if edge.Source == "dyn.ts:run" {
			found = true
			if edge.IsResolved {
				t.Errorf("expected unresolved dynamic edge, got resolved: %+v", edge)
			}
			if edge.Kind != graph.EdgeDynamic {
				t.Errorf("expected dynamic kind, got %s", edge.Kind)
			}
		}
	}
	if !found {
		t.Fatalf("expected a dynamic edge from run, edges: %+v", result.Edges)
	}
}

// S4-equivalent: destructured parameter, one binding unused.
func TestAnalyze_UnusedDestructuredParameter(t *testing.T) {
	root, files := writeTSFiles(t, map[string]string{
		"fmt.ts": `
export function formatOutput(data: string, { options, unusedParam }: any) {
  return data + options;
}
`,
	})

	var e Extractor
	result, err := e.Analyze(extract.Config{ProjectRoot: root}, files, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	n, ok := findNode(result.Nodes, "fmt.ts:formatOutput")
	if !ok {
		t.Fatalf("expected formatOutput node, nodes: %+v", result.Nodes)
	}
	if len(n.UnusedParameters) != 1 || n.UnusedParameters[0] != "unusedParam" {
		t.Errorf("expected unusedParameters=[unusedParam], got %v", n.UnusedParameters)
	}
}
