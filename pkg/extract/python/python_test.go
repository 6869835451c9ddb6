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
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/graphmap/pkg/graph"
)

func writePyFile(t *testing.T, name, content string) (string, string) {
	t.Helper()
	root := t.TempDir()
	full := filepath.Join(root, name)
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return root, name
}

func findPyNode(nodes []graph.Node, id string) (graph.Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return graph.Node{}, false
}

func hasPyEdge(edges []graph.Edge, source, target string, kind graph.EdgeKind) bool {
	for _, e := range edges {
		if e.Source == source && e.Target == target && e.Kind == kind {
			return true
		}
	}
	return false
}

func TestAnalyzeProject_DirectCall(t *testing.T) {
	root, rel := writePyFile(t, "mod.py", `
def helper():
    return 1


def run():
    return helper()
`)
	result, err := AnalyzeProject(root, []string{rel}, nil)
	if err != nil {
		t.Fatalf("AnalyzeProject: %v", err)
	}

	helperID := "mod.py:helper"
	runID := "mod.py:run"
	if _, ok := findPyNode(result.Nodes, helperID); !ok {
		t.Fatalf("expected node %s, got %+v", helperID, result.Nodes)
	}
	if !hasPyEdge(result.Edges, runID, helperID, graph.EdgeDirect) {
		t.Errorf("expected direct edge run->helper, got %+v", result.Edges)
	}
}

func TestAnalyzeProject_ConstructorAndSelfMethod(t *testing.T) {
	root, rel := writePyFile(t, "svc.py", `
class Service:
    def __init__(self):
        pass

    def process(self):
        return 1

    def run(self):
        return self.process()


def build():
    s = Service()
    return s.process()
`)
	result, err := AnalyzeProject(root, []string{rel}, nil)
	if err != nil {
		t.Fatalf("AnalyzeProject: %v", err)
	}

	ctorID := "svc.py:Service.__init__"
	processID := "svc.py:Service.process"
	runID := "svc.py:Service.run"
	buildID := "svc.py:build"

	if !hasPyEdge(result.Edges, runID, processID, graph.EdgeMethod) {
		t.Errorf("expected self. method edge run->process, got %+v", result.Edges)
	}
	if !hasPyEdge(result.Edges, buildID, ctorID, graph.EdgeConstructor) {
		t.Errorf("expected constructor edge build->Service.__init__, got %+v", result.Edges)
	}
	if !hasPyEdge(result.Edges, buildID, processID, graph.EdgeMethod) {
		t.Errorf("expected method edge build->process via local var, got %+v", result.Edges)
	}

	if n, ok := findPyNode(result.Nodes, ctorID); !ok {
		t.Fatalf("expected __init__ node, nodes %+v", result.Nodes)
	} else if len(n.Parameters) != 0 {
		t.Errorf("expected self receiver dropped, got parameters %+v", n.Parameters)
	}
}

func TestAnalyzeProject_MainGuardEntry(t *testing.T) {
	root, rel := writePyFile(t, "cli.py", `
def process(data):
    return data


if __name__ == "__main__":
    process(1)
`)
	result, err := AnalyzeProject(root, []string{rel}, nil)
	if err != nil {
		t.Fatalf("AnalyzeProject: %v", err)
	}

	entryID := "cli.py:__var_init__"
	processID := "cli.py:process"

	entryNode, ok := findPyNode(result.Nodes, entryID)
	if !ok {
		t.Fatalf("expected synthetic __var_init__ entry node, nodes %+v", result.Nodes)
	}
	if !entryNode.IsEntryPoint || entryNode.Status != graph.StatusEntry {
		t.Errorf("expected entry node to be entry-tagged, got %+v", entryNode)
	}
	if !hasPyEdge(result.Edges, entryID, processID, graph.EdgeVarinit) {
		t.Errorf("expected varinit edge from synthetic entry to process, got %+v", result.Edges)
	}

	// process is called only from the __main__ block, so it demotes to
	// module visibility.
	if n, ok := findPyNode(result.Nodes, processID); !ok || n.Visibility != graph.VisibilityModule {
		t.Errorf("expected process visibility=module after demotion, got %+v", n)
	}
}

func TestAnalyzeProject_UnusedParameter(t *testing.T) {
	root, rel := writePyFile(t, "fmt.py", `
def format_output(data, _options, unused_param):
    return data
`)
	result, err := AnalyzeProject(root, []string{rel}, nil)
	if err != nil {
		t.Fatalf("AnalyzeProject: %v", err)
	}

	n, ok := findPyNode(result.Nodes, "fmt.py:format_output")
	if !ok {
		t.Fatalf("expected format_output node, nodes %+v", result.Nodes)
	}
	if len(n.UnusedParameters) != 1 || n.UnusedParameters[0] != "unused_param" {
		t.Errorf("expected unusedParameters=[unused_param], got %v", n.UnusedParameters)
	}
}

func TestAnalyzeProject_PrivateVisibility(t *testing.T) {
	root, rel := writePyFile(t, "priv.py", `
def _internal():
    return 1


def public_fn():
    return _internal()
`)
	result, err := AnalyzeProject(root, []string{rel}, nil)
	if err != nil {
		t.Fatalf("AnalyzeProject: %v", err)
	}

	if n, ok := findPyNode(result.Nodes, "priv.py:_internal"); !ok || n.Visibility != graph.VisibilityPrivate {
		t.Errorf("expected _internal visibility=private, got %+v", n)
	}
	if n, ok := findPyNode(result.Nodes, "priv.py:public_fn"); !ok || n.Visibility != graph.VisibilityExported {
		t.Errorf("expected public_fn visibility=exported, got %+v", n)
	}
}

func TestAnalyzeProject_UnresolvedDynamicCall(t *testing.T) {
	root, rel := writePyFile(t, "dyn.py", `
def run(handler):
    return handler()
`)
	result, err := AnalyzeProject(root, []string{rel}, nil)
	if err != nil {
		t.Fatalf("AnalyzeProject: %v", err)
	}

	runID := "dyn.py:run"
	found := false
	for _, e := range result.Edges {
		if e.Source == runID {
			found = true
			if e.IsResolved || e.Kind != graph.EdgeDynamic {
				t.Errorf("expected unresolved dynamic edge, got %+v", e)
			}
		}
	}
	if !found {
		t.Fatalf("expected a dynamic edge from run, edges %+v", result.Edges)
	}
}
