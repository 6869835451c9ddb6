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
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/extract"
	"github.com/kraklabs/graphmap/pkg/graph"
)

func writeGoFile(t *testing.T, name, content string) (string, []extract.FileEntity) {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return root, []extract.FileEntity{{Path: name, Language: graph.LanguageGo}}
}

func findGoNode(nodes []graph.Node, id string) (graph.Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return graph.Node{}, false
}

func hasGoEdge(edges []graph.Edge, source, target string, kind graph.EdgeKind) bool {
	for _, e := range edges {
		if e.Source == source && e.Target == target && e.Kind == kind {
			return true
		}
	}
	return false
}

func TestFallback_DirectCallSameFile(t *testing.T) {
	root, files := writeGoFile(t, "main.go", `package main

func Helper() int {
	return 1
}

func Run() int {
	return Helper()
}
`)
	result, err := Fallback(extract.Config{ProjectRoot: root}, files, nil)
	if err != nil {
		t.Fatalf("Fallback: %v", err)
	}

	helperID := "main.go:Helper"
	runID := "main.go:Run"
	if n, ok := findGoNode(result.Nodes, helperID); !ok || n.Visibility != graph.VisibilityExported {
		t.Fatalf("expected exported Helper node, got %+v (found=%v)", n, ok)
	}
	if !hasGoEdge(result.Edges, runID, helperID, graph.EdgeDirect) {
		t.Errorf("expected direct edge Run->Helper, got %+v", result.Edges)
	}
}

// S3-equivalent: self-recursion must produce a resolved self-edge, not be
// silently dropped (spec.md §8 invariant 3).
func TestFallback_SelfRecursionEdge(t *testing.T) {
	root, files := writeGoFile(t, "rec.go", `package main

func countdown(n int) int {
	if n <= 0 {
		return 0
	}
	return countdown(n - 1)
}
`)
	result, err := Fallback(extract.Config{ProjectRoot: root}, files, nil)
	if err != nil {
		t.Fatalf("Fallback: %v", err)
	}

	id := "rec.go:countdown"
	if !hasGoEdge(result.Edges, id, id, graph.EdgeDirect) {
		t.Errorf("expected a resolved self-edge for recursive call, got %+v", result.Edges)
	}
}

func TestFallback_MethodReceiverQualifiedName(t *testing.T) {
	root, files := writeGoFile(t, "svc.go", `package main

type Server struct{}

func (s *Server) Handle() int {
	return 1
}
`)
	result, err := Fallback(extract.Config{ProjectRoot: root}, files, nil)
	if err != nil {
		t.Fatalf("Fallback: %v", err)
	}

	id := "svc.go:Server.Handle"
	n, ok := findGoNode(result.Nodes, id)
	if !ok {
		t.Fatalf("expected method node %s, nodes: %+v", id, result.Nodes)
	}
	if n.Kind != graph.KindMethod || n.Name != "Handle" {
		t.Errorf("expected kind=method name=Handle, got %+v", n)
	}
}

func TestFallback_UnusedParameter(t *testing.T) {
	root, files := writeGoFile(t, "fmt.go", `package main

func formatOutput(data string, _options string, unusedParam int) string {
	return data
}
`)
	result, err := Fallback(extract.Config{ProjectRoot: root}, files, nil)
	if err != nil {
		t.Fatalf("Fallback: %v", err)
	}

	n, ok := findGoNode(result.Nodes, "fmt.go:formatOutput")
	if !ok {
		t.Fatalf("expected formatOutput node, nodes: %+v", result.Nodes)
	}
	if len(n.UnusedParameters) != 1 || n.UnusedParameters[0] != "unusedParam" {
		t.Errorf("expected unusedParameters=[unusedParam], got %v", n.UnusedParameters)
	}
}

func TestFallback_CrossFileCallUnresolved(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.go"), []byte(`package main

func A() int {
	return B()
}
`), 0o644); err != nil {
		t.Fatalf("write a.go: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "b.go"), []byte(`package main

func B() int {
	return 2
}
`), 0o644); err != nil {
		t.Fatalf("write b.go: %v", err)
	}

	files := []extract.FileEntity{
		{Path: "a.go", Language: graph.LanguageGo},
		{Path: "b.go", Language: graph.LanguageGo},
	}
	sink := diagnostics.New(nil)
	result, err := Fallback(extract.Config{ProjectRoot: root}, files, sink)
	if err != nil {
		t.Fatalf("Fallback: %v", err)
	}

	// The tree-sitter-only fallback resolves calls by simple name within
	// the same file only; a cross-file call is silently dropped rather
	// than fabricated as an edge (no type information to confirm it).
	if hasGoEdge(result.Edges, "a.go:A", "b.go:B", graph.EdgeDirect) {
		t.Errorf("fallback should not resolve cross-file calls, got %+v", result.Edges)
	}
}
