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

	"github.com/kraklabs/graphmap/pkg/graph"
)

func writeTypedModule(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/svc\n\ngo 1.21\n"), 0o644); err != nil {
		t.Fatalf("write go.mod: %v", err)
	}
	var rel []string
	for name, content := range files {
		full := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		rel = append(rel, name)
	}
	return root, rel
}

// S5: interface fan-out. run(svc Service) calling svc.Process() fans out
// to every in-project concrete implementer's Process method.
func TestAnalyzeTyped_InterfaceFanOut(t *testing.T) {
	root, rel := writeTypedModule(t, map[string]string{
		"svc.go": `package svc

type Service interface {
	Process() int
}

type ServiceA struct{}

func (a *ServiceA) Process() int { return 1 }

type ServiceB struct{}

func (b *ServiceB) Process() int { return 2 }

func run(svc Service) int {
	return svc.Process()
}
`,
	})

	result, err := AnalyzeTyped(root, rel, nil)
	if err != nil {
		t.Fatalf("AnalyzeTyped: %v", err)
	}

	runID := "svc.go:run"
	aID := "svc.go:ServiceA.Process"
	bID := "svc.go:ServiceB.Process"

	if !hasGoEdge(result.Edges, runID, aID, graph.EdgeInterface) {
		t.Errorf("expected interface edge run->ServiceA.Process, got %+v", result.Edges)
	}
	if !hasGoEdge(result.Edges, runID, bID, graph.EdgeInterface) {
		t.Errorf("expected interface edge run->ServiceB.Process, got %+v", result.Edges)
	}
	for _, e := range result.Edges {
		if e.Source == runID && e.Kind == graph.EdgeInterface && !e.IsResolved {
			t.Errorf("interface fan-out edges must be resolved, got %+v", e)
		}
	}
}

// Constructor fan-out: NewServer returning *Server adds provided edges to
// every method on Server.
func TestAnalyzeTyped_ConstructorFanOut(t *testing.T) {
	root, rel := writeTypedModule(t, map[string]string{
		"server.go": `package svc

type Server struct{}

func (s *Server) Handle() int { return 1 }
func (s *Server) Close() int  { return 0 }

func NewServer() *Server {
	return &Server{}
}
`,
	})

	result, err := AnalyzeTyped(root, rel, nil)
	if err != nil {
		t.Fatalf("AnalyzeTyped: %v", err)
	}

	ctorID := "server.go:NewServer"
	if !hasGoEdge(result.Edges, ctorID, "server.go:Server.Handle", graph.EdgeProvided) {
		t.Errorf("expected provided edge NewServer->Server.Handle, got %+v", result.Edges)
	}
	if !hasGoEdge(result.Edges, ctorID, "server.go:Server.Close", graph.EdgeProvided) {
		t.Errorf("expected provided edge NewServer->Server.Close, got %+v", result.Edges)
	}
}

// Var-init synthetic node: a package-level var referencing in-project
// functions (DI provider pattern) gets a synthesized entry node with
// varinit edges, without fabricating a direct-call edge.
func TestAnalyzeTyped_VarInitSynthesizesEntryNode(t *testing.T) {
	root, rel := writeTypedModule(t, map[string]string{
		"wire.go": `package svc

func NewHandler() int { return 1 }

var providers = []func() int{
	NewHandler,
}
`,
	})

	result, err := AnalyzeTyped(root, rel, nil)
	if err != nil {
		t.Fatalf("AnalyzeTyped: %v", err)
	}

	entryID := "wire.go:__var_init__"
	var entryNode graph.Node
	found := false
	for _, n := range result.Nodes {
		if n.ID == entryID {
			entryNode = n
			found = true
		}
	}
	if !found {
		t.Fatalf("expected synthetic var-init node %s, nodes: %+v", entryID, result.Nodes)
	}
	if !entryNode.IsEntryPoint || entryNode.Status != graph.StatusEntry || entryNode.Color != graph.ColorBlue {
		t.Errorf("expected var-init node entry/blue, got %+v", entryNode)
	}
	if !hasGoEdge(result.Edges, entryID, "wire.go:NewHandler", graph.EdgeVarinit) {
		t.Errorf("expected varinit edge to NewHandler, got %+v", result.Edges)
	}
}

func TestAnalyzeTyped_FuncrefEdgeForMethodValue(t *testing.T) {
	root, rel := writeTypedModule(t, map[string]string{
		"ref.go": `package svc

type Worker struct{}

func (w *Worker) Do() int { return 1 }

func register(fn func() int) int {
	return fn()
}

func setup(w *Worker) int {
	return register(w.Do)
}
`,
	})

	result, err := AnalyzeTyped(root, rel, nil)
	if err != nil {
		t.Fatalf("AnalyzeTyped: %v", err)
	}

	if !hasGoEdge(result.Edges, "ref.go:setup", "ref.go:Worker.Do", graph.EdgeFuncref) {
		t.Errorf("expected funcref edge setup->Worker.Do for method value, got %+v", result.Edges)
	}
}
