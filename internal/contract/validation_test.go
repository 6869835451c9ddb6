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

package contract

import (
	"testing"

	"github.com/kraklabs/graphmap/pkg/graph"
)

func validNode(id string) graph.Node {
	return graph.Node{
		ID: id, StartLine: 1, EndLine: 10, LinesOfCode: 10,
		Status: graph.StatusLive, Color: graph.ColorGreen,
	}
}

func validGraph() *graph.CodeGraph {
	n := validNode("a.go:Run")
	return &graph.CodeGraph{
		Nodes: []graph.Node{n},
		Edges: []graph.Edge{},
		Clusters: []graph.Cluster{
			{ID: "pkg", NodeIDs: []string{"a.go:Run"}},
		},
		Stats: graph.Stats{
			DeadFunctions:    graph.CountStat{Count: 0},
			UnusedParameters: graph.CountStat{Count: 0},
		},
	}
}

func TestValidateGraph_AcceptsWellFormedGraph(t *testing.T) {
	if r := ValidateGraph(validGraph()); !r.OK {
		t.Fatalf("expected a well-formed graph to validate, got: %s", r.Message)
	}
}

func TestValidateGraph_RejectsDuplicateNodeID(t *testing.T) {
	g := validGraph()
	g.Nodes = append(g.Nodes, validNode("a.go:Run"))
	if r := ValidateGraph(g); r.OK {
		t.Fatal("expected duplicate node id to fail validation")
	}
}

func TestValidateGraph_RejectsDanglingEdgeTarget(t *testing.T) {
	g := validGraph()
	g.Edges = append(g.Edges, graph.Edge{Source: "a.go:Run", Target: "missing.go:Ghost", Kind: graph.EdgeDirect, IsResolved: true})
	if r := ValidateGraph(g); r.OK {
		t.Fatal("expected dangling edge target to fail validation")
	}
}

func TestValidateGraph_AllowsDynamicSentinelTarget(t *testing.T) {
	g := validGraph()
	g.Edges = append(g.Edges, graph.Edge{
		Source: "a.go:Run", Target: graph.DynamicTarget("handler()"),
		Kind: graph.EdgeDynamic, IsResolved: false,
	})
	if r := ValidateGraph(g); !r.OK {
		t.Fatalf("expected dynamic sentinel target to validate, got: %s", r.Message)
	}
}

func TestValidateGraph_RejectsResolvedDynamicSentinel(t *testing.T) {
	g := validGraph()
	g.Edges = append(g.Edges, graph.Edge{
		Source: "a.go:Run", Target: graph.DynamicTarget("handler()"),
		Kind: graph.EdgeDynamic, IsResolved: true,
	})
	if r := ValidateGraph(g); r.OK {
		t.Fatal("expected resolved edge to a dynamic sentinel to fail validation")
	}
}

func TestValidateGraph_RejectsUnresolvedNonDynamicEdge(t *testing.T) {
	g := validGraph()
	n := validNode("b.go:Helper")
	g.Nodes = append(g.Nodes, n)
	g.Clusters[0].NodeIDs = append(g.Clusters[0].NodeIDs, "b.go:Helper")
	g.Edges = append(g.Edges, graph.Edge{Source: "a.go:Run", Target: "b.go:Helper", Kind: graph.EdgeDirect, IsResolved: false})
	if r := ValidateGraph(g); r.OK {
		t.Fatal("expected an unresolved direct edge to fail validation")
	}
}

func TestValidateGraph_RejectsStatusEntryMismatch(t *testing.T) {
	g := validGraph()
	g.Nodes[0].Status = graph.StatusEntry
	g.Nodes[0].IsEntryPoint = false
	if r := ValidateGraph(g); r.OK {
		t.Fatal("expected status=entry without isEntryPoint to fail validation")
	}
}

func TestValidateGraph_RejectsLinesOfCodeMismatch(t *testing.T) {
	g := validGraph()
	g.Nodes[0].LinesOfCode = 999
	if r := ValidateGraph(g); r.OK {
		t.Fatal("expected inconsistent linesOfCode to fail validation")
	}
}

func TestValidateGraph_RejectsNodeOutsideAnyCluster(t *testing.T) {
	g := validGraph()
	g.Clusters[0].NodeIDs = nil
	if r := ValidateGraph(g); r.OK {
		t.Fatal("expected a node with zero cluster memberships to fail validation")
	}
}

func TestValidateGraph_RejectsNodeInMultipleClusters(t *testing.T) {
	g := validGraph()
	g.Clusters = append(g.Clusters, graph.Cluster{ID: "other", NodeIDs: []string{"a.go:Run"}})
	if r := ValidateGraph(g); r.OK {
		t.Fatal("expected a node belonging to two clusters to fail validation")
	}
}

func TestValidateGraph_RejectsStatsMismatch(t *testing.T) {
	g := validGraph()
	g.Stats.DeadFunctions.Count = 3
	if r := ValidateGraph(g); r.OK {
		t.Fatal("expected mismatched deadFunctions.count to fail validation")
	}
}
