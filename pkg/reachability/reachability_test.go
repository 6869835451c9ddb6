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

package reachability

import (
	"testing"

	"github.com/kraklabs/graphmap/pkg/graph"
)

func node(id string) graph.Node {
	return graph.Node{ID: id}
}

func edge(src, dst string) graph.Edge {
	return graph.Edge{Source: src, Target: dst, Kind: graph.EdgeDirect, IsResolved: true}
}

func statusOf(nodes []graph.Node, id string) graph.Status {
	for _, n := range nodes {
		if n.ID == id {
			return n.Status
		}
	}
	return ""
}

// S1: entry chain A->B->C, A is entry.
func TestClassify_EntryChain(t *testing.T) {
	nodes := []graph.Node{node("A"), node("B"), node("C")}
	nodes[0].IsEntryPoint = true
	edges := []graph.Edge{edge("A", "B"), edge("B", "C")}

	Classify(nodes, edges, map[string]bool{"A": true})

	if statusOf(nodes, "A") != graph.StatusEntry {
		t.Errorf("A: expected entry, got %s", statusOf(nodes, "A"))
	}
	if statusOf(nodes, "B") != graph.StatusLive {
		t.Errorf("B: expected live, got %s", statusOf(nodes, "B"))
	}
	if statusOf(nodes, "C") != graph.StatusLive {
		t.Errorf("C: expected live, got %s", statusOf(nodes, "C"))
	}
}

// S2: dead leaf D with no edges.
func TestClassify_DeadLeaf(t *testing.T) {
	nodes := []graph.Node{node("A"), node("D")}
	nodes[0].IsEntryPoint = true

	Classify(nodes, nil, map[string]bool{"A": true})

	if statusOf(nodes, "D") != graph.StatusDead {
		t.Errorf("D: expected dead, got %s", statusOf(nodes, "D"))
	}
}

// S3: mutual recursion with no entry reachability stays dead.
func TestClassify_MutualRecursionNoEntry(t *testing.T) {
	nodes := []graph.Node{node("mutualA"), node("mutualB")}
	edges := []graph.Edge{edge("mutualA", "mutualB"), edge("mutualB", "mutualA")}

	Classify(nodes, edges, map[string]bool{})

	if statusOf(nodes, "mutualA") != graph.StatusDead {
		t.Errorf("mutualA: expected dead, got %s", statusOf(nodes, "mutualA"))
	}
	if statusOf(nodes, "mutualB") != graph.StatusDead {
		t.Errorf("mutualB: expected dead, got %s", statusOf(nodes, "mutualB"))
	}
}

// Law 12: adding a self-edge does not change status.
func TestClassify_SelfEdgeDoesNotPromote(t *testing.T) {
	nodes := []graph.Node{node("A"), node("lonely")}
	nodes[0].IsEntryPoint = true
	edges := []graph.Edge{edge("lonely", "lonely")}

	Classify(nodes, edges, map[string]bool{"A": true})

	if statusOf(nodes, "lonely") != graph.StatusDead {
		t.Errorf("lonely: expected dead despite self-edge, got %s", statusOf(nodes, "lonely"))
	}
}

func TestDeriveColor(t *testing.T) {
	cases := []struct {
		status    graph.Status
		hasUnused bool
		want      graph.Color
	}{
		{graph.StatusEntry, false, graph.ColorBlue},
		{graph.StatusEntry, true, graph.ColorBlue},
		{graph.StatusLive, false, graph.ColorGreen},
		{graph.StatusLive, true, graph.ColorYellow},
		{graph.StatusDead, false, graph.ColorRed},
		{graph.StatusDead, true, graph.ColorOrange},
	}
	for _, c := range cases {
		got := deriveColor(c.status, c.hasUnused)
		if got != c.want {
			t.Errorf("deriveColor(%s, %v) = %s, want %s", c.status, c.hasUnused, got, c.want)
		}
	}
}
