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

// Package reachability implements the ReachabilityEngine: breadth-first
// propagation of liveness from an entry-point id set over the
// outgoing-edge adjacency induced by a graph's edges.
package reachability

import (
	"sort"

	"github.com/kraklabs/graphmap/pkg/graph"
)

// Classify runs BFS from entryIDs over nodes/edges and assigns each node's
// Status and Color in place. It returns the visited set: every entry id
// plus every edge target reached from one, dynamic sentinels included.
//
// The only promotion signal is entry-set BFS: a node with incoming edges
// but no path from any entry stays dead, even inside a mutually recursive
// cluster. This is the invariant the rest of the engine depends on, so it
// is never weakened by an "incoming edge implies live" shortcut.
func Classify(nodes []graph.Node, edges []graph.Edge, entryIDs map[string]bool) map[string]bool {
	adjacency := buildAdjacency(edges)

	visited := make(map[string]bool, len(entryIDs))
	queue := make([]string, 0, len(entryIDs))
	for id := range entryIDs {
		if !visited[id] {
			visited[id] = true
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		targets := adjacency[current]
		for _, t := range targets {
			if visited[t] {
				continue
			}
			visited[t] = true
			queue = append(queue, t)
		}
	}

	for i := range nodes {
		n := &nodes[i]
		switch {
		case n.IsEntryPoint:
			n.Status = graph.StatusEntry
		case visited[n.ID]:
			n.Status = graph.StatusLive
		default:
			n.Status = graph.StatusDead
		}
		n.Color = deriveColor(n.Status, len(n.UnusedParameters) > 0)
	}

	return visited
}

// deriveColor is the pure §4.4/§4.5 lookup table from (status, hasUnused)
// to display color.
func deriveColor(status graph.Status, hasUnused bool) graph.Color {
	switch status {
	case graph.StatusEntry:
		return graph.ColorBlue
	case graph.StatusLive:
		if hasUnused {
			return graph.ColorYellow
		}
		return graph.ColorGreen
	default: // dead
		if hasUnused {
			return graph.ColorOrange
		}
		return graph.ColorRed
	}
}

// buildAdjacency groups edges by source, in emitted order, so BFS visits
// outgoing edges deterministically for a fixed input edge order. Edges
// whose target is a dynamic sentinel are included (a sentinel reached by
// BFS is added to the visited set, but it has no outgoing edges, so it is
// inert for traversal).
func buildAdjacency(edges []graph.Edge) map[string][]string {
	adjacency := make(map[string][]string)
	for _, e := range edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
	}
	return adjacency
}
