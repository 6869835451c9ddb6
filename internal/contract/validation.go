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
	"fmt"
	"strings"

	"github.com/kraklabs/graphmap/pkg/graph"
)

// ValidationResult is the outcome of one invariant check.
type ValidationResult struct {
	OK      bool
	Message string
}

// ValidateGraph re-asserts the §3 invariants against a fully assembled
// CodeGraph. It is the assembler's last-line defense: any failure maps to
// a fatal InvariantViolated error (an internal bug, never a user mistake).
func ValidateGraph(g *graph.CodeGraph) *ValidationResult {
	if r := validateIDUniqueness(g.Nodes); !r.OK {
		return r
	}
	if r := validateEdgeClosure(g.Nodes, g.Edges); !r.OK {
		return r
	}
	if r := validateStatusColorConsistency(g.Nodes); !r.OK {
		return r
	}
	if r := validateClusterCoverage(g.Nodes, g.Clusters); !r.OK {
		return r
	}
	if r := validateStats(g); !r.OK {
		return r
	}
	return &ValidationResult{OK: true}
}

func validateIDUniqueness(nodes []graph.Node) *ValidationResult {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			return &ValidationResult{Message: fmt.Sprintf("duplicate node id: %s", n.ID)}
		}
		seen[n.ID] = true
	}
	return &ValidationResult{OK: true}
}

func validateEdgeClosure(nodes []graph.Node, edges []graph.Edge) *ValidationResult {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	for _, e := range edges {
		if !ids[e.Source] {
			return &ValidationResult{Message: fmt.Sprintf("edge source %q is not a known node id", e.Source)}
		}
		isDynamicTarget := strings.HasPrefix(e.Target, graph.DynamicTargetPrefix)
		if !ids[e.Target] && !isDynamicTarget {
			return &ValidationResult{Message: fmt.Sprintf("edge target %q is neither a known node id nor a dynamic sentinel", e.Target)}
		}
		if isDynamicTarget && e.IsResolved {
			return &ValidationResult{Message: fmt.Sprintf("edge to dynamic sentinel %q must have isResolved=false", e.Target)}
		}
		if e.Kind == graph.EdgeDynamic && e.IsResolved {
			return &ValidationResult{Message: "edge kind=dynamic must have isResolved=false"}
		}
		if e.Kind != graph.EdgeDynamic && !e.IsResolved {
			return &ValidationResult{Message: fmt.Sprintf("edge kind=%s must have isResolved=true", e.Kind)}
		}
	}
	return &ValidationResult{OK: true}
}

func validateStatusColorConsistency(nodes []graph.Node) *ValidationResult {
	for _, n := range nodes {
		if (n.Status == graph.StatusEntry) != n.IsEntryPoint {
			return &ValidationResult{Message: fmt.Sprintf("node %q: status=entry must iff isEntryPoint", n.ID)}
		}
		if n.LinesOfCode != n.EndLine-n.StartLine+1 {
			return &ValidationResult{Message: fmt.Sprintf("node %q: linesOfCode inconsistent with start/end line", n.ID)}
		}
		hasUnused := len(n.UnusedParameters) > 0
		want := graph.ColorRed
		switch {
		case n.Status == graph.StatusEntry:
			want = graph.ColorBlue
		case n.Status == graph.StatusLive && hasUnused:
			want = graph.ColorYellow
		case n.Status == graph.StatusLive:
			want = graph.ColorGreen
		case hasUnused:
			want = graph.ColorOrange
		}
		if n.Color != want {
			return &ValidationResult{Message: fmt.Sprintf("node %q: color=%s inconsistent with status=%s", n.ID, n.Color, n.Status)}
		}
	}
	return &ValidationResult{OK: true}
}

func validateClusterCoverage(nodes []graph.Node, clusters []graph.Cluster) *ValidationResult {
	count := make(map[string]int, len(nodes))
	for _, c := range clusters {
		for _, id := range c.NodeIDs {
			count[id]++
		}
	}
	for _, n := range nodes {
		if count[n.ID] != 1 {
			return &ValidationResult{Message: fmt.Sprintf("node %q belongs to %d clusters, want exactly 1", n.ID, count[n.ID])}
		}
	}
	return &ValidationResult{OK: true}
}

func validateStats(g *graph.CodeGraph) *ValidationResult {
	deadCount := 0
	unusedCount := 0
	for _, n := range g.Nodes {
		if n.Status == graph.StatusDead {
			deadCount++
		}
		if len(n.UnusedParameters) > 0 {
			unusedCount++
		}
	}
	if g.Stats.DeadFunctions.Count != deadCount {
		return &ValidationResult{Message: fmt.Sprintf("stats.deadFunctions.count=%d, computed=%d", g.Stats.DeadFunctions.Count, deadCount)}
	}
	if g.Stats.UnusedParameters.Count != unusedCount {
		return &ValidationResult{Message: fmt.Sprintf("stats.unusedParameters.count=%d, computed=%d", g.Stats.UnusedParameters.Count, unusedCount)}
	}
	return &ValidationResult{OK: true}
}
