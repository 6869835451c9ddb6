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

// Package stats implements StatsAggregator: dead-function and
// unused-parameter counts/percentages/histograms, the entry-point list,
// and the top-10-largest-functions table.
package stats

import (
	"math"
	"sort"

	"github.com/kraklabs/graphmap/pkg/graph"
)

// Build computes the §4.7 stats block over the final, classified node set.
// entryIDsInsertionOrder preserves the entry-point matcher's insertion
// order for stats.entryPoints.ids, per the spec's "order = insertion" rule.
func Build(nodes []graph.Node, entryIDsInsertionOrder []string) graph.Stats {
	total := len(nodes)

	dead := graph.CountStat{ByPackage: graph.Histogram{}}
	unused := graph.CountStat{ByPackage: graph.Histogram{}}

	for _, n := range nodes {
		if n.Status == graph.StatusDead {
			dead.Count++
			dead.ByPackage[n.PackageOrModule]++
		}
		if len(n.UnusedParameters) > 0 {
			unused.Count++
			unused.ByPackage[n.PackageOrModule]++
		}
	}
	dead.Percentage = percentage(dead.Count, total)
	unused.Percentage = percentage(unused.Count, total)

	return graph.Stats{
		DeadFunctions:    dead,
		UnusedParameters: unused,
		EntryPoints:      graph.EntryPointStat{Count: len(entryIDsInsertionOrder), IDs: entryIDsInsertionOrder},
		LargestFunctions: largest(nodes, 10),
	}
}

// percentage implements round(count * 10000 / total) / 100, with 0 when
// total == 0, matching the spec's two-decimal rounding rule exactly.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)*10000/float64(total)) / 100
}

// largest returns the top-n nodes by linesOfCode, ties broken by id ascending.
func largest(nodes []graph.Node, n int) []graph.LargestFunction {
	sorted := make([]graph.Node, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].LinesOfCode != sorted[j].LinesOfCode {
			return sorted[i].LinesOfCode > sorted[j].LinesOfCode
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]graph.LargestFunction, len(sorted))
	for i, node := range sorted {
		out[i] = graph.LargestFunction{ID: node.ID, LinesOfCode: node.LinesOfCode}
	}
	return out
}
