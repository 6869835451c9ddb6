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

package stats

import (
	"testing"

	"github.com/kraklabs/graphmap/pkg/graph"
)

func TestBuild_DeadAndUnusedPercentages(t *testing.T) {
	nodes := []graph.Node{
		{ID: "a:1", Status: graph.StatusLive, LinesOfCode: 5},
		{ID: "a:2", Status: graph.StatusDead, LinesOfCode: 3},
		{ID: "a:3", Status: graph.StatusDead, UnusedParameters: []string{"x"}, LinesOfCode: 20},
		{ID: "a:4", Status: graph.StatusEntry, LinesOfCode: 1},
	}

	s := Build(nodes, []string{"a:4"})

	if s.DeadFunctions.Count != 2 {
		t.Errorf("expected 2 dead, got %d", s.DeadFunctions.Count)
	}
	if s.DeadFunctions.Percentage != 50 {
		t.Errorf("expected 50%%, got %v", s.DeadFunctions.Percentage)
	}
	if s.UnusedParameters.Count != 1 {
		t.Errorf("expected 1 unused, got %d", s.UnusedParameters.Count)
	}
	if s.EntryPoints.Count != 1 || s.EntryPoints.IDs[0] != "a:4" {
		t.Errorf("unexpected entry points: %+v", s.EntryPoints)
	}
	if len(s.LargestFunctions) != 4 || s.LargestFunctions[0].ID != "a:3" {
		t.Errorf("unexpected largest-functions ordering: %+v", s.LargestFunctions)
	}
}

func TestPercentage_ZeroTotal(t *testing.T) {
	if got := percentage(0, 0); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}
