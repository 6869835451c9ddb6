// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"testing"

	"github.com/kraklabs/graphmap/pkg/graph"
)

// Fixture accumulates nodes and edges for a single test case.
type Fixture struct {
	t     *testing.T
	Nodes []graph.Node
	Edges []graph.Edge
}

// NewFixture returns an empty fixture.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	return &Fixture{t: t}
}

// AddNode appends a node with sensible defaults (language go, kind
// function, status dead, color red) and returns its id for wiring edges.
//
// Example:
//
//	f := testing.NewFixture(t)
//	a := f.AddNode("a.go:A", "A", "a.go", 1, 5)
//	b := f.AddNode("a.go:B", "B", "a.go", 7, 9)
//	f.AddEdge(a, b, graph.EdgeDirect)
func (f *Fixture) AddNode(id, name, filePath string, startLine, endLine int) string {
	f.t.Helper()
	f.Nodes = append(f.Nodes, graph.Node{
		ID:              id,
		Name:            name,
		QualifiedName:   name,
		FilePath:        filePath,
		StartLine:       startLine,
		EndLine:         endLine,
		Language:        graph.LanguageGo,
		Kind:            graph.KindFunction,
		Visibility:      graph.VisibilityPublic,
		Parameters:      []graph.Parameter{},
		PackageOrModule: packageOf(filePath),
		LinesOfCode:     endLine - startLine + 1,
		Status:          graph.StatusDead,
		Color:           graph.ColorRed,
	})
	return id
}

// AddEntryNode is like AddNode but marks the node as an entry point.
func (f *Fixture) AddEntryNode(id, name, filePath string, startLine, endLine int) string {
	f.t.Helper()
	f.AddNode(id, name, filePath, startLine, endLine)
	last := &f.Nodes[len(f.Nodes)-1]
	last.IsEntryPoint = true
	last.Status = graph.StatusEntry
	last.Color = graph.ColorBlue
	return id
}

// AddEdge appends a resolved call edge from source to target.
func (f *Fixture) AddEdge(source, target string, kind graph.EdgeKind) {
	f.t.Helper()
	f.Edges = append(f.Edges, graph.Edge{
		Source:     source,
		Target:     target,
		Kind:       kind,
		IsResolved: true,
		CallSite:   graph.CallSite{FilePath: nodeFilePath(f.Nodes, source), Line: 1, Column: 1},
	})
}

// EntryIDs returns the set of ids of every node added via AddEntryNode.
// The result is a map, so it carries no insertion order.
func (f *Fixture) EntryIDs() map[string]bool {
	out := make(map[string]bool)
	for _, n := range f.Nodes {
		if n.IsEntryPoint {
			out[n.ID] = true
		}
	}
	return out
}

func nodeFilePath(nodes []graph.Node, id string) string {
	for _, n := range nodes {
		if n.ID == id {
			return n.FilePath
		}
	}
	return ""
}

func packageOf(filePath string) string {
	for i := len(filePath) - 1; i >= 0; i-- {
		if filePath[i] == '/' {
			return filePath[:i]
		}
	}
	return "."
}
