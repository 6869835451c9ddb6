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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/graphmap/pkg/graph"
)

func TestFixture_AddNode(t *testing.T) {
	f := NewFixture(t)
	id := f.AddNode("main.go:Helper", "Helper", "main.go", 10, 20)

	require.Len(t, f.Nodes, 1)
	assert.Equal(t, id, f.Nodes[0].ID)
	assert.Equal(t, graph.StatusDead, f.Nodes[0].Status)
	assert.Equal(t, graph.ColorRed, f.Nodes[0].Color)
	assert.Equal(t, 11, f.Nodes[0].LinesOfCode)
	assert.Equal(t, ".", f.Nodes[0].PackageOrModule)
}

func TestFixture_AddEntryNode(t *testing.T) {
	f := NewFixture(t)
	id := f.AddEntryNode("main.go:main", "main", "main.go", 1, 5)

	require.Len(t, f.Nodes, 1)
	assert.True(t, f.Nodes[0].IsEntryPoint)
	assert.Equal(t, graph.StatusEntry, f.Nodes[0].Status)
	assert.Equal(t, graph.ColorBlue, f.Nodes[0].Color)
	assert.True(t, f.EntryIDs()[id])
}

func TestFixture_AddEdge(t *testing.T) {
	f := NewFixture(t)
	a := f.AddNode("pkg/a.go:A", "A", "pkg/a.go", 1, 3)
	b := f.AddNode("pkg/a.go:B", "B", "pkg/a.go", 5, 7)
	f.AddEdge(a, b, graph.EdgeDirect)

	require.Len(t, f.Edges, 1)
	assert.Equal(t, a, f.Edges[0].Source)
	assert.Equal(t, b, f.Edges[0].Target)
	assert.Equal(t, graph.EdgeDirect, f.Edges[0].Kind)
	assert.True(t, f.Edges[0].IsResolved)
	assert.Equal(t, "pkg/a.go", f.Edges[0].CallSite.FilePath)
}

func TestFixture_EntryIDs_OnlyEntryNodes(t *testing.T) {
	f := NewFixture(t)
	entry := f.AddEntryNode("a.go:main", "main", "a.go", 1, 2)
	f.AddNode("a.go:helper", "helper", "a.go", 4, 6)

	ids := f.EntryIDs()
	assert.Len(t, ids, 1)
	assert.True(t, ids[entry])
}
