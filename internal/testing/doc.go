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

// Package testing provides fixture builders for graphmap's own test suite.
//
// Use NewFixture to build a small node/edge graph without hand-writing
// literal graph.Node/graph.Edge slices in every reachability or stats
// test:
//
//	func TestDeadLeaf(t *testing.T) {
//	    f := testing.NewFixture(t)
//	    entry := f.AddEntryNode("main.go:main", "main", "main.go", 1, 3)
//	    live := f.AddNode("main.go:helper", "helper", "main.go", 5, 7)
//	    dead := f.AddNode("main.go:unused", "unused", "main.go", 9, 11)
//	    f.AddEdge(entry, live, graph.EdgeDirect)
//
//	    visited := reachability.Classify(f.Nodes, f.Edges, f.EntryIDs())
//	    require.False(t, visited[dead])
//	}
package testing
