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

// Package cluster implements ClusterBuilder: grouping nodes by their
// packageOrModule string into a parent-linked hierarchy.
package cluster

import (
	"sort"
	"strings"

	"github.com/kraklabs/graphmap/pkg/graph"
)

// Build computes the distinct packageOrModule values across nodes and
// emits one cluster per value, parent-linked by path prefix. Cluster
// order is stable by id (lexical), satisfying the §4.8 ordering rule.
func Build(nodes []graph.Node) []graph.Cluster {
	byPkg := make(map[string][]string)
	for _, n := range nodes {
		byPkg[n.PackageOrModule] = append(byPkg[n.PackageOrModule], n.ID)
	}

	clusters := make([]graph.Cluster, 0, len(byPkg))
	for pkg, ids := range byPkg {
		sort.Strings(ids)
		clusters = append(clusters, graph.Cluster{
			ID:       clusterID(pkg),
			Label:    label(pkg),
			NodeIDs:  ids,
			ParentID: parentID(pkg),
		})
	}

	sort.Slice(clusters, func(i, j int) bool { return clusters[i].ID < clusters[j].ID })
	return clusters
}

func clusterID(pkg string) string {
	if pkg == "" {
		return "."
	}
	return pkg
}

func label(pkg string) string {
	if pkg == "" {
		return "."
	}
	idx := strings.LastIndex(pkg, "/")
	if idx < 0 {
		return pkg
	}
	return pkg[idx+1:]
}

func parentID(pkg string) string {
	if pkg == "" {
		return ""
	}
	idx := strings.LastIndex(pkg, "/")
	if idx < 0 {
		return ""
	}
	return pkg[:idx]
}
