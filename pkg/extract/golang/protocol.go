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

package golang

import "github.com/kraklabs/graphmap/pkg/graph"

// HelperBinaryName is the executable the HelperCache resolves to run the
// typed extraction path out of process (spec.md §6.3).
const HelperBinaryName = "graphmap-go-helper"

// Request is the single-shot stdin payload spec.md §6.3 describes:
// {files[], projectRoot, module?}. BuildTags rides along as an
// extension field; readers that don't know it ignore it.
type Request struct {
	Files       []string `json:"files"`
	ProjectRoot string   `json:"projectRoot"`
	Module      string   `json:"module,omitempty"`
	BuildTags   []string `json:"buildTags,omitempty"`
}

// Response is the single-shot stdout payload: {nodes[], edges[]}.
type Response struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}
