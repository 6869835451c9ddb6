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

package python

import "github.com/kraklabs/graphmap/pkg/graph"

// HelperBinaryName is the executable the HelperCache resolves to run
// Python extraction out of process (spec.md §6.3).
const HelperBinaryName = "graphmap-python-helper"

// Request is the single-shot stdin payload: {files[], projectRoot, module?}.
// PythonVersion/VenvPath/SourceRoots ride along as extension fields.
type Request struct {
	Files         []string `json:"files"`
	ProjectRoot   string   `json:"projectRoot"`
	Module        string   `json:"module,omitempty"`
	PythonVersion string   `json:"pythonVersion,omitempty"`
	VenvPath      string   `json:"venvPath,omitempty"`
	SourceRoots   []string `json:"sourceRoots,omitempty"`
}

// Response is the single-shot stdout payload: {nodes[], edges[]}.
type Response struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}
