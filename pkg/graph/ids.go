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

package graph

import "path/filepath"

// NormalizePath puts a file path into the canonical form node/edge ids are
// built from: forward slashes, no leading "./", no leading "/".
func NormalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.ToSlash(filepath.Clean(path))
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}

// GenerateFunctionID builds the canonical node id for a declaration:
// "<relpath>:<qualifiedName>". Ids are a pure function of file path and
// syntactic qualified name; they never embed runtime or parser-generated
// positions, so re-running the analysis over unchanged source always
// reproduces the same id.
func GenerateFunctionID(relPath, qualifiedName string) string {
	return NormalizePath(relPath) + ":" + qualifiedName
}

// GenerateMethodQualifiedName builds "T.M" for a method M on receiver type T.
func GenerateMethodQualifiedName(receiverType, methodName string) string {
	return receiverType + "." + methodName
}

// GenerateConstructorQualifiedName builds "T.constructor" for a constructor of T.
func GenerateConstructorQualifiedName(typeName string) string {
	return typeName + ".constructor"
}

// PackageOrModule derives a node's packageOrModule field from its file path:
// the directory the file lives in, or "" (module root) when the file has no
// directory component.
func PackageOrModule(relPath string) string {
	dir := filepath.ToSlash(filepath.Dir(NormalizePath(relPath)))
	if dir == "." {
		return ""
	}
	return dir
}
