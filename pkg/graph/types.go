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

// Package graph holds the CodeGraph data model: nodes, edges, clusters and
// the versioned artifact envelope that the assembler produces and the
// codec serializes.
package graph

// Language tags a node's or edge's source language.
type Language string

const (
	LanguageTypeScript Language = "typescript"
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
)

// FunctionKind is the closed set of callable-unit shapes a node can take.
type FunctionKind string

const (
	KindFunction    FunctionKind = "function"
	KindMethod      FunctionKind = "method"
	KindConstructor FunctionKind = "constructor"
	KindArrow       FunctionKind = "arrow"
	KindClosure     FunctionKind = "closure"
	KindLambda      FunctionKind = "lambda"
	KindInit        FunctionKind = "init"
)

// Visibility is the closed set of declared-name accessibility tags.
type Visibility string

const (
	VisibilityExported Visibility = "exported"
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityInternal Visibility = "internal"
	VisibilityModule   Visibility = "module"
)

// Status is the reachability classification assigned by the reachability engine.
type Status string

const (
	StatusLive  Status = "live"
	StatusDead  Status = "dead"
	StatusEntry Status = "entry"
)

// Color is the display color derived from status and unused-parameter presence.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
)

// EdgeKind is the closed set of call/reference shapes an edge can represent.
type EdgeKind string

const (
	EdgeDirect      EdgeKind = "direct"
	EdgeMethod      EdgeKind = "method"
	EdgeInterface   EdgeKind = "interface"
	EdgeConstructor EdgeKind = "constructor"
	EdgeCallback    EdgeKind = "callback"
	EdgeFuncref     EdgeKind = "funcref"
	EdgeVarinit     EdgeKind = "varinit"
	EdgeProvided    EdgeKind = "provided"
	EdgeDynamic     EdgeKind = "dynamic"
)

// DynamicTargetPrefix prefixes the sentinel target id used for unresolved
// call targets, e.g. "[dynamic:obj[key]()]".
const DynamicTargetPrefix = "[dynamic:"

// DynamicTarget builds the sentinel target id for an unresolved call site.
func DynamicTarget(expr string) string {
	return DynamicTargetPrefix + expr + "]"
}

// EntryNodeID is the fixed id of the virtual external-callers node.
const EntryNodeID = "__entry__"

// VarInitQualifiedName is the synthetic qualified name for a file's
// module-level initializer node (see the Go extractor's var-init handling).
const VarInitQualifiedName = "__var_init__"

// Parameter is one declared parameter of a node.
type Parameter struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	IsUsed   bool   `json:"isUsed"`
	Position int    `json:"position"`
}

// Node is a function-like unit of source code: a function, method,
// constructor, arrow, closure, lambda, or synthetic init.
type Node struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	QualifiedName    string       `json:"qualifiedName"`
	FilePath         string       `json:"filePath"`
	StartLine        int          `json:"startLine"`
	EndLine          int          `json:"endLine"`
	Language         Language     `json:"language"`
	Kind             FunctionKind `json:"kind"`
	Visibility       Visibility   `json:"visibility"`
	IsEntryPoint     bool         `json:"isEntryPoint"`
	Parameters       []Parameter  `json:"parameters"`
	UnusedParameters []string     `json:"unusedParameters"`
	PackageOrModule  string       `json:"packageOrModule"`
	LinesOfCode      int          `json:"linesOfCode"`
	Status           Status       `json:"status"`
	Color            Color        `json:"color"`
	Decorators       []string     `json:"decorators,omitempty"`
}

// CallSite locates the textual origin of an edge.
type CallSite struct {
	FilePath string `json:"filePath"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Edge is a directed call or function-value reference from Source to Target.
type Edge struct {
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	CallSite   CallSite `json:"callSite"`
	Kind       EdgeKind `json:"kind"`
	IsResolved bool     `json:"isResolved"`
}

// EntryNode is the virtual root representing external callers.
type EntryNode struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Targets []string `json:"targets"`
}

// NewEntryNode builds the fixed-id virtual entry node for a target id set.
func NewEntryNode(targets []string) EntryNode {
	return EntryNode{ID: EntryNodeID, Name: "External Callers", Targets: targets}
}

// Cluster groups nodes sharing a packageOrModule prefix into a hierarchy.
type Cluster struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	NodeIDs  []string `json:"nodeIds"`
	ParentID string   `json:"parent,omitempty"`
}

// Histogram is a package/module-keyed count breakdown.
type Histogram map[string]int

// CountStat is a count+percentage+histogram stat block.
type CountStat struct {
	Count      int       `json:"count"`
	Percentage float64   `json:"percentage"`
	ByPackage  Histogram `json:"byPackage"`
}

// EntryPointStat lists the final entry-id set.
type EntryPointStat struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// LargestFunction is one row of the top-10-by-size table.
type LargestFunction struct {
	ID          string `json:"id"`
	LinesOfCode int    `json:"linesOfCode"`
}

// Stats is the aggregate statistics block of an artifact.
type Stats struct {
	DeadFunctions    CountStat         `json:"deadFunctions"`
	UnusedParameters CountStat         `json:"unusedParameters"`
	EntryPoints      EntryPointStat    `json:"entryPoints"`
	LargestFunctions []LargestFunction `json:"largestFunctions"`
}

// Diagnostic is one structured warning or error surfaced alongside the artifact.
type Diagnostic struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	FilePath string `json:"filePath,omitempty"`
	Line     int    `json:"line,omitempty"`
	Fatal    bool   `json:"fatal"`
}

// SchemaVersion is the current artifact schema version string.
const SchemaVersion = "1.0.0"

// Metadata is the artifact's header: schema version, provenance and totals.
type Metadata struct {
	Version               string        `json:"version"`
	GeneratedAt            string        `json:"generatedAt"`
	Language               Language      `json:"language"`
	ProjectRoot            string        `json:"projectRoot"`
	AnalysisTimeMs         int64         `json:"analysisTimeMs"`
	TotalFiles             int           `json:"totalFiles"`
	TotalFunctions         int           `json:"totalFunctions"`
	TotalEdges             int           `json:"totalEdges"`
	TotalDeadFunctions     int           `json:"totalDeadFunctions"`
	TotalUnusedParameters  int           `json:"totalUnusedParameters"`
	Config                 any           `json:"config"`
	Diagnostics            []Diagnostic  `json:"diagnostics,omitempty"`
}

// CodeGraph is the complete, versioned artifact: the wire contract between
// the analysis core and every downstream consumer (viewer, CLI, watch
// transport).
type CodeGraph struct {
	Metadata  Metadata  `json:"metadata"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	EntryNode EntryNode `json:"entryNode"`
	Clusters  []Cluster `json:"clusters"`
	Stats     Stats     `json:"stats"`
}
