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

// Package main implements the graphmap CLI: a static-analysis call-graph
// engine for TypeScript, Go and Python source trees.
//
// Usage:
//
//	graphmap analyze [options]   Run one analysis pass and emit a CodeGraph artifact
//	graphmap watch [options]     Re-analyze on file changes, streaming graph-update events
//	graphmap version             Print version information
package main

import (
	"fmt"
	"os"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags are the flags common to every subcommand.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	NoColor bool
	Verbose int
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]
	cmdArgs := os.Args[2:]

	switch command {
	case "analyze":
		runAnalyze(cmdArgs)
	case "watch":
		runWatch(cmdArgs)
	case "version", "--version", "-v":
		printVersion()
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `graphmap - multi-language call-graph static analyzer

Usage:
  graphmap <command> [options]

Commands:
  analyze       Run one analysis pass and emit a CodeGraph artifact
  watch         Re-analyze on file changes, streaming updates
  version       Print version information

Examples:
  graphmap analyze --project-root . --include '**/*.go'
  graphmap analyze --config graphmap.yaml --output graph.json
  graphmap watch --project-root .

Run 'graphmap <command> --help' for command-specific options.
`)
}

func printVersion() {
	fmt.Printf("graphmap version %s\n", version)
	fmt.Printf("commit: %s\n", commit)
	fmt.Printf("built: %s\n", date)
}
