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

package main

import (
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/graphmap/internal/bootstrap"
	"github.com/kraklabs/graphmap/internal/errors"
	"github.com/kraklabs/graphmap/internal/ui"
	"github.com/kraklabs/graphmap/pkg/assembler"
	"github.com/kraklabs/graphmap/pkg/config"
	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/extract/golang"
	"github.com/kraklabs/graphmap/pkg/extract/python"
	"github.com/kraklabs/graphmap/pkg/extract/typescript"
	"github.com/kraklabs/graphmap/pkg/graph"
)

type analyzeFlags struct {
	configPath  string
	projectRoot string
	include     []string
	exclude     []string
	output      string
	goModule    string
	goBuildTags []string
	pyVersion   string
	pyVenv      string
	pySrcRoots  []string
	tsconfig    string
	globals     GlobalFlags
}

func runAnalyze(args []string) {
	flags := parseAnalyzeFlags(args)
	ui.InitColors(flags.globals.NoColor)

	cfg := resolveAnalyzeConfig(flags)

	helpers := bootstrap.NewHelperCache()
	sink := diagnostics.New(nil)

	in := assembler.Input{
		ProjectRoot: cfg.ProjectRoot,
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
		EntryRules:  cfg.EntrypointRules(),

		GoModule:          cfg.Go.Module,
		GoBuildTags:       cfg.Go.BuildTags,
		PythonVersion:     cfg.Python.PythonVersion,
		PythonVenvPath:    cfg.Python.VenvPath,
		PythonSourceRoots: cfg.Python.SourceRoots,
		TSConfig:          cfg.TypeScript.TSConfig,

		Go:         &golang.Extractor{Helpers: helpers},
		TypeScript: &typescript.Extractor{},
		Python:     &python.Extractor{Helpers: helpers},

		Config: cfg,
		Now:    time.Now,
		Sink:   sink,
	}

	if !flags.globals.Quiet {
		ui.Infof("analyzing %s", cfg.ProjectRoot)
	}

	g, err := assembler.Assemble(in)
	if err != nil {
		errors.FatalError(err, flags.globals.JSON)
	}

	if err := writeArtifact(g, cfg.Output); err != nil {
		errors.FatalError(errors.NewConfigInvalid(
			"cannot write artifact", err.Error(),
			"check the --output path is writable", err,
		), flags.globals.JSON)
	}

	if !flags.globals.Quiet {
		ui.Successf(
			"%d functions, %d edges, %d dead, %d unused-parameter",
			g.Metadata.TotalFunctions, g.Metadata.TotalEdges,
			g.Metadata.TotalDeadFunctions, g.Metadata.TotalUnusedParameters,
		)
	}
}

func parseAnalyzeFlags(args []string) analyzeFlags {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	var f analyzeFlags
	fs.StringVar(&f.configPath, "config", "", "Path to graphmap.yaml (default: ./graphmap.yaml if present)")
	fs.StringVar(&f.projectRoot, "project-root", "", "Root directory to analyze (default: current directory)")
	fs.StringSliceVar(&f.include, "include", nil, "Glob to include (repeatable); overrides graphmap.yaml include[]")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "Glob to exclude (repeatable); overrides graphmap.yaml exclude[]")
	fs.StringVar(&f.output, "output", "", "Output path for the artifact (default: stdout)")
	fs.StringVar(&f.goModule, "go-module", "", "Go module path (overrides graphmap.yaml go.module)")
	fs.StringSliceVar(&f.goBuildTags, "go-build-tags", nil, "Go build tags (repeatable)")
	fs.StringVar(&f.pyVersion, "python-version", "", "Python version hint for the helper")
	fs.StringVar(&f.pyVenv, "python-venv", "", "Path to a Python virtualenv")
	fs.StringSliceVar(&f.pySrcRoots, "python-source-root", nil, "Python source root (repeatable)")
	fs.StringVar(&f.tsconfig, "tsconfig", "", "Path to tsconfig.json")
	fs.BoolVar(&f.globals.JSON, "json", false, "Emit errors as JSON")
	fs.BoolVar(&f.globals.Quiet, "quiet", false, "Suppress progress output")
	fs.BoolVar(&f.globals.NoColor, "no-color", false, "Disable colored output")
	fs.CountVarP(&f.globals.Verbose, "verbose", "V", "Increase log verbosity (repeatable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: graphmap analyze [options]

Runs one analysis pass over --project-root (or the working directory) and
writes a CodeGraph artifact to --output (or stdout).

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  graphmap analyze
  graphmap analyze --project-root ./service --include '**/*.go'
  graphmap analyze --config graphmap.yaml --output graph.json
`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	return f
}

// resolveAnalyzeConfig layers graphmap.yaml (or its built-in defaults) under
// the CLI flags the user actually passed, then validates and resolves
// projectRoot to an absolute path.
func resolveAnalyzeConfig(f analyzeFlags) *config.ResolvedConfig {
	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewConfigInvalid("cannot get current directory", err.Error(), "run graphmap from a readable directory", err), f.globals.JSON)
	}

	var cfg *config.ResolvedConfig
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.Discover(cwd)
	}
	if err != nil {
		errors.FatalError(err, f.globals.JSON)
	}

	if f.projectRoot != "" {
		cfg.ProjectRoot = f.projectRoot
	}
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = cwd
	}
	root, err := bootstrap.ProjectRoot(cfg.ProjectRoot)
	if err != nil {
		errors.FatalError(err, f.globals.JSON)
	}
	cfg.ProjectRoot = root

	if len(f.include) > 0 {
		cfg.Include = f.include
	}
	if len(f.exclude) > 0 {
		cfg.Exclude = f.exclude
	}
	if f.output != "" {
		cfg.Output = f.output
	}
	if f.goModule != "" {
		cfg.Go.Module = f.goModule
	}
	if len(f.goBuildTags) > 0 {
		cfg.Go.BuildTags = f.goBuildTags
	}
	if f.pyVersion != "" {
		cfg.Python.PythonVersion = f.pyVersion
	}
	if f.pyVenv != "" {
		cfg.Python.VenvPath = f.pyVenv
	}
	if len(f.pySrcRoots) > 0 {
		cfg.Python.SourceRoots = f.pySrcRoots
	}
	if f.tsconfig != "" {
		cfg.TypeScript.TSConfig = f.tsconfig
	}

	if err := cfg.Validate(); err != nil {
		errors.FatalError(err, f.globals.JSON)
	}
	return cfg
}

func writeArtifact(g *graph.CodeGraph, output string) error {
	if output == "" || output == "-" {
		return graph.Encode(os.Stdout, g)
	}
	f, err := os.Create(output) //nolint:gosec // G304: output path is operator-supplied
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return graph.Encode(f, g)
}
