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
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/graphmap/internal/bootstrap"
	"github.com/kraklabs/graphmap/internal/errors"
	"github.com/kraklabs/graphmap/internal/ui"
	"github.com/kraklabs/graphmap/internal/watch"
	"github.com/kraklabs/graphmap/pkg/assembler"
	"github.com/kraklabs/graphmap/pkg/diagnostics"
	"github.com/kraklabs/graphmap/pkg/extract/golang"
	"github.com/kraklabs/graphmap/pkg/extract/python"
	"github.com/kraklabs/graphmap/pkg/extract/typescript"
)

type watchFlags struct {
	analyzeFlags
	addr string
}

func runWatch(args []string) {
	flags := parseWatchFlags(args)
	ui.InitColors(flags.globals.NoColor)

	cfg := resolveAnalyzeConfig(flags.analyzeFlags)
	helpers := bootstrap.NewHelperCache()

	server := watch.NewServer()
	http.HandleFunc("/ws", server.HandleWS)

	go func() {
		if err := http.ListenAndServe(flags.addr, nil); err != nil { //nolint:gosec // G114: watch mode is a local dev tool
			ui.Errorf("watch transport stopped: %v", err)
		}
	}()

	runOnce := func(reason string) {
		if !flags.globals.Quiet {
			ui.Infof("re-analyzing (%s)", reason)
		}
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
			Sink:   diagnostics.New(nil),
		}
		g, err := assembler.Assemble(in)
		if err != nil {
			ui.Errorf("analysis failed: %v", err)
			return
		}
		server.Broadcast(g)
		if !flags.globals.Quiet {
			ui.Successf("broadcast to %d client(s): %d functions, %d edges", server.ClientCount(), g.Metadata.TotalFunctions, g.Metadata.TotalEdges)
		}
	}

	runOnce("initial")

	w, err := watch.New(cfg.ProjectRoot, func(changed []string) {
		runOnce(fmt.Sprintf("%d file(s) changed", len(changed)))
	}, watch.DefaultOptions())
	if err != nil {
		errors.FatalError(errors.NewConfigInvalid("cannot start file watcher", err.Error(), "check the project root is readable", err), flags.globals.JSON)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := w.Start(ctx); err != nil {
		errors.FatalError(errors.NewConfigInvalid("cannot watch project root", err.Error(), "check the project root is readable", err), flags.globals.JSON)
	}
	defer w.Stop()

	ui.Successf("watching %s, transport ws://%s/ws", cfg.ProjectRoot, flags.addr)
	<-ctx.Done()
}

func parseWatchFlags(args []string) watchFlags {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	var f watchFlags
	fs.StringVar(&f.configPath, "config", "", "Path to graphmap.yaml (default: ./graphmap.yaml if present)")
	fs.StringVar(&f.projectRoot, "project-root", "", "Root directory to watch (default: current directory)")
	fs.StringSliceVar(&f.include, "include", nil, "Glob to include (repeatable); overrides graphmap.yaml include[]")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "Glob to exclude (repeatable); overrides graphmap.yaml exclude[]")
	fs.StringVar(&f.goModule, "go-module", "", "Go module path")
	fs.StringVar(&f.addr, "addr", "localhost:8765", "Address the websocket transport listens on")
	fs.BoolVar(&f.globals.JSON, "json", false, "Emit errors as JSON")
	fs.BoolVar(&f.globals.Quiet, "quiet", false, "Suppress progress output")
	fs.BoolVar(&f.globals.NoColor, "no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: graphmap watch [options]

Watches --project-root for file changes, re-analyzing and broadcasting a
§6.4 graph-update event to every client connected to the websocket
transport on --addr.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	return f
}
