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

// Package watch implements graphmap's watch-mode driver: a debounced
// fsnotify tree watcher that triggers a re-analysis and hands the
// resulting §6.4 graph-update event to a transport (internal/watch's own
// websocket Server, or any other Handler).
package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler is called once per debounced batch of changes, with the paths
// that changed as fsnotify reports them (joined onto the watched root,
// not made project-relative).
type Handler func(changed []string)

// Options configures a Watcher.
type Options struct {
	// DebounceWindow is how long to wait for more changes before
	// triggering Handler. Default: 200ms.
	DebounceWindow time.Duration

	// IgnorePatterns are directory/file name patterns (matched against
	// filepath.Base, plus a substring check for directory components)
	// never watched or reported.
	IgnorePatterns []string
}

// DefaultOptions returns the defaults graphmap watch-mode starts from.
func DefaultOptions() Options {
	return Options{
		DebounceWindow: 200 * time.Millisecond,
		IgnorePatterns: []string{".git", "node_modules", "__pycache__", "vendor", "dist", "build"},
	}
}

// Watcher recursively watches a root directory and calls Handler with a
// debounced, deduplicated batch of changed paths whenever the tree settles.
type Watcher struct {
	root    string
	handler Handler
	opts    Options

	fsw  *fsnotify.Watcher
	done chan struct{}
	once sync.Once
}

// New creates a Watcher for root. Call Start to begin watching.
func New(root string, handler Handler, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{root: root, handler: handler, opts: opts, fsw: fsw, done: make(chan struct{})}, nil
}

// Start adds every non-ignored directory under root to the watch set and
// spawns the debounce loop. It returns once the initial tree is added;
// watching continues in the background until ctx is canceled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	go w.loop(ctx)
	return nil
}

// Stop releases the underlying fsnotify watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		_ = w.fsw.Close()
	})
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.opts.IgnorePatterns {
		if base == pattern || strings.Contains(path, string(filepath.Separator)+pattern+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// loop debounces fsnotify events into batches and calls Handler once the
// tree has been quiet for DebounceWindow.
func (w *Watcher) loop(ctx context.Context) {
	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		changed := make([]string, 0, len(pending))
		for p := range pending {
			changed = append(changed, p)
		}
		pending = make(map[string]bool)
		w.handler(changed)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) {
				continue
			}
			pending[event.Name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.opts.DebounceWindow)
			timerC = timer.C
		case <-timerC:
			flush()
			timerC = nil
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}
