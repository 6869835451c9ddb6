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

// Package metrics holds graphmap's Prometheus instrumentation: counters
// and histograms for analysis runs, per-language extraction, and the
// external-helper child-process protocol (§6.3).
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type graphmapMetrics struct {
	once sync.Once

	runsStarted   prometheus.Counter
	runsSucceeded prometheus.Counter
	runsFailed    prometheus.Counter

	filesDiscovered  prometheus.Counter
	functionsFound   prometheus.Counter
	edgesFound       prometheus.Counter
	deadFunctions    prometheus.Counter
	unusedParameters prometheus.Counter

	helperInvocations *prometheus.CounterVec
	helperTimeouts    *prometheus.CounterVec
	helperFailures    *prometheus.CounterVec
	helperFallbacks   *prometheus.CounterVec

	analysisDuration prometheus.Histogram
	watchBroadcasts  prometheus.Counter
}

var m graphmapMetrics

func (gm *graphmapMetrics) init() {
	gm.once.Do(func() {
		gm.runsStarted = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphmap_runs_started_total", Help: "Analysis runs started"})
		gm.runsSucceeded = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphmap_runs_succeeded_total", Help: "Analysis runs that produced an artifact"})
		gm.runsFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphmap_runs_failed_total", Help: "Analysis runs that failed fatally"})

		gm.filesDiscovered = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphmap_files_discovered_total", Help: "Files matched by FileDiscovery"})
		gm.functionsFound = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphmap_functions_total", Help: "Function-like nodes extracted"})
		gm.edgesFound = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphmap_edges_total", Help: "Call/reference edges extracted"})
		gm.deadFunctions = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphmap_dead_functions_total", Help: "Nodes classified dead by the reachability engine"})
		gm.unusedParameters = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphmap_unused_parameters_total", Help: "Nodes with at least one unused parameter"})

		gm.helperInvocations = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "graphmap_helper_invocations_total", Help: "External-helper child processes spawned"}, []string{"language"})
		gm.helperTimeouts = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "graphmap_helper_timeouts_total", Help: "External-helper invocations that hit their soft timeout"}, []string{"language"})
		gm.helperFailures = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "graphmap_helper_failures_total", Help: "External-helper invocations that exited non-zero"}, []string{"language"})
		gm.helperFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "graphmap_helper_fallbacks_total", Help: "Extractions that degraded to a fallback path"}, []string{"language"})

		buckets := []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120}
		gm.analysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "graphmap_analysis_duration_seconds", Help: "Wall-clock duration of one assembler run", Buckets: buckets})
		gm.watchBroadcasts = prometheus.NewCounter(prometheus.CounterOpts{Name: "graphmap_watch_broadcasts_total", Help: "graph-update events broadcast by watch mode"})

		prometheus.MustRegister(
			gm.runsStarted, gm.runsSucceeded, gm.runsFailed,
			gm.filesDiscovered, gm.functionsFound, gm.edgesFound, gm.deadFunctions, gm.unusedParameters,
			gm.helperInvocations, gm.helperTimeouts, gm.helperFailures, gm.helperFallbacks,
			gm.analysisDuration, gm.watchBroadcasts,
		)
	})
}

// RunStarted records the start of one analysis run.
func RunStarted() { m.init(); m.runsStarted.Inc() }

// RunSucceeded records a run that produced an artifact, with its node/edge
// counts and wall-clock duration in seconds.
func RunSucceeded(functions, edges, dead, unused int, seconds float64) {
	m.init()
	m.runsSucceeded.Inc()
	m.functionsFound.Add(float64(functions))
	m.edgesFound.Add(float64(edges))
	m.deadFunctions.Add(float64(dead))
	m.unusedParameters.Add(float64(unused))
	m.analysisDuration.Observe(seconds)
}

// RunFailed records a run that ended in a fatal error.
func RunFailed() { m.init(); m.runsFailed.Inc() }

// FilesDiscovered adds n to the discovered-file counter.
func FilesDiscovered(n int) { m.init(); m.filesDiscovered.Add(float64(n)) }

// HelperInvoked records one external-helper child process spawn for language.
func HelperInvoked(language string) { m.init(); m.helperInvocations.WithLabelValues(language).Inc() }

// HelperTimedOut records a helper invocation that exceeded its soft timeout.
func HelperTimedOut(language string) { m.init(); m.helperTimeouts.WithLabelValues(language).Inc() }

// HelperFailed records a helper invocation that exited non-zero.
func HelperFailed(language string) { m.init(); m.helperFailures.WithLabelValues(language).Inc() }

// HelperFallback records an extraction that degraded to a fallback path.
func HelperFallback(language string) { m.init(); m.helperFallbacks.WithLabelValues(language).Inc() }

// WatchBroadcast records one graph-update event sent to watch-mode clients.
func WatchBroadcast() { m.init(); m.watchBroadcasts.Inc() }
