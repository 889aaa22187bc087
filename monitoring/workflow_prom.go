// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ScansStarted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "stridemap_scans_started_total",
	Help: "Number of scan cycles started",
})

var ScannerResultsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "stridemap_scanner_results_submitted_total",
	Help: "Number of scanner result submissions",
})

var ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "stridemap_reconcile_duration_seconds",
	Help:    "Duration of threat reconciliation runs",
	Buckets: prometheus.DefBuckets,
})

var ReconcileFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "stridemap_reconcile_failures_total",
	Help: "Number of failed threat reconciliation runs",
})

var WorkflowStepAdvances = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "stridemap_workflow_step_advances_total",
	Help: "Number of workflow step completions, by step",
}, []string{"step"})

var WorkflowCyclesStarted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "stridemap_workflow_cycles_started_total",
	Help: "Number of workflow cycles initialized",
})

var WorkflowsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "stridemap_workflows_completed_total",
	Help: "Number of artifact workflows that reached the terminal state",
})

var ConsistencyRepairs = promauto.NewCounter(prometheus.CounterOpts{
	Name: "stridemap_workflow_consistency_repairs_total",
	Help: "Number of self-healed cycle history divergences",
})
