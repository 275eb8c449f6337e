package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsTotal counts finished runs.
	// Labels: "found", "unreachable", "aborted"
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathviz_search_runs_total",
		Help: "Total search runs by outcome",
	}, []string{"outcome"})

	expansionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pathviz_search_expansions_total",
		Help: "Cells moved from the open set to the closed set",
	})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathviz_search_run_duration_seconds",
		Help:    "Wall time of a search run, step delay included",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10, 60},
	})
)
