package blocksci

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors exposed by the status sidecar.
var (
	runsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blocksci_runs_started_total",
		Help: "Pipeline runs picked up by a worker.",
	})

	runsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blocksci_runs_completed_total",
		Help: "Pipeline runs that finished successfully.",
	})

	runsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blocksci_runs_failed_total",
		Help: "Pipeline runs that failed.",
	})

	stepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blocksci_step_duration_seconds",
		Help:    "Wall clock duration of pipeline steps.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"step"})

	datasetCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blocksci_dataset_cache_hits_total",
		Help: "Dataset staging steps skipped because the converted dataset was cached.",
	})

	datasetCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blocksci_dataset_cache_misses_total",
		Help: "Dataset staging steps that had to download and convert.",
	})
)
