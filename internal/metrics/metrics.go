// Package metrics holds the Prometheus instrumentation for every layer of
// the ANN database as promauto-declared package vars.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BaseStoreSize tracks N, the number of rows mirrored by the base store.
	BaseStoreSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "annvdb_base_store_size",
			Help: "Current number of vector rows in the base store",
		},
	)

	// BaseStoreAppendDuration measures Append call latency.
	BaseStoreAppendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "annvdb_base_store_append_duration_seconds",
			Help:    "Duration of BaseStore.Append calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	// IndexBuildLatency measures the time taken to build a candidate index.
	IndexBuildLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "annvdb_index_build_latency_seconds",
			Help:    "Latency of ANN index build operations",
			Buckets: prometheus.DefBuckets,
		},
	)

	// IndexBuildsTotal counts build attempts by outcome.
	IndexBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annvdb_index_builds_total",
			Help: "Total number of index build attempts by outcome",
		},
		[]string{"outcome"},
	)

	// IndexActivationsTotal counts successful index activations.
	IndexActivationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "annvdb_index_activations_total",
			Help: "Total number of index activations",
		},
	)

	// IndexNTrain tracks the ntrain of the currently active index.
	IndexNTrain = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "annvdb_index_ntrain",
			Help: "ntrain of the currently active index",
		},
	)

	// IndexNTotal tracks ntotal, the prefix of the base store covered by the active index.
	IndexNTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "annvdb_index_ntotal",
			Help: "Number of rows covered by the currently active index",
		},
	)

	// FlatTailSize tracks N - ntotal, the size of the untrained tail.
	FlatTailSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "annvdb_flat_tail_size",
			Help: "Number of rows not yet covered by the active index",
		},
	)

	// SearchLatencySeconds measures search latency by phase.
	SearchLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "annvdb_search_latency_seconds",
			Help:    "Search latency by phase",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)

	// SearchesTotal counts searches by which phase's candidate won the merge.
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annvdb_searches_total",
			Help: "Total number of searches by winning phase (ann, tail, none)",
		},
		[]string{"winner"},
	)

	// RegistryGCTotal counts superseded index files removed by the registry.
	RegistryGCTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "annvdb_index_registry_gc_total",
			Help: "Total number of superseded index files removed",
		},
	)

	// KernelPoolHitsTotal and KernelPoolMissesTotal track the reusable flat
	// kernel pool used by the searcher's refine and tail-scan steps.
	KernelPoolHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "annvdb_kernel_pool_hits_total",
			Help: "Total borrows of a flat kernel scratch buffer from the pool, including misses",
		},
	)
	KernelPoolMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "annvdb_kernel_pool_misses_total",
			Help: "Total allocations of a new flat kernel scratch buffer",
		},
	)

	// ParquetExportDuration and ParquetImportDuration measure Parquet
	// interchange latency end to end, including compression.
	ParquetExportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "annvdb_parquet_export_duration_seconds",
			Help:    "Duration of Parquet vector exports",
			Buckets: prometheus.DefBuckets,
		},
	)
	ParquetImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "annvdb_parquet_import_duration_seconds",
			Help:    "Duration of Parquet vector imports",
			Buckets: prometheus.DefBuckets,
		},
	)
)
