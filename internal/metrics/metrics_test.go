package metrics

import "testing"

// TestMetricsRegistered checks that every promauto collector this package
// declares was actually constructed (a nil here means registration panicked
// or was skipped, which promauto's NewX constructors never do in practice,
// but a nil-check catches a stray field rename before anything else does).
func TestMetricsRegistered(t *testing.T) {
	if BaseStoreSize == nil {
		t.Fatal("BaseStoreSize is nil")
	}
	if BaseStoreAppendDuration == nil {
		t.Fatal("BaseStoreAppendDuration is nil")
	}
	if IndexBuildLatency == nil {
		t.Fatal("IndexBuildLatency is nil")
	}
	if IndexBuildsTotal == nil {
		t.Fatal("IndexBuildsTotal is nil")
	}
	if IndexActivationsTotal == nil {
		t.Fatal("IndexActivationsTotal is nil")
	}
	if IndexNTrain == nil {
		t.Fatal("IndexNTrain is nil")
	}
	if IndexNTotal == nil {
		t.Fatal("IndexNTotal is nil")
	}
	if FlatTailSize == nil {
		t.Fatal("FlatTailSize is nil")
	}
	if SearchLatencySeconds == nil {
		t.Fatal("SearchLatencySeconds is nil")
	}
	if SearchesTotal == nil {
		t.Fatal("SearchesTotal is nil")
	}
	if RegistryGCTotal == nil {
		t.Fatal("RegistryGCTotal is nil")
	}
	if KernelPoolHitsTotal == nil {
		t.Fatal("KernelPoolHitsTotal is nil")
	}
	if KernelPoolMissesTotal == nil {
		t.Fatal("KernelPoolMissesTotal is nil")
	}
	if ParquetExportDuration == nil {
		t.Fatal("ParquetExportDuration is nil")
	}
	if ParquetImportDuration == nil {
		t.Fatal("ParquetImportDuration is nil")
	}
}

// TestCounterVecLabelValues checks that the labeled collectors accept the
// label values the rest of the codebase actually uses, so a typo in a label
// set shows up here instead of silently creating a new series in prod.
func TestCounterVecLabelValues(t *testing.T) {
	for _, outcome := range []string{"error", "skipped", "built"} {
		IndexBuildsTotal.WithLabelValues(outcome).Add(0)
	}
	for _, winner := range []string{"ann", "tail", "none"} {
		SearchesTotal.WithLabelValues(winner).Add(0)
	}
	for _, phase := range []string{"ann", "refine", "tail"} {
		SearchLatencySeconds.WithLabelValues(phase).Observe(0)
	}
}
