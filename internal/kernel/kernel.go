// Package kernel implements the IndexKernel contract the core depends on:
// factory/train/add/search/read/write/is_exact, parameterized by (dim,
// index_key, metric). Two families are provided: "Flat", a hand-rolled exact
// linear scan, and everything else, backed by github.com/coder/hnsw.
//
// The core (Builder, Searcher, DB) never depends on anything beyond this
// interface.
package kernel

import (
	"github.com/23skdu/annvdb/internal/core"
)

// Index is an opaque, kernel-owned ANN (or exact) index handle.
type Index interface {
	// Count returns the number of rows currently Add-ed to the index.
	Count() int
}

// Kernel is the capability surface the core consumes from an ANN library.
type Kernel interface {
	// Factory produces a fresh, empty index for the given dimension,
	// factory string, and metric.
	Factory(dim int, indexKey string, metric core.Metric) (Index, error)

	// Train trains idx on the first nt rows of x (nt*dim floats). Required
	// for non-"Flat" index_key; a no-op otherwise.
	Train(idx Index, nt int, x []float32) error

	// Add appends nb rows (nb*dim floats) to idx; idx.Count() grows by nb.
	Add(idx Index, nb int, x []float32) error

	// Search runs nq queries (nq*dim floats) against idx, returning the best
	// k neighbor distances and ids per query, best-first under the metric.
	// An empty slot is signaled by id -1.
	Search(idx Index, nq int, q []float32, k int) (distances []float32, ids []int64)

	// Write persists idx to path.
	Write(idx Index, path string) error

	// Read restores an index previously written to path.
	Read(dim int, indexKey string, metric core.Metric, path string) (Index, error)

	// IsExact reports whether idx is a pure exact scan (the "Flat" family).
	IsExact(idx Index) bool

	// Configure applies the opaque query_params tuning string to idx. Called
	// by Builder once, right after Train, on a freshly constructed index.
	// A no-op for families with no tunable query-time parameters.
	Configure(idx Index, queryParams string) error
}

// FlatKey is the distinguished index_key that selects the exact, untrained family.
const FlatKey = "Flat"

// Default returns the kernel implementation appropriate for indexKey:
// FlatKey routes to the hand-rolled exact scan, anything else to the
// coder/hnsw-backed approximate kernel.
func Default(indexKey string) Kernel {
	if indexKey == FlatKey {
		return flatKernel{}
	}
	return hnswKernel{}
}
