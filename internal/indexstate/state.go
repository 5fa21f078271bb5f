// Package indexstate holds the currently-active ANN index behind an atomic
// pointer: searchers load the pointer once per query and never block a
// concurrent activation.
package indexstate

import (
	"sync/atomic"

	"github.com/23skdu/annvdb/internal/kernel"
	"github.com/23skdu/annvdb/internal/metrics"
)

// State is one immutable snapshot of the active index: the index itself
// (nil if none has ever been built) and the row count it was trained on.
type State struct {
	Index  kernel.Index
	NTrain int
}

// NTotal returns the number of base-store rows this snapshot's index
// covers: its own Count(), or 0 if no index is active yet.
func (s *State) NTotal() int {
	if s == nil || s.Index == nil {
		return 0
	}
	return s.Index.Count()
}

// Holder publishes State snapshots for lock-free reads. The zero value holds
// no index.
type Holder struct {
	ptr atomic.Pointer[State]
}

// NewHolder returns a Holder initialized to the given state (possibly one
// with a nil Index, meaning NoIndex).
func NewHolder(initial *State) *Holder {
	h := &Holder{}
	h.ptr.Store(initial)
	return h
}

// Load returns the current snapshot. Never nil after NewHolder.
func (h *Holder) Load() *State {
	return h.ptr.Load()
}

// Swap atomically replaces the active snapshot and updates the gauges that
// track it. The old snapshot is simply dropped; Go's GC reclaims it once the
// last in-flight searcher holding a reference to it returns.
func (h *Holder) Swap(next *State) {
	h.ptr.Store(next)
	metrics.IndexNTrain.Set(float64(next.NTrain))
	metrics.IndexNTotal.Set(float64(next.NTotal()))
}
