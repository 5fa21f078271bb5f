// Package searcher runs the two-phase query path: an ANN pass against the
// active index (refined to exact distances when the index is approximate)
// fused with an exact scan of the untrained flat tail. The refine and
// tail-scan steps borrow scratch FlatIndex values from a
// concurrency.ConcurrentPool instead of allocating fresh ones per query.
package searcher

import (
	"runtime"
	"time"

	"github.com/23skdu/annvdb/internal/basestore"
	"github.com/23skdu/annvdb/internal/concurrency"
	"github.com/23skdu/annvdb/internal/core"
	"github.com/23skdu/annvdb/internal/indexstate"
	"github.com/23skdu/annvdb/internal/kernel"
	"github.com/23skdu/annvdb/internal/metrics"
)

// K is the internal fan-out for the ANN pass and the tail scan.
const K = 100

// Searcher executes queries against a (Store, IndexState) pair supplied per
// call; it holds only the stateless kernel dispatch table, the declared
// metric, and the scratch-index pool.
type Searcher struct {
	kernel kernel.Kernel
	flat   kernel.Kernel // always the exact "Flat" family, for refine/tail
	metric core.Metric
	pool   *concurrency.ConcurrentPool[*kernel.FlatIndex]
}

// New returns a Searcher that queries idx (the active family's kernel, e.g.
// hnsw) under metric, refining/tail-scanning with the exact flat kernel.
func New(idxKernel kernel.Kernel, metric core.Metric) *Searcher {
	return &Searcher{
		kernel: idxKernel,
		flat:   kernel.Default(kernel.FlatKey),
		metric: metric,
		pool: concurrency.NewConcurrentPool(runtime.GOMAXPROCS(0), func() *kernel.FlatIndex {
			metrics.KernelPoolMissesTotal.Inc()
			return kernel.NewScratch()
		}),
	}
}

// borrow fetches a scratch FlatIndex from the pool, counting every call as
// a hit (the reuse rate is Hits minus the Misses counted in New's newFn).
func (s *Searcher) borrow() *kernel.FlatIndex {
	metrics.KernelPoolHitsTotal.Inc()
	return s.pool.Get()
}

// Search runs nq queries against state's active index plus base's flat
// tail, returning one fused (distance, id) per query. ids are row indices
// into base, not caller-supplied external ids.
func (s *Searcher) Search(base *basestore.Store, state *indexstate.State, nq int, xq []float32) ([]float32, []int64, error) {
	if nq <= 0 {
		return nil, nil, core.NewInvalidArgumentError("nq", "must be positive")
	}
	dim := base.Dim()
	if len(xq) != nq*dim {
		return nil, nil, core.NewInvalidArgumentError("xq", "length must be nq*dim")
	}

	snap := base.SnapshotPtr(0)
	ntotal := state.NTotal()
	metrics.FlatTailSize.Set(float64(snap.N - ntotal))

	annDist, annID, err := s.searchANN(state, snap, nq, xq)
	if err != nil {
		return nil, nil, err
	}

	tailDist, tailID := s.searchTail(snap, ntotal, nq, xq)

	distances := make([]float32, nq)
	ids := make([]int64, nq)
	for i := 0; i < nq; i++ {
		d, id, winner := s.merge(annID[i], annDist[i], tailID[i], tailDist[i])
		distances[i] = d
		ids[i] = id
		metrics.SearchesTotal.WithLabelValues(winner).Inc()
	}
	return distances, ids, nil
}

// searchANN runs Phase A: top-K against the active index (if any), refined
// to exact distances when the index is approximate.
func (s *Searcher) searchANN(state *indexstate.State, snap basestore.Snapshot, nq int, xq []float32) ([]float32, []int64, error) {
	dist := make([]float32, nq)
	id := make([]int64, nq)
	for i := range id {
		id[i] = -1
	}

	idx := state.Index
	if idx == nil {
		return dist, id, nil
	}

	start := time.Now()
	candDist, candIDs := s.kernel.Search(idx, nq, xq, K)
	metrics.SearchLatencySeconds.WithLabelValues("ann").Observe(time.Since(start).Seconds())

	exact := s.kernel.IsExact(idx)
	refineStart := time.Now()
	for i := 0; i < nq; i++ {
		row := candIDs[i*K : (i+1)*K]
		rowDist := candDist[i*K : (i+1)*K]
		if exact {
			if len(row) > 0 && row[0] >= 0 {
				dist[i], id[i] = rowDist[0], row[0]
			}
			continue
		}
		dist[i], id[i] = s.refine(snap, xq[i*snap.Dim:(i+1)*snap.Dim], row)
	}
	if !exact {
		metrics.SearchLatencySeconds.WithLabelValues("refine").Observe(time.Since(refineStart).Seconds())
	}
	return dist, id, nil
}

// refine builds a transient exact index over the candidate rows (pulled
// from base by row index) and returns the single best (distance, id).
func (s *Searcher) refine(snap basestore.Snapshot, query []float32, candidates []int64) (float32, int64) {
	flat := s.borrow()
	defer s.pool.Put(flat)
	flat.Reset(snap.Dim, s.metric)

	localIDs := make([]int64, 0, len(candidates))
	for _, row := range candidates {
		if row < 0 {
			continue
		}
		vec := snap.Data[int(row)*snap.Dim : (int(row)+1)*snap.Dim]
		_ = s.flat.Add(flat, 1, vec)
		localIDs = append(localIDs, row)
	}
	if len(localIDs) == 0 {
		return 0, -1
	}

	k := len(localIDs)
	dist, ids := s.flat.Search(flat, 1, query, k)
	if len(ids) == 0 || ids[0] < 0 {
		return 0, -1
	}
	return dist[0], localIDs[ids[0]]
}

// searchTail runs Phase B: a shared exact index over base's untrained
// suffix [ntotal, N), built once and reused across every query in this call.
func (s *Searcher) searchTail(snap basestore.Snapshot, ntotal, nq int, xq []float32) ([]float32, []int64) {
	dist := make([]float32, nq)
	id := make([]int64, nq)
	for i := range id {
		id[i] = -1
	}
	tailCount := snap.N - ntotal
	if tailCount <= 0 {
		return dist, id
	}

	flat := s.borrow()
	defer s.pool.Put(flat)
	flat.Reset(snap.Dim, s.metric)
	_ = s.flat.Add(flat, tailCount, snap.Data[ntotal*snap.Dim:snap.N*snap.Dim])

	start := time.Now()
	k := K
	if k > tailCount {
		k = tailCount
	}
	candDist, candIDs := s.flat.Search(flat, nq, xq, k)
	metrics.SearchLatencySeconds.WithLabelValues("tail").Observe(time.Since(start).Seconds())

	for i := 0; i < nq; i++ {
		localID := candIDs[i*k]
		if localID < 0 {
			continue
		}
		dist[i] = candDist[i*k]
		id[i] = int64(ntotal) + localID
	}
	return dist, id
}

// merge keeps the better of the Phase A and Phase B tops under the metric's
// ordering.
func (s *Searcher) merge(annID int64, annDist float32, tailID int64, tailDist float32) (float32, int64, string) {
	haveANN := annID >= 0
	haveTail := tailID >= 0
	switch {
	case haveANN && haveTail:
		if s.metric.Better(tailDist, annDist) {
			return tailDist, tailID, "tail"
		}
		return annDist, annID, "ann"
	case haveANN:
		return annDist, annID, "ann"
	case haveTail:
		return tailDist, tailID, "tail"
	default:
		return 0, -1, "none"
	}
}
