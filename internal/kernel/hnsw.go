// hnsw.go backs every non-"Flat" index_key with github.com/coder/hnsw's
// incremental graph: a metric-specific Graph.Distance function (negated dot
// product for inner product so the graph's smaller-is-closer ordering still
// ranks correctly), hnsw.MakeNode for Add, Graph.Search for queries, and
// Graph.Export/Import for persistence.
package kernel

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/coder/hnsw"

	"github.com/23skdu/annvdb/internal/core"
)

// HNSWIndex wraps a coder/hnsw graph keyed by row index (0..count-1), the
// same row-index convention FlatIndex uses.
type HNSWIndex struct {
	dim    int
	metric core.Metric
	graph  *hnsw.Graph[int64]
}

// Count implements Index.
func (h *HNSWIndex) Count() int { return h.graph.Len() }

type hnswKernel struct{}

// innerProductDistanceFunc and l2DistanceFunc are fixed, non-closing function
// values (rather than per-call closures) so that coder/hnsw's pointer-identity
// based RegisterDistanceFunc/Export lookup can find them.
func innerProductDistanceFunc(a, b []float32) float32 {
	// The graph always treats a smaller value as closer; negate the dot
	// product so minimizing it maximizes inner product.
	return -distance(core.MetricInnerProduct, a, b)
}

func l2DistanceFunc(a, b []float32) float32 {
	return distance(core.MetricL2, a, b)
}

func init() {
	hnsw.RegisterDistanceFunc("annvdb-inner-product", innerProductDistanceFunc)
	hnsw.RegisterDistanceFunc("annvdb-l2", l2DistanceFunc)
}

func hnswDistanceFunc(metric core.Metric) func(a, b []float32) float32 {
	if metric == core.MetricInnerProduct {
		return innerProductDistanceFunc
	}
	return l2DistanceFunc
}

func (hnswKernel) Factory(dim int, indexKey string, metric core.Metric) (Index, error) {
	if dim <= 0 {
		return nil, core.NewInvalidArgumentError("dim", "must be positive")
	}
	if !metric.Valid() {
		return nil, core.NewInvalidArgumentError("metric", "must be 0 or 1")
	}
	g := hnsw.NewGraph[int64]()
	g.Distance = hnswDistanceFunc(metric)
	return &HNSWIndex{dim: dim, metric: metric, graph: g}, nil
}

// Train is a no-op: coder/hnsw builds incrementally via Add, with no
// separate batch-training pass. nt is bookkeeping the Builder uses to decide
// when to retrain/reuse; the kernel itself has no notion of "trained" rows.
func (hnswKernel) Train(idx Index, nt int, x []float32) error { return nil }

func (hnswKernel) Add(idx Index, nb int, x []float32) error {
	h := idx.(*HNSWIndex)
	base := int64(h.graph.Len())
	for i := 0; i < nb; i++ {
		vec := x[i*h.dim : (i+1)*h.dim]
		h.graph.Add(hnsw.MakeNode(base+int64(i), vec))
	}
	return nil
}

func (hnswKernel) Search(idx Index, nq int, q []float32, k int) ([]float32, []int64) {
	h := idx.(*HNSWIndex)
	distances := make([]float32, nq*k)
	ids := make([]int64, nq*k)

	searchK := k
	if n := h.graph.Len(); searchK > n {
		searchK = n
	}

	worse := func(a, b float32) bool { return h.metric.Better(b, a) }

	for qi := 0; qi < nq; qi++ {
		query := q[qi*h.dim : (qi+1)*h.dim]
		heap := newTopKHeap(k, worse)
		if searchK > 0 {
			nodes := h.graph.Search(query, searchK)
			for _, n := range nodes {
				d := distance(h.metric, query, n.Value)
				heap.Offer(candidate{id: n.Key, dist: d})
			}
		}
		sorted := heap.Sorted()
		for i := 0; i < k; i++ {
			off := qi*k + i
			if i < len(sorted) {
				distances[off] = sorted[i].dist
				ids[off] = sorted[i].id
			} else {
				distances[off] = 0
				ids[off] = -1
			}
		}
	}
	return distances, ids
}

func (hnswKernel) Write(idx Index, path string) error {
	h := idx.(*HNSWIndex)
	file, err := os.Create(path)
	if err != nil {
		return core.NewIOError("write-index", path, err)
	}
	defer func() { _ = file.Close() }()
	if err := h.graph.Export(file); err != nil {
		return core.NewIOError("write-index", path, err)
	}
	return nil
}

func (hnswKernel) Read(dim int, indexKey string, metric core.Metric, path string) (Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, core.NewIOError("read-index", path, err)
	}
	defer func() { _ = file.Close() }()

	g := hnsw.NewGraph[int64]()
	if err := g.Import(bufio.NewReader(file)); err != nil {
		return nil, core.NewIOError("read-index", path, err)
	}
	g.Distance = hnswDistanceFunc(metric)
	return &HNSWIndex{dim: dim, metric: metric, graph: g}, nil
}

func (hnswKernel) IsExact(idx Index) bool { return false }

// Configure parses a comma-separated key=value query_params string and
// applies recognized keys to the graph's tunable fields. Unrecognized keys
// are ignored; this is an opaque, best-effort tuning knob.
func (hnswKernel) Configure(idx Index, queryParams string) error {
	h := idx.(*HNSWIndex)
	if queryParams == "" {
		return nil
	}
	for _, pair := range strings.Split(queryParams, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := strings.ToLower(strings.TrimSpace(kv[0])), strings.TrimSpace(kv[1])
		switch key {
		case "m":
			if n, err := strconv.Atoi(val); err == nil {
				h.graph.M = n
			}
		case "efsearch":
			if n, err := strconv.Atoi(val); err == nil {
				h.graph.EfSearch = n
			}
		case "ml":
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				h.graph.Ml = f
			}
		}
	}
	return nil
}
