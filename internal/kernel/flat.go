package kernel

import (
	"bufio"
	"encoding/binary"
	"math"
	"os"

	"github.com/23skdu/annvdb/internal/core"
)

// FlatIndex is a pure exact linear scan: rows stored contiguously, Search
// computes the declared metric against every row. IsExact is always true
// for this family.
type FlatIndex struct {
	dim    int
	metric core.Metric
	rows   []float32 // len == count*dim
}

// Count implements Index.
func (f *FlatIndex) Count() int {
	if f.dim == 0 {
		return 0
	}
	return len(f.rows) / f.dim
}

// NewScratch returns an empty FlatIndex suitable for pooled reuse as
// transient scratch storage (searcher refine/tail-scan steps).
func NewScratch() *FlatIndex {
	return &FlatIndex{}
}

// Reset reinitializes f for a new dim/metric, dropping previously loaded
// rows but keeping the backing array's capacity for reuse.
func (f *FlatIndex) Reset(dim int, metric core.Metric) {
	f.dim = dim
	f.metric = metric
	f.rows = f.rows[:0]
}

type flatKernel struct{}

func (flatKernel) Factory(dim int, indexKey string, metric core.Metric) (Index, error) {
	if dim <= 0 {
		return nil, core.NewInvalidArgumentError("dim", "must be positive")
	}
	if !metric.Valid() {
		return nil, core.NewInvalidArgumentError("metric", "must be 0 or 1")
	}
	return &FlatIndex{dim: dim, metric: metric}, nil
}

// Train is a no-op: the Flat family needs no training pass.
func (flatKernel) Train(idx Index, nt int, x []float32) error { return nil }

func (flatKernel) Add(idx Index, nb int, x []float32) error {
	f := idx.(*FlatIndex)
	f.rows = append(f.rows, x[:nb*f.dim]...)
	return nil
}

func (flatKernel) Search(idx Index, nq int, q []float32, k int) ([]float32, []int64) {
	f := idx.(*FlatIndex)
	distances := make([]float32, nq*k)
	ids := make([]int64, nq*k)
	n := f.Count()

	// worse(a,b) means a ranks behind b under the active metric.
	worse := func(a, b float32) bool { return f.metric.Better(b, a) }

	for qi := 0; qi < nq; qi++ {
		query := q[qi*f.dim : (qi+1)*f.dim]
		h := newTopKHeap(k, worse)
		for row := 0; row < n; row++ {
			vec := f.rows[row*f.dim : (row+1)*f.dim]
			d := distance(f.metric, query, vec)
			h.Offer(candidate{id: int64(row), dist: d})
		}
		sorted := h.Sorted()
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

func (flatKernel) Write(idx Index, path string) error {
	f := idx.(*FlatIndex)
	file, err := os.Create(path)
	if err != nil {
		return core.NewIOError("write-index", path, err)
	}
	defer func() { _ = file.Close() }()

	w := bufio.NewWriter(file)
	header := make([]byte, 16)
	binary.LittleEndian.PutUint64(header[0:8], uint64(f.dim))
	binary.LittleEndian.PutUint64(header[8:16], uint64(f.metric))
	if _, err := w.Write(header); err != nil {
		return core.NewIOError("write-index", path, err)
	}
	buf := make([]byte, 4)
	for _, v := range f.rows {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		if _, err := w.Write(buf); err != nil {
			return core.NewIOError("write-index", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return core.NewIOError("write-index", path, err)
	}
	return nil
}

func (flatKernel) Read(dim int, indexKey string, metric core.Metric, path string) (Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewIOError("read-index", path, err)
	}
	if len(data) < 16 {
		return nil, core.NewIOError("read-index", path, os.ErrInvalid)
	}
	fileDim := int(binary.LittleEndian.Uint64(data[0:8]))
	fileMetric := core.Metric(binary.LittleEndian.Uint64(data[8:16]))
	rows := make([]float32, (len(data)-16)/4)
	for i := range rows {
		off := 16 + i*4
		rows[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
	}
	return &FlatIndex{dim: fileDim, metric: fileMetric, rows: rows}, nil
}

func (flatKernel) IsExact(idx Index) bool { return true }

// Configure is a no-op: the exact scan has no query-time tuning knobs.
func (flatKernel) Configure(idx Index, queryParams string) error { return nil }

// distance computes the declared metric between two equal-length vectors.
func distance(metric core.Metric, a, b []float32) float32 {
	if metric == core.MetricInnerProduct {
		var sum float32
		for i := range a {
			sum += a[i] * b[i]
		}
		return sum
	}
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
