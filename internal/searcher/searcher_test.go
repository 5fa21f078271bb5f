package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/annvdb/internal/basestore"
	"github.com/23skdu/annvdb/internal/core"
	"github.com/23skdu/annvdb/internal/indexstate"
	"github.com/23skdu/annvdb/internal/kernel"
)

func openStoreWith(t *testing.T, dim int, rows [][]float32) *basestore.Store {
	t.Helper()
	s, err := basestore.Open(t.TempDir(), dim)
	require.NoError(t, err)
	ids := make([]int64, len(rows))
	xb := make([]float32, 0, len(rows)*dim)
	for i, r := range rows {
		ids[i] = int64(i)
		xb = append(xb, r...)
	}
	require.NoError(t, s.Append(ids, xb))
	return s
}

func TestSearchNoIndexFallsBackToTail(t *testing.T) {
	s := openStoreWith(t, 2, [][]float32{{0, 0}, {1, 1}, {10, 10}})
	defer func() { _ = s.Close() }()

	srch := New(kernel.Default(kernel.FlatKey), core.MetricL2)
	dist, ids, err := srch.Search(s, &indexstate.State{}, 1, []float32{0, 0})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, int64(0), ids[0])
	assert.Equal(t, float32(0), dist[0])
}

func TestSearchWithActiveFlatIndexAndNoTail(t *testing.T) {
	dim := 2
	s := openStoreWith(t, dim, [][]float32{{0, 0}, {5, 5}})
	defer func() { _ = s.Close() }()

	k := kernel.Default(kernel.FlatKey)
	idx, err := k.Factory(dim, kernel.FlatKey, core.MetricL2)
	require.NoError(t, err)
	snap := s.SnapshotPtr(0)
	require.NoError(t, k.Add(idx, snap.N, snap.Data))

	state := &indexstate.State{Index: idx, NTrain: 0}
	srch := New(k, core.MetricL2)

	dist, ids, err := srch.Search(s, state, 1, []float32{5, 5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), ids[0])
	assert.Equal(t, float32(0), dist[0])
}

func TestSearchTailWinsOverStaleIndex(t *testing.T) {
	dim := 2
	s := openStoreWith(t, dim, [][]float32{{0, 0}, {1, 1}})
	defer func() { _ = s.Close() }()

	k := kernel.Default(kernel.FlatKey)
	idx, err := k.Factory(dim, kernel.FlatKey, core.MetricL2)
	require.NoError(t, err)
	snap := s.SnapshotPtr(0)
	require.NoError(t, k.Add(idx, snap.N, snap.Data))
	state := &indexstate.State{Index: idx, NTrain: 2}

	// A new row lands in the base store after the index was built; it only
	// exists in the flat tail.
	require.NoError(t, s.Append([]int64{2}, []float32{1000, 1000}))

	srch := New(k, core.MetricL2)
	dist, ids, err := srch.Search(s, state, 1, []float32{1000, 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(2), ids[0])
	assert.Equal(t, float32(0), dist[0])
}

func TestSearchRejectsBadInput(t *testing.T) {
	s := openStoreWith(t, 2, [][]float32{{0, 0}})
	defer func() { _ = s.Close() }()

	srch := New(kernel.Default(kernel.FlatKey), core.MetricL2)
	_, _, err := srch.Search(s, &indexstate.State{}, 0, nil)
	assert.Error(t, err)

	_, _, err = srch.Search(s, &indexstate.State{}, 1, []float32{1})
	assert.Error(t, err)
}
