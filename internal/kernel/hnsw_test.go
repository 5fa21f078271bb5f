package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/annvdb/internal/core"
)

func TestHNSWKernelAddAndSearch(t *testing.T) {
	k := Default("hnsw")
	idx, err := k.Factory(2, "hnsw", core.MetricL2)
	require.NoError(t, err)
	require.NoError(t, k.Train(idx, 0, nil))

	vecs := []float32{0, 0, 1, 1, 2, 2, 100, 100}
	require.NoError(t, k.Add(idx, 4, vecs))
	assert.Equal(t, 4, idx.Count())
	assert.False(t, k.IsExact(idx))

	_, ids := k.Search(idx, 1, []float32{0, 0}, 2)
	require.Len(t, ids, 2)
	assert.Contains(t, ids, int64(0))
}

func TestHNSWKernelConfigure(t *testing.T) {
	k := Default("hnsw")
	idx, err := k.Factory(4, "hnsw", core.MetricInnerProduct)
	require.NoError(t, err)

	require.NoError(t, k.Configure(idx, "m=32, efsearch=128, ml=0.5"))

	h := idx.(*HNSWIndex)
	assert.Equal(t, 32, h.graph.M)
	assert.Equal(t, 128, h.graph.EfSearch)
	assert.InDelta(t, 0.5, h.graph.Ml, 1e-9)
}

func TestHNSWKernelConfigureIgnoresGarbage(t *testing.T) {
	k := Default("hnsw")
	idx, err := k.Factory(4, "hnsw", core.MetricL2)
	require.NoError(t, err)
	assert.NoError(t, k.Configure(idx, "not-a-valid-pair;;;"))
}

func TestHNSWKernelWriteRead(t *testing.T) {
	k := Default("hnsw")
	idx, err := k.Factory(2, "hnsw", core.MetricL2)
	require.NoError(t, err)
	require.NoError(t, k.Add(idx, 3, []float32{0, 0, 1, 1, 2, 2}))

	path := t.TempDir() + "/graph.index"
	require.NoError(t, k.Write(idx, path))

	idx2, err := k.Read(2, "hnsw", core.MetricL2, path)
	require.NoError(t, err)
	assert.Equal(t, idx.Count(), idx2.Count())
}
