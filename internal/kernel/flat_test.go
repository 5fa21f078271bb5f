package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/annvdb/internal/core"
)

func TestFlatKernelExactL2(t *testing.T) {
	k := Default(FlatKey)
	idx, err := k.Factory(2, FlatKey, core.MetricL2)
	require.NoError(t, err)

	require.NoError(t, k.Add(idx, 3, []float32{0, 0, 1, 1, 10, 10}))
	assert.Equal(t, 3, idx.Count())
	assert.True(t, k.IsExact(idx))

	dist, ids := k.Search(idx, 1, []float32{0, 0}, 2)
	require.Len(t, ids, 2)
	assert.Equal(t, int64(0), ids[0])
	assert.Equal(t, float32(0), dist[0])
	assert.Equal(t, int64(1), ids[1])
}

func TestFlatKernelExactInnerProduct(t *testing.T) {
	k := Default(FlatKey)
	idx, err := k.Factory(2, FlatKey, core.MetricInnerProduct)
	require.NoError(t, err)

	require.NoError(t, k.Add(idx, 2, []float32{1, 0, 2, 0}))
	dist, ids := k.Search(idx, 1, []float32{1, 0}, 1)
	require.Len(t, ids, 1)
	assert.Equal(t, int64(1), ids[0])
	assert.Equal(t, float32(2), dist[0])
}

func TestFlatKernelWriteRead(t *testing.T) {
	k := Default(FlatKey)
	idx, err := k.Factory(3, FlatKey, core.MetricL2)
	require.NoError(t, err)
	require.NoError(t, k.Add(idx, 2, []float32{1, 2, 3, 4, 5, 6}))

	path := t.TempDir() + "/flat.index"
	require.NoError(t, k.Write(idx, path))

	idx2, err := k.Read(3, FlatKey, core.MetricL2, path)
	require.NoError(t, err)
	assert.Equal(t, 2, idx2.Count())

	_, ids := k.Search(idx2, 1, []float32{1, 2, 3}, 1)
	assert.Equal(t, int64(0), ids[0])
}

func TestFlatScratchReset(t *testing.T) {
	f := NewScratch()
	f.Reset(2, core.MetricL2)
	k := Default(FlatKey)
	require.NoError(t, k.Add(f, 1, []float32{1, 1}))
	assert.Equal(t, 1, f.Count())

	f.Reset(2, core.MetricInnerProduct)
	assert.Equal(t, 0, f.Count())
}
