package parquetio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/annvdb/internal/core"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.parquet")

	ids := []int64{7, 8, 9}
	x := []float32{1, 2, 3, 4, 5, 6}
	require.NoError(t, WriteVectorsFile(path, ids, x, 2))

	gotIDs, gotX, err := ReadVectorsFile(path, 2)
	require.NoError(t, err)
	assert.Equal(t, ids, gotIDs)
	assert.Equal(t, x, gotX)
}

func TestWriteRejectsBadShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.parquet")

	err := WriteVectorsFile(path, []int64{1, 2}, []float32{1, 2, 3}, 2)
	var ei *core.ErrInvalidArgument
	require.ErrorAs(t, err, &ei)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "failed export must not leave a file behind")
}

func TestWriteRejectsNonPositiveDim(t *testing.T) {
	err := WriteVectorsFile(filepath.Join(t.TempDir(), "v.parquet"), nil, nil, 0)
	var ei *core.ErrInvalidArgument
	assert.ErrorAs(t, err, &ei)
}

func TestReadRejectsDimMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.parquet")
	require.NoError(t, WriteVectorsFile(path, []int64{1}, []float32{1, 2, 3}, 3))

	_, _, err := ReadVectorsFile(path, 4)
	var ei *core.ErrInvalidArgument
	assert.ErrorAs(t, err, &ei)
}

func TestReadMissingFile(t *testing.T) {
	_, _, err := ReadVectorsFile(filepath.Join(t.TempDir(), "absent.parquet"), 2)
	var eio *core.ErrIO
	assert.ErrorAs(t, err, &eio)
}

func TestRoundTripEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteVectorsFile(path, nil, nil, 4))

	ids, x, err := ReadVectorsFile(path, 4)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, x)
}
