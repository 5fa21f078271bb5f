package basestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/annvdb/internal/core"
)

func TestOpenEmptyCreatesFile(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 4)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.Equal(t, 0, s.Size())
	assert.Equal(t, 4, s.Dim())
}

func TestAppendAndSnapshot(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 2)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Append([]int64{10, 20}, []float32{1, 2, 3, 4}))
	assert.Equal(t, 2, s.Size())

	snap := s.SnapshotPtr(0)
	assert.Equal(t, 2, snap.N)
	assert.Equal(t, []float32{1, 2, 3, 4}, snap.Data)
	assert.Equal(t, []int64{10, 20}, snap.IDs)

	row, ok := s.UidToRow(20)
	require.True(t, ok)
	assert.Equal(t, 1, row)

	uid, ok := s.UidAt(0)
	require.True(t, ok)
	assert.Equal(t, int64(10), uid)

	_, ok = s.UidAt(5)
	assert.False(t, ok)
}

func TestAppendRejectsWrongLength(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 3)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	err = s.Append([]int64{1}, []float32{1, 2})
	require.Error(t, err)
	var invalid *core.ErrInvalidArgument
	assert.ErrorAs(t, err, &invalid)
}

func TestReopenRestoresMirror(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 2)
	require.NoError(t, err)
	require.NoError(t, s.Append([]int64{1, 2, 3}, []float32{1, 1, 2, 2, 3, 3}))
	require.NoError(t, s.Close())

	s2, err := Open(dir, 2)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	assert.Equal(t, 3, s2.Size())
	row, ok := s2.UidToRow(3)
	require.True(t, ok)
	assert.Equal(t, 2, row)

	n, bytes := s2.Stats()
	assert.Equal(t, 3, n)
	assert.Equal(t, RecordSize(2)*3, bytes)
}

func TestOpenRejectsTruncatedTail(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, 2)
	require.NoError(t, err)
	require.NoError(t, s.Append([]int64{1}, []float32{1, 2}))
	require.NoError(t, s.Close())

	// Truncate the file to cut one byte off the single record, simulating a
	// crash mid-write.
	path := filepath.Join(dir, FileName)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-1))

	_, err = Open(dir, 2)
	require.Error(t, err)
	var mismatch *core.ErrBaseLengthMismatch
	assert.ErrorAs(t, err, &mismatch)
}
