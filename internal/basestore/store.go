// Package basestore implements the append-only on-disk vector log and its
// in-memory mirror described by the database's data model: a contiguous
// base.fvecs file of fixed-width (id, vector) records, mirrored in memory as
// a flat float32 slice plus a parallel id slice and an id->row index.
//
// Open creates the directory and loads the mirror; Append is mutually
// exclusive with Open and with itself, and readers take the shared side of
// the lock.
package basestore

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/23skdu/annvdb/internal/core"
	"github.com/23skdu/annvdb/internal/metrics"
)

// FileName is the name of the append-only base file within a working directory.
const FileName = "base.fvecs"

// RecordSize returns the byte size of one (id, vector) record for the given dimension.
func RecordSize(dim int) int64 {
	return 8 + 4*int64(dim)
}

// Store is the append-only base file plus its in-memory mirror. All exported
// methods are safe for concurrent use; Append and Open are mutually exclusive
// with each other, readers (Size, SnapshotPtr) take the shared side of mu.
type Store struct {
	dir  string
	dim  int
	path string

	mu      sync.RWMutex
	file    *os.File
	base    []float32
	uids    []int64
	uid2num map[int64]int
}

// Open creates dir if absent, creates base.fvecs if absent, and loads every
// existing record into the in-memory mirror. It fails with
// core.ErrBaseLengthMismatch if the file size is not a whole multiple of the
// record length.
func Open(dir string, dim int) (*Store, error) {
	if dim <= 0 {
		return nil, core.NewInvalidArgumentError("dim", "must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, core.NewIOError("mkdir", dir, err)
	}

	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, core.NewIOError("open", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, core.NewIOError("stat", path, err)
	}

	recSize := RecordSize(dim)
	size := info.Size()
	if size%recSize != 0 {
		_ = f.Close()
		return nil, core.NewBaseLengthMismatchError(path, size, recSize)
	}

	n := int(size / recSize)
	s := &Store{
		dir:     dir,
		dim:     dim,
		path:    path,
		file:    f,
		base:    make([]float32, 0, n*dim),
		uids:    make([]int64, 0, n),
		uid2num: make(map[int64]int, n),
	}

	if n > 0 {
		buf := make([]byte, size)
		if _, err := f.ReadAt(buf, 0); err != nil {
			_ = f.Close()
			return nil, core.NewIOError("read", path, err)
		}
		for i := 0; i < n; i++ {
			off := int64(i) * recSize
			id := int64(binary.LittleEndian.Uint64(buf[off : off+8]))
			s.uids = append(s.uids, id)
			s.uid2num[id] = i
			vecOff := off + 8
			for j := 0; j < dim; j++ {
				bits := binary.LittleEndian.Uint32(buf[vecOff+int64(j)*4 : vecOff+int64(j)*4+4])
				s.base = append(s.base, math.Float32frombits(bits))
			}
		}
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		_ = f.Close()
		return nil, core.NewIOError("seek", path, err)
	}

	metrics.BaseStoreSize.Set(float64(n))
	return s, nil
}

// Append serializes nb records to a contiguous buffer, writes it in a single
// I/O to the base file, then extends the in-memory mirror. nb == 0 is a no-op.
func (s *Store) Append(ids []int64, xb []float32) error {
	nb := len(ids)
	if nb == 0 {
		return nil
	}
	if len(xb) != nb*s.dim {
		return core.NewInvalidArgumentError("xb", fmt.Sprintf("expected %d floats for %d ids at dim %d, got %d", nb*s.dim, nb, s.dim, len(xb)))
	}

	recSize := RecordSize(s.dim)
	buf := make([]byte, recSize*int64(nb))
	for i := 0; i < nb; i++ {
		off := int64(i) * recSize
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(ids[i]))
		vecOff := off + 8
		for j := 0; j < s.dim; j++ {
			binary.LittleEndian.PutUint32(buf[vecOff+int64(j)*4:vecOff+int64(j)*4+4], math.Float32bits(xb[i*s.dim+j]))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(buf); err != nil {
		return core.NewIOError("append", s.path, err)
	}

	start := len(s.uids)
	s.base = append(s.base, xb...)
	s.uids = append(s.uids, ids...)
	for i, id := range ids {
		s.uid2num[id] = start + i
	}

	metrics.BaseStoreSize.Set(float64(len(s.uids)))
	return nil
}

// Size returns N, the number of rows currently mirrored.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.uids)
}

// Dim returns the fixed vector dimension this store was opened with.
func (s *Store) Dim() int { return s.dim }

// Stats returns N (row count) and the on-disk size of the base file implied
// by N whole records.
func (s *Store) Stats() (n int, bytes int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.uids), RecordSize(s.dim) * int64(len(s.uids))
}

// Snapshot is a read-only, point-in-time view of the base mirror: N rows
// starting at the given offset. Data is a slice of the live backing array;
// callers must not mutate it, and must not retain it past a subsequent
// Append (which may grow, but never reallocates in place under the lock the
// snapshot was taken with — see SnapshotPtr for the locking contract).
type Snapshot struct {
	Offset int
	N      int
	Dim    int
	Data   []float32
	IDs    []int64
}

// SnapshotPtr returns base[offset*dim : N*dim) and the current N, taken
// under the store's read lock. The lock is released before returning; the
// returned slices stay readable afterwards because Append only writes past
// their length or into a new backing array.
func (s *Store) SnapshotPtr(offset int) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.uids)
	return Snapshot{
		Offset: offset,
		N:      n,
		Dim:    s.dim,
		Data:   s.base[offset*s.dim : n*s.dim],
		IDs:    s.uids[offset:n],
	}
}

// UidToRow returns the row index of the latest occurrence of id, if any.
func (s *Store) UidToRow(id int64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.uid2num[id]
	return row, ok
}

// UidAt returns the external id stored at the given row index, if any.
func (s *Store) UidAt(row int64) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if row < 0 || int(row) >= len(s.uids) {
		return 0, false
	}
	return s.uids[row], true
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return core.NewIOError("close", s.path, err)
	}
	return nil
}
