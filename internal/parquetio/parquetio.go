// Package parquetio serializes (id, vector) rows to and from Parquet files,
// giving the base store a portable interchange format alongside its private
// binary layout. A single parquet writer per file guarantees one footer.
package parquetio

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/23skdu/annvdb/internal/core"
	"github.com/23skdu/annvdb/internal/metrics"
)

// VectorRecord represents a single row for Parquet serialization.
type VectorRecord struct {
	ID     int64     `parquet:"id"`
	Vector []float32 `parquet:"vector"`
}

// writeBatchSize bounds the per-Write row buffer so large exports stream
// instead of materializing every record at once.
const writeBatchSize = 4096

// WriteVectors writes n rows (ids parallel to x, dim floats per row) to w as
// Zstd-compressed Parquet.
func WriteVectors(w io.Writer, ids []int64, x []float32, dim int) error {
	if dim <= 0 {
		return core.NewInvalidArgumentError("dim", "must be positive")
	}
	if len(x) != len(ids)*dim {
		return core.NewInvalidArgumentError("x", "length must be len(ids)*dim")
	}

	start := time.Now()
	pw := parquet.NewGenericWriter[VectorRecord](w, parquet.Compression(&parquet.Zstd))

	batch := make([]VectorRecord, 0, writeBatchSize)
	for i := range ids {
		batch = append(batch, VectorRecord{
			ID:     ids[i],
			Vector: x[i*dim : (i+1)*dim],
		})
		if len(batch) == writeBatchSize {
			if _, err := pw.Write(batch); err != nil {
				_ = pw.Close()
				return err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if _, err := pw.Write(batch); err != nil {
			_ = pw.Close()
			return err
		}
	}

	if err := pw.Close(); err != nil {
		return err
	}
	metrics.ParquetExportDuration.Observe(time.Since(start).Seconds())
	return nil
}

// WriteVectorsFile is WriteVectors against a freshly created file at path.
// The file is removed on error so a failed export leaves nothing behind.
func WriteVectorsFile(path string, ids []int64, x []float32, dim int) error {
	f, err := os.Create(path)
	if err != nil {
		return core.NewIOError("create", path, err)
	}
	if err := WriteVectors(f, ids, x, dim); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return core.NewIOError("close", path, err)
	}
	return nil
}

// ReadVectorsFile reads every row from the Parquet file at path, returning
// the ids and the flattened vectors. Every row must carry exactly dim values.
func ReadVectorsFile(path string, dim int) ([]int64, []float32, error) {
	if dim <= 0 {
		return nil, nil, core.NewInvalidArgumentError("dim", "must be positive")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, core.NewIOError("open", path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, core.NewIOError("stat", path, err)
	}

	start := time.Now()
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, nil, core.NewIOError("read-parquet", path, err)
	}

	pr := parquet.NewGenericReader[VectorRecord](pf)
	defer func() { _ = pr.Close() }()

	rows := make([]VectorRecord, pr.NumRows())
	if _, err := pr.Read(rows); err != nil && err != io.EOF {
		return nil, nil, core.NewIOError("read-parquet", path, err)
	}

	ids := make([]int64, 0, len(rows))
	x := make([]float32, 0, len(rows)*dim)
	for i, row := range rows {
		if len(row.Vector) != dim {
			return nil, nil, core.NewInvalidArgumentError("vector",
				"row "+strconv.Itoa(i)+" has "+strconv.Itoa(len(row.Vector))+" values, want "+strconv.Itoa(dim))
		}
		ids = append(ids, row.ID)
		x = append(x, row.Vector...)
	}
	metrics.ParquetImportDuration.Observe(time.Since(start).Seconds())
	return ids, x, nil
}
