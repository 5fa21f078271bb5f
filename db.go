// Package annvdb is an embeddable ANN vector database for a single working
// directory. The DB facade coordinates the base store, the active index
// state, the builder, and the searcher behind the four top-level operations
// (AddWithIds, TryBuildIndex/BuildIndex, ActivateIndex, Search). Open builds
// the struct, then discovers and loads the newest persisted index before
// returning a ready *DB.
package annvdb

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/23skdu/annvdb/internal/basestore"
	"github.com/23skdu/annvdb/internal/builder"
	"github.com/23skdu/annvdb/internal/core"
	"github.com/23skdu/annvdb/internal/indexfile"
	"github.com/23skdu/annvdb/internal/indexstate"
	"github.com/23skdu/annvdb/internal/kernel"
	"github.com/23skdu/annvdb/internal/logging"
	"github.com/23skdu/annvdb/internal/metrics"
	"github.com/23skdu/annvdb/internal/searcher"
)

// Metric re-exports core.Metric so callers never need to import internal/core.
type Metric = core.Metric

const (
	MetricInnerProduct = core.MetricInnerProduct
	MetricL2           = core.MetricL2
)

// Candidate is an unactivated (index, ntrain) pair produced by BuildIndex/TryBuildIndex.
type Candidate = builder.Candidate

// Option configures optional facade behavior at Open time.
type Option func(*DB)

// WithLogger overrides the facade's zap logger (default: a discard logger).
func WithLogger(logger *zap.Logger) Option {
	return func(db *DB) { db.logger = logger }
}

// DB is the open handle on one working directory's ANN database. The zero
// value is not usable; construct with Open.
type DB struct {
	dir         string
	dim         int
	metric      core.Metric
	indexKey    string
	queryParams string

	base     *basestore.Store
	kernel   kernel.Kernel
	registry *indexfile.Registry
	builder  *builder.Builder
	searcher *searcher.Searcher
	state    *indexstate.Holder

	// mu serializes AddWithIds with ActivateIndex; Open runs before mu is
	// ever shared. Searches never take it.
	mu sync.Mutex

	logger *zap.Logger
}

// Open opens (creating if absent) the database rooted at workDir. dim must
// be positive and metric must be one of MetricInnerProduct/MetricL2.
// indexKey is an opaque kernel factory string ("Flat" selects the exact
// family); queryParams is an opaque tuning string passed through to the
// kernel on every (re)train.
func Open(workDir string, dim int, metric core.Metric, indexKey, queryParams string, opts ...Option) (*DB, error) {
	if !metric.Valid() {
		return nil, core.NewInvalidArgumentError("metric", "must be 0 or 1")
	}

	base, err := basestore.Open(workDir, dim)
	if err != nil {
		return nil, err
	}

	k := kernel.Default(indexKey)
	reg := indexfile.New(workDir)

	db := &DB{
		dir:         workDir,
		dim:         dim,
		metric:      metric,
		indexKey:    indexKey,
		queryParams: queryParams,
		base:        base,
		kernel:      k,
		registry:    reg,
		builder:     builder.New(k, reg, indexKey, metric, queryParams),
		searcher:    searcher.New(k, metric),
		logger:      logging.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(db)
	}

	state, err := db.initialState()
	if err != nil {
		_ = base.Close()
		return nil, err
	}
	db.state = indexstate.NewHolder(state)

	db.logger.Info("annvdb opened",
		zap.String("dir", workDir),
		zap.Int("dim", dim),
		zap.String("index_key", indexKey),
		zap.Int("n", base.Size()),
		zap.Int("ntrain", state.NTrain),
	)
	return db, nil
}

// initialState resolves the index to start with: the newest persisted file
// if its ntrain is no larger than the base's row count, a fresh fully-loaded exact
// index for the Flat family, or no index at all.
func (db *DB) initialState() (*indexstate.State, error) {
	n := db.base.Size()
	ntrainDisk, err := db.registry.DiscoverLatest(db.indexKey)
	if err != nil {
		return nil, err
	}

	if n >= ntrainDisk && ntrainDisk > 0 {
		path := db.registry.PathFor(db.indexKey, ntrainDisk)
		idx, err := db.kernel.Read(db.dim, db.indexKey, db.metric, path)
		if err != nil {
			return nil, core.NewKernelError("read", err)
		}
		return &indexstate.State{Index: idx, NTrain: ntrainDisk}, nil
	}

	if db.indexKey == kernel.FlatKey {
		idx, err := db.kernel.Factory(db.dim, db.indexKey, db.metric)
		if err != nil {
			return nil, core.NewKernelError("factory", err)
		}
		snap := db.base.SnapshotPtr(0)
		if snap.N > 0 {
			if err := db.kernel.Add(idx, snap.N, snap.Data); err != nil {
				return nil, core.NewKernelError("add", err)
			}
		}
		return &indexstate.State{Index: idx, NTrain: 0}, nil
	}

	return &indexstate.State{Index: nil, NTrain: 0}, nil
}

// AddWithIds appends nb vectors to the base store. nb == 0 is a no-op.
func (db *DB) AddWithIds(ids []int64, xb []float32) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	start := time.Now()
	err := db.base.Append(ids, xb)
	metrics.BaseStoreAppendDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		db.logger.Error("append failed", zap.Error(err))
	}
	return err
}

// BuildIndex unconditionally runs Builder.Build against a snapshot of the
// current base and active state, without mutating either. The returned
// Candidate is not live until passed to ActivateIndex.
func (db *DB) BuildIndex() (*Candidate, error) {
	current := db.state.Load()
	return db.builder.Build(db.base, current)
}

// TryBuildIndex runs BuildIndex only if the untrained tail exceeds
// exhaustThreshold rows; otherwise it returns a no-op Candidate with no
// kernel work performed. Intended for a caller's periodic maintenance loop.
func (db *DB) TryBuildIndex(exhaustThreshold int) (*Candidate, error) {
	current := db.state.Load()
	return db.builder.TryBuild(exhaustThreshold, db.base, current)
}

// ActivateIndex atomically swaps the active index to cand, persisting it to
// disk first (for non-Flat families) so a crash between write and swap is
// recoverable on the next Open. A nil Candidate or one with a nil Index is
// a no-op, matching Builder's "nothing to do" result.
func (db *DB) ActivateIndex(cand *Candidate) error {
	if cand == nil || cand.Index == nil {
		return nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	current := db.state.Load()

	if db.indexKey != kernel.FlatKey {
		path := db.registry.PathFor(db.indexKey, cand.NTrain)
		if err := db.kernel.Write(cand.Index, path); err != nil {
			_ = os.Remove(path)
			wrapped := core.NewKernelError("write", err)
			db.logger.Error("activate failed", zap.Error(wrapped))
			return wrapped
		}
		// When ntrain is unchanged (tail-only rebuild), the write above already
		// replaced the old file in place; removing it here would delete the
		// index just persisted.
		if current.NTrain != 0 && current.NTrain != cand.NTrain {
			if err := db.registry.RemoveStale(db.indexKey, current.NTrain); err != nil {
				_ = os.Remove(path)
				db.logger.Error("stale index cleanup failed", zap.Error(err))
				return err
			}
		}
	}

	db.state.Swap(&indexstate.State{Index: cand.Index, NTrain: cand.NTrain})
	metrics.IndexActivationsTotal.Inc()
	db.logger.Info("index activated", zap.Int("ntrain", cand.NTrain), zap.Int("ntotal", cand.Index.Count()))
	return nil
}

// Search runs nq queries against the active index plus the flat tail,
// returning one fused (distance, id) per query. ids are row indices into
// the base store, not caller-supplied external ids; use RowToUid to map a
// returned id back to its external id.
func (db *DB) Search(nq int, xq []float32) ([]float32, []int64, error) {
	return db.searcher.Search(db.base, db.state.Load(), nq, xq)
}

// RowToUid maps a row index (as returned by Search) back to the external id
// that was passed to AddWithIds for that row, if any such row exists.
func (db *DB) RowToUid(row int64) (int64, bool) {
	return db.base.UidAt(row)
}

// Dim returns the fixed vector dimension this database was opened with.
func (db *DB) Dim() int { return db.dim }

// Size returns N, the number of rows currently mirrored by the base store.
func (db *DB) Size() int { return db.base.Size() }

// Stats returns N, the active index's ntrain/ntotal, and the flat-tail size
// (N - ntotal), for the CLI's status subcommand.
func (db *DB) Stats() (n, ntrain, ntotal, tail int) {
	state := db.state.Load()
	n = db.base.Size()
	ntrain = state.NTrain
	ntotal = state.NTotal()
	return n, ntrain, ntotal, n - ntotal
}

// Close releases the underlying base file handle.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.base.Close()
}

// ClearWorkDir removes base.fvecs and every persisted index file under
// path. Requires that no DB is currently open on path.
func ClearWorkDir(path string) error {
	return indexfile.Clear(path)
}
