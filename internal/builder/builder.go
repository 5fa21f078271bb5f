// Package builder produces a new (index, ntrain) pair from the current base
// snapshot without mutating live state. All kernel work here runs outside
// any lock the DB facade holds; Builder takes a read-only snapshot of the
// base store up front and does the heavy work lock-free.
package builder

import (
	"time"

	"github.com/23skdu/annvdb/internal/basestore"
	"github.com/23skdu/annvdb/internal/core"
	"github.com/23skdu/annvdb/internal/indexfile"
	"github.com/23skdu/annvdb/internal/indexstate"
	"github.com/23skdu/annvdb/internal/kernel"
	"github.com/23skdu/annvdb/internal/metrics"
)

// MaxNTrain caps the training-set size for any rebuild.
const MaxNTrain = 160000

// FlatKey is the distinguished index_key that always produces a fresh exact
// index covering the whole base store.
const FlatKey = kernel.FlatKey

// Candidate is the (index, ntrain) pair a Build produces, not yet activated.
type Candidate struct {
	Index  kernel.Index
	NTrain int
}

// Builder holds everything needed to produce a Candidate without touching
// IndexState or BaseStore beyond a read-only snapshot.
type Builder struct {
	Kernel      kernel.Kernel
	Registry    *indexfile.Registry
	IndexKey    string
	Metric      core.Metric
	QueryParams string
}

// New returns a Builder for the given fixed per-database configuration.
func New(k kernel.Kernel, reg *indexfile.Registry, indexKey string, metric core.Metric, queryParams string) *Builder {
	return &Builder{Kernel: k, Registry: reg, IndexKey: indexKey, Metric: metric, QueryParams: queryParams}
}

func selectNTrain(n int) int {
	nt := n / 10
	if nt < MaxNTrain {
		nt = MaxNTrain
	}
	if nt > n {
		nt = n
	}
	return nt
}

// Build runs the rebuild policy against a point-in-time snapshot of base
// and the current active state. A nil Candidate.Index with no error means
// "nothing to do": the caller should not activate.
func (b *Builder) Build(base *basestore.Store, current *indexstate.State) (*Candidate, error) {
	start := time.Now()
	cand, err := b.build(base, current)
	metrics.IndexBuildLatency.Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
	case cand == nil || cand.Index == nil:
		metrics.IndexBuildsTotal.WithLabelValues("skipped").Inc()
	default:
		metrics.IndexBuildsTotal.WithLabelValues("built").Inc()
	}
	return cand, err
}

func (b *Builder) build(base *basestore.Store, current *indexstate.State) (*Candidate, error) {
	snap := base.SnapshotPtr(0)
	n := snap.N
	ntotalCurrent := current.NTotal()
	ntrainCurrent := current.NTrain

	if b.IndexKey == FlatKey {
		idx, err := b.Kernel.Factory(base.Dim(), b.IndexKey, b.Metric)
		if err != nil {
			return nil, core.NewKernelError("factory", err)
		}
		if err := b.Kernel.Add(idx, n, snap.Data); err != nil {
			return nil, core.NewKernelError("add", err)
		}
		return &Candidate{Index: idx, NTrain: 0}, nil
	}

	nt := selectNTrain(n)

	if nt == ntrainCurrent && n == ntotalCurrent {
		return &Candidate{Index: nil, NTrain: nt}, nil
	}

	if nt == ntrainCurrent && n > ntotalCurrent {
		path := b.Registry.PathFor(b.IndexKey, ntrainCurrent)
		idx, err := b.Kernel.Read(base.Dim(), b.IndexKey, b.Metric, path)
		if err != nil {
			return nil, core.NewKernelError("read", err)
		}
		tail := snap.Data[ntotalCurrent*snap.Dim : n*snap.Dim]
		if err := b.Kernel.Add(idx, n-ntotalCurrent, tail); err != nil {
			return nil, core.NewKernelError("add", err)
		}
		return &Candidate{Index: idx, NTrain: nt}, nil
	}

	idx, err := b.Kernel.Factory(base.Dim(), b.IndexKey, b.Metric)
	if err != nil {
		return nil, core.NewKernelError("factory", err)
	}
	if err := b.Kernel.Train(idx, nt, snap.Data[:nt*snap.Dim]); err != nil {
		return nil, core.NewKernelError("train", err)
	}
	if err := b.Kernel.Configure(idx, b.QueryParams); err != nil {
		return nil, core.NewKernelError("configure", err)
	}
	if err := b.Kernel.Add(idx, n, snap.Data); err != nil {
		return nil, core.NewKernelError("add", err)
	}
	return &Candidate{Index: idx, NTrain: nt}, nil
}

// TryBuild runs Build only if the untrained tail exceeds exhaustThreshold;
// otherwise it returns a no-op Candidate without touching the kernel.
func (b *Builder) TryBuild(exhaustThreshold int, base *basestore.Store, current *indexstate.State) (*Candidate, error) {
	n := base.Size()
	ntotalCurrent := current.NTotal()
	if n-ntotalCurrent <= exhaustThreshold {
		return &Candidate{Index: nil, NTrain: current.NTrain}, nil
	}
	return b.Build(base, current)
}
