// Package indexfile enumerates, names, and garbage-collects the persisted
// ANN index files in a database's working directory: one file per index
// key, named <index_key>.<ntrain>.index.
package indexfile

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/23skdu/annvdb/internal/core"
	"github.com/23skdu/annvdb/internal/metrics"
)

// Suffix is the extension every persisted index file carries.
const Suffix = ".index"

// Registry names and discovers index files within one working directory.
type Registry struct {
	dir string
}

// New returns a Registry rooted at dir.
func New(dir string) *Registry {
	return &Registry{dir: dir}
}

// PathFor returns the deterministic path dir/indexKey.ntrain.index.
func (r *Registry) PathFor(indexKey string, ntrain int) string {
	return filepath.Join(r.dir, indexKey+"."+strconv.Itoa(ntrain)+Suffix)
}

// DiscoverLatest scans dir for regular files named indexKey.<ntrain>.index
// and returns the maximum ntrain found, or 0 if none exist.
func (r *Registry) DiscoverLatest(indexKey string) (int, error) {
	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, core.NewIOError("readdir", r.dir, err)
	}

	prefix := indexKey + "."
	best := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, Suffix) {
			continue
		}
		mid := name[len(prefix) : len(name)-len(Suffix)]
		nt, err := strconv.Atoi(mid)
		if err != nil {
			continue
		}
		if nt > best {
			best = nt
		}
	}
	return best, nil
}

// RemoveStale deletes the file previously persisted for indexKey at
// ntrainOld, if ntrainOld != 0. Used by Activate once the new file has been
// written, before state swaps.
func (r *Registry) RemoveStale(indexKey string, ntrainOld int) error {
	if ntrainOld == 0 {
		return nil
	}
	path := r.PathFor(indexKey, ntrainOld)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return core.NewIOError("remove", path, err)
	}
	metrics.RegistryGCTotal.Inc()
	return nil
}

// Clear removes base.fvecs and every *.index file in dir. Requires that no
// DB is open on dir.
func Clear(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return core.NewIOError("readdir", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == "base.fvecs" || strings.HasSuffix(name, Suffix) {
			path := filepath.Join(dir, name)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return core.NewIOError("remove", path, err)
			}
		}
	}
	return nil
}
