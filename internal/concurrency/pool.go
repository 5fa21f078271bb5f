// Package concurrency holds small generic concurrency primitives shared
// across the database. ConcurrentPool holds several sync.Pool shards and
// picks one by GOMAXPROCS; since GOMAXPROCS is the same for every caller,
// all Get/Put traffic goes to a single shard.
package concurrency

import (
	"runtime"
	"sync"
)

// ConcurrentPool is a sharded object pool for type T.
type ConcurrentPool[T any] struct {
	pools []*sync.Pool
}

// NewConcurrentPool creates a pool with numPools independent shards, each
// calling newFn to construct a fresh T on a miss.
func NewConcurrentPool[T any](numPools int, newFn func() T) *ConcurrentPool[T] {
	if numPools < 1 {
		numPools = 1
	}
	pools := make([]*sync.Pool, numPools)
	for i := range pools {
		pools[i] = &sync.Pool{New: func() any { return newFn() }}
	}
	return &ConcurrentPool[T]{pools: pools}
}

func (cp *ConcurrentPool[T]) shard() int {
	return runtime.GOMAXPROCS(0) % len(cp.pools)
}

// Get returns a pooled T, calling newFn if the shard is empty.
func (cp *ConcurrentPool[T]) Get() T {
	return cp.pools[cp.shard()].Get().(T)
}

// Put returns item to the pool for reuse.
func (cp *ConcurrentPool[T]) Put(item T) {
	cp.pools[cp.shard()].Put(item)
}
