package kernel

// candidate is one scored row in a top-k scan.
type candidate struct {
	id   int64
	dist float32
}

// topKHeap is a fixed-capacity heap that keeps the k best candidates seen so
// far under a metric-aware ordering. Its root is always the worst candidate
// currently kept, so a new candidate only needs one comparison against the
// root to know whether it displaces anything. The worst-at-root ordering is
// metric-parameterized so the same structure serves both inner-product
// (higher is better) and L2 (lower is better) scans.
type topKHeap struct {
	items []candidate
	k     int
	// worse reports whether a ranks behind b under the active metric.
	worse func(a, b float32) bool
}

func newTopKHeap(k int, worse func(a, b float32) bool) *topKHeap {
	return &topKHeap{items: make([]candidate, 0, k), k: k, worse: worse}
}

// Offer considers c for inclusion in the top-k set.
func (h *topKHeap) Offer(c candidate) {
	if len(h.items) < h.k {
		h.items = append(h.items, c)
		h.up(len(h.items) - 1)
		return
	}
	if len(h.items) == 0 {
		return
	}
	// Root is the current worst; only replace it if c ranks ahead of it.
	if h.worse(h.items[0].dist, c.dist) {
		h.items[0] = c
		h.down(0)
	}
}

// Sorted drains the heap into a best-first slice. k is small (<=100), so a
// plain selection sort is cheap and avoids pulling in container/heap for a
// one-shot drain.
func (h *topKHeap) Sorted() []candidate {
	out := make([]candidate, len(h.items))
	copy(out, h.items)
	n := len(out)
	for i := 0; i < n; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if h.worse(out[best].dist, out[j].dist) {
				best = j
			}
		}
		out[i], out[best] = out[best], out[i]
	}
	return out
}

// heap helpers maintain the invariant: items[0] is the worst of the kept set.

func (h *topKHeap) worseAt(i, j int) bool {
	return h.worse(h.items[i].dist, h.items[j].dist)
}

func (h *topKHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		// Root must be the worst: if child is worse than parent, swap it up.
		if h.worseAt(i, parent) {
			h.items[i], h.items[parent] = h.items[parent], h.items[i]
			i = parent
			continue
		}
		break
	}
}

func (h *topKHeap) down(i int) {
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		worst := i
		if left < n && h.worseAt(left, worst) {
			worst = left
		}
		if right < n && h.worseAt(right, worst) {
			worst = right
		}
		if worst == i {
			break
		}
		h.items[i], h.items[worst] = h.items[worst], h.items[i]
		i = worst
	}
}
