package extract

import (
	"container/heap"

	"github.com/matzehuels/eclass/pkg/egraph"
)

// candidate is the current best (cost, witness node) for one class.
type candidate struct {
	class egraph.ClassID
	node  egraph.NodeID
	cost  egraph.Cost
	index int // position in the heap, maintained by candidateHeap
}

// candidateHeap is a min-heap of candidates ordered by cost. It tracks each
// element's index so entries can be updated in place.
type candidateHeap []*candidate

func (h candidateHeap) Len() int           { return len(h) }
func (h candidateHeap) Less(i, j int) bool { return h[i].cost < h[j].cost }

func (h candidateHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *candidateHeap) Push(x any) {
	c := x.(*candidate)
	c.index = len(*h)
	*h = append(*h, c)
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	c.index = -1
	*h = old[:n-1]
	return c
}

// frontier is an addressable priority queue with at most one entry per class.
// Improving a class's candidate is a decrease-key on its existing entry, so
// the queue never holds stale duplicates.
type frontier struct {
	heap    candidateHeap
	byClass map[egraph.ClassID]*candidate
}

func newFrontier(capacity int) *frontier {
	return &frontier{
		heap:    make(candidateHeap, 0, capacity),
		byClass: make(map[egraph.ClassID]*candidate, capacity),
	}
}

func (f *frontier) Len() int { return f.heap.Len() }

// init establishes the heap invariant after a batch of seed calls.
func (f *frontier) init() { heap.Init(&f.heap) }

// seed appends an entry without restoring heap order; call init afterwards.
func (f *frontier) seed(class egraph.ClassID, node egraph.NodeID, cost egraph.Cost) {
	c := &candidate{class: class, node: node, cost: cost, index: len(f.heap)}
	f.heap = append(f.heap, c)
	f.byClass[class] = c
}

// lookup returns the entry for class, if queued.
func (f *frontier) lookup(class egraph.ClassID) (*candidate, bool) {
	c, ok := f.byClass[class]
	return c, ok
}

// offer proposes (cost, node) for class. A missing entry is inserted; an
// existing one is replaced only when cost is strictly lower. It reports
// whether the frontier changed.
func (f *frontier) offer(class egraph.ClassID, node egraph.NodeID, cost egraph.Cost) bool {
	if c, ok := f.byClass[class]; ok {
		if cost >= c.cost {
			return false
		}
		c.cost = cost
		c.node = node
		heap.Fix(&f.heap, c.index)
		return true
	}
	c := &candidate{class: class, node: node, cost: cost}
	heap.Push(&f.heap, c)
	f.byClass[class] = c
	return true
}

// popMin removes and returns the cheapest entry.
func (f *frontier) popMin() (*candidate, bool) {
	if f.heap.Len() == 0 {
		return nil, false
	}
	c := heap.Pop(&f.heap).(*candidate)
	delete(f.byClass, c.class)
	return c, true
}
