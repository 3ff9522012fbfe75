package extract

import (
	"fmt"

	"github.com/matzehuels/eclass/pkg/egraph"
)

// Dijkstra extracts a minimum-cost term by settling classes in increasing
// cost order. It generalizes Dijkstra's shortest-path algorithm to the
// hypergraph formed by e-nodes: a node's cost is only known once every one of
// its child classes has settled, so each node carries a counter of distinct
// unsettled child classes and is priced exactly once, when that counter
// reaches zero.
//
// Every class is settled, including classes no root can reach. A class that
// never receives a finite candidate settles at [egraph.Infinity].
//
// Complexity:
//
//   - Time:  O((N + R) + C log C), with N nodes, R child references, C classes
//   - Space: O(N + C)
type Dijkstra struct{}

// Extract runs the extraction. roots are not consulted by the algorithm; they
// are accepted so that every [Extractor] shares one signature.
func (Dijkstra) Extract(g *egraph.Graph, _ []egraph.ClassID, parents *egraph.Parents) *Result {
	r := newRunner(g, parents)
	r.init()
	r.process()
	return r.result
}

// runner holds the mutable state of a single extraction. Nothing in it
// outlives one Extract call.
type runner struct {
	g       *egraph.Graph
	parents *egraph.Parents
	result  *Result
	pending map[egraph.NodeID]int
	queue   *frontier

	// Test hooks; nil in production.
	onSettle func(c *candidate)
	onReady  func(node egraph.NodeID, cost egraph.Cost)
}

func newRunner(g *egraph.Graph, parents *egraph.Parents) *runner {
	return &runner{
		g:       g,
		parents: parents,
		result:  NewResult(),
		pending: make(map[egraph.NodeID]int, g.NodeCount()),
		queue:   newFrontier(g.ClassCount()),
	}
}

// init seeds one frontier entry per class and the pending-children counters.
func (r *runner) init() {
	for _, class := range r.g.Classes() {
		node, cost := class.Nodes[0], egraph.Infinity
		for _, id := range class.Nodes {
			n := r.g.MustNode(id)
			if n.IsLeaf() && n.Cost < cost {
				node, cost = id, n.Cost
			}
		}
		r.queue.seed(class.ID, node, cost)
	}
	r.queue.init()

	r.parents.Each(func(_ egraph.ClassID, nodes []egraph.NodeID) {
		for _, n := range nodes {
			r.pending[n]++
		}
	})
}

// process pops the cheapest class until the frontier is empty. Each pop
// commits one class for good.
func (r *runner) process() {
	for {
		c, ok := r.queue.popMin()
		if !ok {
			return
		}
		r.result.settle(c.class, c.node, c.cost)
		if r.onSettle != nil {
			r.onSettle(c)
		}
		r.relax(c.class)
	}
}

// relax tells every node that references class that one more of its child
// classes is settled. Nodes whose last child just settled are priced and
// offered to their own class.
func (r *runner) relax(class egraph.ClassID) {
	for _, id := range r.parents.Of(class) {
		n := r.g.MustNode(id)
		if r.result.IsSettled(n.Class) {
			continue
		}

		left, ok := r.pending[id]
		if !ok || left <= 0 {
			panic(fmt.Sprintf("extract: node %s has no pending children left but was notified by %s", id, class))
		}
		left--
		r.pending[id] = left
		if left > 0 {
			continue
		}

		cost := r.readyCost(n)
		if r.onReady != nil {
			r.onReady(id, cost)
		}
		r.queue.offer(n.Class, id, cost)
	}
}

// readyCost prices a node whose children have all settled.
func (r *runner) readyCost(n *egraph.Node) egraph.Cost {
	for _, child := range n.Children {
		if !r.result.IsSettled(child) {
			panic(fmt.Sprintf("extract: node %s became ready before child %s settled", n.ID, child))
		}
	}
	return r.result.NodeSumCost(n)
}
