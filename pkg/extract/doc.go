// Package extract turns a saturated e-graph back into one concrete term.
//
// # Overview
//
// Extraction chooses exactly one node per class so that the chosen nodes form
// an acyclic term of minimum cost. The [Dijkstra] extractor does this by
// settling classes in increasing cost order, the way Dijkstra's algorithm
// settles vertices. The twist is that an e-node is a hyperedge: it can only be
// priced once every one of its child classes has settled. Each node keeps a
// counter of distinct child classes still unsettled and is priced exactly once,
// when the counter drops to zero.
//
// Classes sit in an addressable priority queue with one entry per class, so an
// improved candidate updates the existing entry instead of adding a duplicate.
//
// # Results
//
// A [Result] records the choice and settled cost of every class in commit
// order. It also answers the questions a caller asks afterwards:
//
//   - [Result.FindCycles]: classes revisited on a path through chosen nodes
//   - [Result.TreeCost]: cost with shared subterms paid once per use
//   - [Result.DagCost]: cost with every reachable class paid once
//   - [Result.UnreachableRoots]: roots that only settled at Infinity
//
// Because a node is only chosen after its children have settled, FindCycles is
// empty for every result produced by Dijkstra. A non-empty answer is a bug in
// the extractor, not a property of the input.
//
// # Usage
//
//	parents := egraph.ClassParents(g)
//	res := extract.Dijkstra{}.Extract(g, g.Roots(), parents)
//	if cycles := res.FindCycles(g, g.Roots()); len(cycles) > 0 {
//	    panic("extractor produced a cycle")
//	}
//	fmt.Println(res.DagCost(g, g.Roots()))
//
// # Concurrency
//
// Extract never mutates the graph or the parents index, so both can be shared
// by concurrent calls. Each call returns its own Result, which is not safe for
// concurrent mutation.
package extract
