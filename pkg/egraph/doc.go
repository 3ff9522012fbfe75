// Package egraph provides an immutable equality graph (e-graph) model used by
// the extraction algorithms in [extract].
//
// # Overview
//
// An e-graph represents exponentially many equivalent expressions compactly.
// Nodes are concrete operations that carry an intrinsic [Cost] and an ordered
// list of child classes. Classes group interchangeable nodes: any node of a
// class may stand in for any other. Extraction picks one node per class.
//
// # Building a Graph
//
// Graphs are assembled with a [Builder] and frozen by [Builder.Build], which
// validates every structural invariant before returning:
//
//	b := egraph.NewBuilder()
//	b.AddNode(egraph.Node{ID: "a1", Class: "A", Cost: 1})
//	b.AddNode(egraph.Node{ID: "c1", Class: "C", Children: []egraph.ClassID{"A", "A"}})
//	b.AddRoot("C")
//	g, err := b.Build()
//
// Child lists may name the same class several times. Duplicates are kept
// because they count once per occurrence when summing costs.
//
// # Reverse Index
//
// [ClassParents] derives the reverse dependency index: for every class, the
// nodes that reference it as a child. Each node appears at most once per class
// no matter how many times it repeats that child.
//
// # Concurrency
//
// A built [Graph] and its [Parents] index are never mutated and are safe to
// share between goroutines. [Builder] is not safe for concurrent use.
//
// [extract]: github.com/matzehuels/eclass/pkg/extract
package egraph
