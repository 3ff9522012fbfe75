package egraph

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Builder.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrInvalidClassID is returned by [Builder.AddNode] when the node does not
	// name its owning class, and by [Builder.AddRoot] for an empty root.
	ErrInvalidClassID = errors.New("class ID must not be empty")

	// ErrDuplicateNodeID is returned by [Builder.AddNode] when a node with the
	// same ID was already added. Every node belongs to exactly one class.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidCost is returned by [Builder.AddNode] for negative or NaN costs.
	// Positive infinity is accepted and marks a node that can never be chosen
	// at finite cost.
	ErrInvalidCost = errors.New("node cost must be nonnegative")

	// ErrUnknownClass is returned by [Graph.Validate] when a child reference or
	// root names a class that has no nodes.
	ErrUnknownClass = errors.New("unknown class")

	// ErrEmptyClass is returned by [Graph.Validate] when a class has no member
	// nodes.
	ErrEmptyClass = errors.New("class has no nodes")
)

// ClassID identifies an equivalence class.
type ClassID string

// NodeID identifies a single e-node.
type NodeID string

// Cost is a nonnegative node or term cost. [Infinity] sorts after every finite
// value and absorbs any sum it takes part in.
type Cost float64

// Infinity is the unknown or unreachable cost.
var Infinity = Cost(math.Inf(1))

// IsInf reports whether c is [Infinity].
func (c Cost) IsInf() bool { return math.IsInf(float64(c), 1) }

// String formats finite costs compactly and Infinity as "inf".
func (c Cost) String() string {
	if c.IsInf() {
		return "inf"
	}
	return fmt.Sprintf("%g", float64(c))
}

// Node is one concrete operation inside a class.
type Node struct {
	ID       NodeID    // Unique identifier
	Op       string    // Operator label, used for display only
	Class    ClassID   // Owning class
	Cost     Cost      // Intrinsic cost of the operation itself
	Children []ClassID // Ordered child classes; duplicates are significant
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Class is a nonempty set of interchangeable nodes.
type Class struct {
	ID    ClassID
	Nodes []NodeID // Member nodes in insertion order
}

// Graph is a validated, read-only e-graph.
//
// The zero value is an empty graph. Use [Builder] to construct one.
type Graph struct {
	nodes      map[NodeID]*Node
	nodeOrder  []NodeID
	classes    map[ClassID]*Class
	classOrder []ClassID
	roots      []ClassID
}

// Node returns the node with the given ID and true, or nil and false if not found.
// The returned node must not be modified.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Class returns the class with the given ID and true, or nil and false if not found.
// The returned class must not be modified.
func (g *Graph) Class(id ClassID) (*Class, bool) {
	c, ok := g.classes[id]
	return c, ok
}

// MustNode returns the node with the given ID. It panics if the node does not
// exist, which is only possible when a caller mixes IDs from different graphs.
func (g *Graph) MustNode(id NodeID) *Node {
	n, ok := g.nodes[id]
	if !ok {
		panic(fmt.Sprintf("egraph: node %q not in graph", id))
	}
	return n
}

// ClassOf returns the class that owns node id.
func (g *Graph) ClassOf(id NodeID) ClassID { return g.MustNode(id).Class }

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		out[i] = g.nodes[id]
	}
	return out
}

// Classes returns all classes in the order their first node was added.
func (g *Graph) Classes() []*Class {
	out := make([]*Class, len(g.classOrder))
	for i, id := range g.classOrder {
		out[i] = g.classes[id]
	}
	return out
}

// Roots returns a copy of the declared root classes.
func (g *Graph) Roots() []ClassID { return slices.Clone(g.roots) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// ClassCount returns the number of classes.
func (g *Graph) ClassCount() int { return len(g.classes) }

// Validate checks that every class has members, every child reference and
// every root resolves to an existing class, and every node belongs to the
// class that lists it. Errors wrap the package sentinels with the offending IDs.
func (g *Graph) Validate() error {
	for _, cid := range g.classOrder {
		c := g.classes[cid]
		if len(c.Nodes) == 0 {
			return fmt.Errorf("class %s: %w", cid, ErrEmptyClass)
		}
		for _, nid := range c.Nodes {
			n, ok := g.nodes[nid]
			if !ok || n.Class != cid {
				return fmt.Errorf("class %s lists node %s: %w", cid, nid, ErrUnknownClass)
			}
		}
	}
	for _, nid := range g.nodeOrder {
		n := g.nodes[nid]
		for _, child := range n.Children {
			if _, ok := g.classes[child]; !ok {
				return fmt.Errorf("node %s child %s: %w", nid, child, ErrUnknownClass)
			}
		}
	}
	for _, r := range g.roots {
		if _, ok := g.classes[r]; !ok {
			return fmt.Errorf("root %s: %w", r, ErrUnknownClass)
		}
	}
	return nil
}

// Builder accumulates nodes and roots for a [Graph].
// A Builder must not be reused after Build.
type Builder struct {
	g *Graph
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{g: &Graph{
		nodes:   make(map[NodeID]*Node),
		classes: make(map[ClassID]*Class),
	}}
}

// AddNode adds n to its owning class, creating the class on first use.
// The children slice is copied. Child classes may be added later; they are
// only resolved by Build.
func (b *Builder) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if n.Class == "" {
		return fmt.Errorf("node %s: %w", n.ID, ErrInvalidClassID)
	}
	if _, exists := b.g.nodes[n.ID]; exists {
		return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
	}
	if n.Cost < 0 || math.IsNaN(float64(n.Cost)) {
		return fmt.Errorf("node %s cost %v: %w", n.ID, float64(n.Cost), ErrInvalidCost)
	}
	n.Children = slices.Clone(n.Children)
	node := &n
	b.g.nodes[n.ID] = node
	b.g.nodeOrder = append(b.g.nodeOrder, n.ID)

	c, ok := b.g.classes[n.Class]
	if !ok {
		c = &Class{ID: n.Class}
		b.g.classes[n.Class] = c
		b.g.classOrder = append(b.g.classOrder, n.Class)
	}
	c.Nodes = append(c.Nodes, n.ID)
	return nil
}

// AddRoot declares a root class. Roots are kept in declaration order and may
// repeat.
func (b *Builder) AddRoot(id ClassID) error {
	if id == "" {
		return ErrInvalidClassID
	}
	b.g.roots = append(b.g.roots, id)
	return nil
}

// Build validates the accumulated graph and returns it.
func (b *Builder) Build() (*Graph, error) {
	if err := b.g.Validate(); err != nil {
		return nil, err
	}
	return b.g, nil
}
