package extract

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/eclass/pkg/egraph"
)

// Entry is one settled class: the node chosen for it and the cost it settled at.
type Entry struct {
	Class egraph.ClassID
	Node  egraph.NodeID
	Cost  egraph.Cost
}

// Result accumulates the per-class choices of one extraction run and answers
// validity and cost queries about them.
//
// The zero value is not usable; use [NewResult].
type Result struct {
	choices map[egraph.ClassID]egraph.NodeID
	costs   map[egraph.ClassID]egraph.Cost
	order   []egraph.ClassID
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{
		choices: make(map[egraph.ClassID]egraph.NodeID),
		costs:   make(map[egraph.ClassID]egraph.Cost),
	}
}

// FromEntries rebuilds a result from entries in commit order, for example
// after reading them back from a cache.
func FromEntries(entries []Entry) *Result {
	r := NewResult()
	for _, e := range entries {
		r.settle(e.Class, e.Node, e.Cost)
	}
	return r
}

// Choose records node as the representative of class. Repeating the same
// choice is a no-op. Choosing a different node for an already chosen class
// panics: a committed class is never revised.
func (r *Result) Choose(class egraph.ClassID, node egraph.NodeID) {
	if prev, ok := r.choices[class]; ok {
		if prev != node {
			panic(fmt.Sprintf("extract: class %s already chose %s, cannot choose %s", class, prev, node))
		}
		return
	}
	r.choices[class] = node
	r.order = append(r.order, class)
}

// settle commits class at cost with the given witness node.
func (r *Result) settle(class egraph.ClassID, node egraph.NodeID, cost egraph.Cost) {
	r.Choose(class, node)
	if prev, ok := r.costs[class]; ok && prev != cost {
		panic(fmt.Sprintf("extract: class %s already settled at %v, cannot settle at %v", class, prev, cost))
	}
	r.costs[class] = cost
}

// Choice returns the node chosen for class.
func (r *Result) Choice(class egraph.ClassID) (egraph.NodeID, bool) {
	n, ok := r.choices[class]
	return n, ok
}

// Cost returns the settled cost of class. Unsettled classes report Infinity
// and false.
func (r *Result) Cost(class egraph.ClassID) (egraph.Cost, bool) {
	c, ok := r.costs[class]
	if !ok {
		return egraph.Infinity, false
	}
	return c, true
}

// IsSettled reports whether class has a committed cost.
func (r *Result) IsSettled(class egraph.ClassID) bool {
	_, ok := r.costs[class]
	return ok
}

// Len returns the number of chosen classes.
func (r *Result) Len() int { return len(r.order) }

// Entries returns the choices in commit order.
func (r *Result) Entries() []Entry {
	out := make([]Entry, len(r.order))
	for i, c := range r.order {
		cost, ok := r.costs[c]
		if !ok {
			cost = egraph.Infinity
		}
		out[i] = Entry{Class: c, Node: r.choices[c], Cost: cost}
	}
	return out
}

// NodeSumCost returns n's intrinsic cost plus the settled cost of every child
// reference, counting repeated children once per occurrence. A child without
// a settled cost counts as Infinity.
func (r *Result) NodeSumCost(n *egraph.Node) egraph.Cost {
	sum := n.Cost
	for _, child := range n.Children {
		c, ok := r.costs[child]
		if !ok {
			return egraph.Infinity
		}
		sum += c
	}
	return sum
}

func (r *Result) mustChoice(class egraph.ClassID) egraph.NodeID {
	n, ok := r.choices[class]
	if !ok {
		panic(fmt.Sprintf("extract: no choice for class %s", class))
	}
	return n
}

// FindCycles walks the chosen nodes reachable from roots and returns every
// class that is reached again while still on the current path. An empty
// result means the choices form a DAG.
func (r *Result) FindCycles(g *egraph.Graph, roots []egraph.ClassID) []egraph.ClassID {
	const (
		white = iota
		gray
		black
	)

	color := make(map[egraph.ClassID]int)
	var cycles []egraph.ClassID

	var dfs func(c egraph.ClassID)
	dfs = func(c egraph.ClassID) {
		switch color[c] {
		case black:
			return
		case gray:
			cycles = append(cycles, c)
			return
		}
		color[c] = gray
		for _, child := range g.MustNode(r.mustChoice(c)).Children {
			dfs(child)
		}
		color[c] = black
	}

	for _, root := range roots {
		dfs(root)
	}
	return cycles
}

// TreeCost returns the cost of the chosen term when shared subterms are
// expanded: a class reached along k paths is paid k times. Roots are summed in
// order, including repeats. A cyclic choice costs Infinity.
func (r *Result) TreeCost(g *egraph.Graph, roots []egraph.ClassID) egraph.Cost {
	memo := make(map[egraph.ClassID]egraph.Cost)
	onPath := make(map[egraph.ClassID]bool)

	var cost func(c egraph.ClassID) egraph.Cost
	cost = func(c egraph.ClassID) egraph.Cost {
		if v, ok := memo[c]; ok {
			return v
		}
		if onPath[c] {
			return egraph.Infinity
		}
		onPath[c] = true
		n := g.MustNode(r.mustChoice(c))
		total := n.Cost
		for _, child := range n.Children {
			total += cost(child)
		}
		onPath[c] = false
		memo[c] = total
		return total
	}

	var total egraph.Cost
	for _, root := range roots {
		total += cost(root)
	}
	return total
}

// DagCost returns the cost of the chosen term when every reachable class is
// paid for exactly once. It is Infinity when any reachable class settled at
// Infinity, since that class's choice is a placeholder and not a term.
func (r *Result) DagCost(g *egraph.Graph, roots []egraph.ClassID) egraph.Cost {
	var total egraph.Cost
	for _, c := range r.reachable(g, roots) {
		if cost, ok := r.costs[c]; ok && cost.IsInf() {
			return egraph.Infinity
		}
		total += g.MustNode(r.choices[c]).Cost
	}
	return total
}

// reachable returns the classes reachable from roots through chosen nodes, in
// discovery order.
func (r *Result) reachable(g *egraph.Graph, roots []egraph.ClassID) []egraph.ClassID {
	seen := make(map[egraph.ClassID]bool)
	var out []egraph.ClassID
	todo := append([]egraph.ClassID(nil), roots...)
	for len(todo) > 0 {
		c := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		todo = append(todo, g.MustNode(r.mustChoice(c)).Children...)
	}
	return out
}

// Restrict returns a new result holding only the classes reachable from roots,
// in their original commit order.
func (r *Result) Restrict(g *egraph.Graph, roots []egraph.ClassID) *Result {
	keep := make(map[egraph.ClassID]bool)
	for _, c := range r.reachable(g, roots) {
		keep[c] = true
	}
	out := NewResult()
	for _, e := range r.Entries() {
		if keep[e.Class] {
			out.settle(e.Class, e.Node, e.Cost)
		}
	}
	return out
}

// Validate checks that every choice names a node of its class in g and that
// every class reachable from roots has a choice. It lets callers vet results
// from other extractors or from storage before walking them.
func (r *Result) Validate(g *egraph.Graph, roots []egraph.ClassID) error {
	for _, c := range r.order {
		nid := r.choices[c]
		n, ok := g.Node(nid)
		if !ok {
			return fmt.Errorf("class %s: chosen node %s not in graph", c, nid)
		}
		if n.Class != c {
			return fmt.Errorf("class %s: chosen node %s belongs to %s", c, nid, n.Class)
		}
	}

	seen := make(map[egraph.ClassID]bool)
	todo := append([]egraph.ClassID(nil), roots...)
	for len(todo) > 0 {
		c := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if seen[c] {
			continue
		}
		seen[c] = true
		nid, ok := r.choices[c]
		if !ok {
			return fmt.Errorf("class %s: no choice", c)
		}
		todo = append(todo, g.MustNode(nid).Children...)
	}
	return nil
}

// InfiniteClasses returns the settled classes whose cost is Infinity, in
// commit order.
func (r *Result) InfiniteClasses() []egraph.ClassID {
	var out []egraph.ClassID
	for _, c := range r.order {
		if cost, ok := r.costs[c]; ok && cost.IsInf() {
			out = append(out, c)
		}
	}
	return out
}

// UnreachableRoots returns the distinct roots that settled at Infinity or
// were never settled.
func (r *Result) UnreachableRoots(roots []egraph.ClassID) []egraph.ClassID {
	seen := make(map[egraph.ClassID]bool)
	var out []egraph.ClassID
	for _, root := range roots {
		if seen[root] {
			continue
		}
		seen[root] = true
		if cost, _ := r.Cost(root); cost.IsInf() {
			out = append(out, root)
		}
	}
	return out
}

type entryJSON struct {
	Class egraph.ClassID `json:"class"`
	Node  egraph.NodeID  `json:"node"`
	Cost  *float64       `json:"cost"` // null encodes Infinity
}

// MarshalJSON encodes the entries in commit order. Infinite costs are
// written as null since JSON has no infinity.
func (r *Result) MarshalJSON() ([]byte, error) {
	entries := r.Entries()
	out := make([]entryJSON, len(entries))
	for i, e := range entries {
		out[i] = entryJSON{Class: e.Class, Node: e.Node}
		if !e.Cost.IsInf() {
			v := float64(e.Cost)
			out[i].Cost = &v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes entries written by MarshalJSON into an empty result.
func (r *Result) UnmarshalJSON(data []byte) error {
	var in []entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = *NewResult()
	for _, e := range in {
		cost := egraph.Infinity
		if e.Cost != nil {
			cost = egraph.Cost(*e.Cost)
		}
		if r.IsSettled(e.Class) {
			return fmt.Errorf("duplicate entry for class %s", e.Class)
		}
		r.settle(e.Class, e.Node, cost)
	}
	return nil
}
