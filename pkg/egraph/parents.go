package egraph

// Parents is the reverse dependency index of a [Graph]: for each class, the
// nodes that list it among their children. It is read-only once built.
type Parents struct {
	byClass map[ClassID][]NodeID
	order   []ClassID
}

// ClassParents builds the reverse index for g in time linear in the total
// number of child references. A node that names the same class several times
// is recorded under that class once, so every membership entry corresponds to
// exactly one distinct child class of its node.
func ClassParents(g *Graph) *Parents {
	p := &Parents{byClass: make(map[ClassID][]NodeID, len(g.classOrder))}
	for _, cid := range g.classOrder {
		p.byClass[cid] = nil
	}
	p.order = append(p.order, g.classOrder...)

	seen := make(map[ClassID]struct{})
	for _, nid := range g.nodeOrder {
		clear(seen)
		for _, child := range g.nodes[nid].Children {
			if _, dup := seen[child]; dup {
				continue
			}
			seen[child] = struct{}{}
			p.byClass[child] = append(p.byClass[child], nid)
		}
	}
	return p
}

// Of returns the nodes that reference class c, in node insertion order.
// The returned slice must not be modified.
func (p *Parents) Of(c ClassID) []NodeID { return p.byClass[c] }

// Each calls fn for every class in graph order with its parent nodes.
func (p *Parents) Each(fn func(c ClassID, parents []NodeID)) {
	for _, c := range p.order {
		fn(c, p.byClass[c])
	}
}

// Len returns the total number of (class, node) memberships.
func (p *Parents) Len() int {
	n := 0
	for _, ps := range p.byClass {
		n += len(ps)
	}
	return n
}

// DistinctChildren returns the number of distinct classes among n's children.
func DistinctChildren(n *Node) int {
	if len(n.Children) < 2 {
		return len(n.Children)
	}
	seen := make(map[ClassID]struct{}, len(n.Children))
	for _, c := range n.Children {
		seen[c] = struct{}{}
	}
	return len(seen)
}
