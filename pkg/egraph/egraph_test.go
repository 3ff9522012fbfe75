package egraph

import (
	"errors"
	"math"
	"testing"
)

func TestBuilderAddNode(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want error
	}{
		{"empty id", Node{Class: "A"}, ErrInvalidNodeID},
		{"empty class", Node{ID: "a"}, ErrInvalidClassID},
		{"negative cost", Node{ID: "a", Class: "A", Cost: -1}, ErrInvalidCost},
		{"nan cost", Node{ID: "a", Class: "A", Cost: Cost(math.NaN())}, ErrInvalidCost},
		{"infinite cost", Node{ID: "a", Class: "A", Cost: Infinity}, nil},
		{"leaf", Node{ID: "a", Class: "A", Cost: 3}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBuilder().AddNode(tt.node)
			if !errors.Is(err, tt.want) {
				t.Errorf("AddNode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuilderDuplicateNode(t *testing.T) {
	b := NewBuilder()
	if err := b.AddNode(Node{ID: "a", Class: "A"}); err != nil {
		t.Fatal(err)
	}
	err := b.AddNode(Node{ID: "a", Class: "B"})
	if !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode() error = %v, want ErrDuplicateNodeID", err)
	}
}

func TestBuildRejectsDanglingChild(t *testing.T) {
	b := NewBuilder()
	_ = b.AddNode(Node{ID: "c1", Class: "C", Children: []ClassID{"A", "missing"}})
	_ = b.AddNode(Node{ID: "a1", Class: "A"})

	_, err := b.Build()
	if !errors.Is(err, ErrUnknownClass) {
		t.Fatalf("Build() error = %v, want ErrUnknownClass", err)
	}
}

func TestBuildRejectsUnknownRoot(t *testing.T) {
	b := NewBuilder()
	_ = b.AddNode(Node{ID: "a1", Class: "A"})
	_ = b.AddRoot("Z")

	_, err := b.Build()
	if !errors.Is(err, ErrUnknownClass) {
		t.Fatalf("Build() error = %v, want ErrUnknownClass", err)
	}
}

func TestBuildForwardReference(t *testing.T) {
	b := NewBuilder()
	_ = b.AddNode(Node{ID: "c1", Class: "C", Children: []ClassID{"A"}})
	_ = b.AddNode(Node{ID: "a1", Class: "A", Cost: 1})
	_ = b.AddRoot("C")

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if g.ClassCount() != 2 || g.NodeCount() != 2 {
		t.Errorf("counts = %d classes, %d nodes, want 2, 2", g.ClassCount(), g.NodeCount())
	}
	if got := g.ClassOf("a1"); got != "A" {
		t.Errorf("ClassOf(a1) = %s, want A", got)
	}
}

func TestGraphOrdering(t *testing.T) {
	b := NewBuilder()
	_ = b.AddNode(Node{ID: "b1", Class: "B"})
	_ = b.AddNode(Node{ID: "a1", Class: "A"})
	_ = b.AddNode(Node{ID: "b2", Class: "B"})
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	classes := g.Classes()
	if classes[0].ID != "B" || classes[1].ID != "A" {
		t.Errorf("Classes() order = %s, %s, want B, A", classes[0].ID, classes[1].ID)
	}
	if len(classes[0].Nodes) != 2 || classes[0].Nodes[1] != "b2" {
		t.Errorf("class B nodes = %v, want [b1 b2]", classes[0].Nodes)
	}
	nodes := g.Nodes()
	if nodes[0].ID != "b1" || nodes[2].ID != "b2" {
		t.Errorf("Nodes() order = %v", nodes)
	}
}

func TestAddNodeCopiesChildren(t *testing.T) {
	children := []ClassID{"A"}
	b := NewBuilder()
	_ = b.AddNode(Node{ID: "a1", Class: "A"})
	_ = b.AddNode(Node{ID: "c1", Class: "C", Children: children})
	children[0] = "mutated"

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := g.MustNode("c1").Children[0]; got != "A" {
		t.Errorf("child = %s, want A", got)
	}
}

func TestRootsIsCopy(t *testing.T) {
	b := NewBuilder()
	_ = b.AddNode(Node{ID: "a1", Class: "A"})
	_ = b.AddRoot("A")
	g, _ := b.Build()

	roots := g.Roots()
	roots[0] = "X"
	if g.Roots()[0] != "A" {
		t.Error("Roots() should return a copy")
	}
}

func TestMustNodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNode() on unknown id should panic")
		}
	}()
	g, _ := NewBuilder().Build()
	g.MustNode("nope")
}

func TestCost(t *testing.T) {
	if !Infinity.IsInf() {
		t.Error("Infinity.IsInf() = false")
	}
	if Cost(1e300).IsInf() {
		t.Error("finite cost reported as infinite")
	}
	if Infinity+5 != Infinity {
		t.Error("Infinity should absorb addition")
	}
	if Infinity.String() != "inf" || Cost(2.5).String() != "2.5" {
		t.Errorf("String() = %q, %q", Infinity.String(), Cost(2.5).String())
	}
}
