package io

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/eclass/pkg/egraph"
	"github.com/matzehuels/eclass/pkg/errors"
)

const sample = `{
  "nodes": {
    "mul": {"op": "*",  "children": ["x", "two"], "eclass": "E", "cost": 4},
    "shl": {"op": "<<", "children": ["x", "one"], "eclass": "E"},
    "x":   {"op": "x",  "children": [], "eclass": "X", "cost": 1},
    "two": {"op": "2",  "eclass": "K2", "cost": 1},
    "one": {"op": "1",  "eclass": "K1", "cost": 0.5},
    "bad": {"op": "?",  "eclass": "B", "cost": null}
  },
  "root_eclasses": ["E"],
  "class_data": {}
}`

func TestReadJSON(t *testing.T) {
	g, err := ReadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if g.NodeCount() != 6 || g.ClassCount() != 5 {
		t.Errorf("got %d nodes, %d classes; want 6, 5", g.NodeCount(), g.ClassCount())
	}

	var order []egraph.NodeID
	for _, n := range g.Nodes() {
		order = append(order, n.ID)
	}
	if want := []egraph.NodeID{"mul", "shl", "x", "two", "one", "bad"}; !slices.Equal(order, want) {
		t.Errorf("node order = %v, want %v", order, want)
	}

	mul := g.MustNode("mul")
	if !slices.Equal(mul.Children, []egraph.ClassID{"X", "K2"}) {
		t.Errorf("mul children = %v, want [X K2]", mul.Children)
	}

	tests := []struct {
		id   egraph.NodeID
		want egraph.Cost
	}{
		{"mul", 4},
		{"shl", 1}, // omitted cost
		{"one", 0.5},
		{"bad", egraph.Infinity},
	}
	for _, tt := range tests {
		if got := g.MustNode(tt.id).Cost; got != tt.want {
			t.Errorf("cost(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}

	if !slices.Equal(g.Roots(), []egraph.ClassID{"E"}) {
		t.Errorf("Roots() = %v", g.Roots())
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"invalid json", `{"nodes":`},
		{"missing nodes", `{"root_eclasses": []}`},
		{"nodes not object", `{"nodes": []}`},
		{"unknown child", `{"nodes": {"a": {"eclass": "A", "children": ["zz"]}}}`},
		{"missing eclass", `{"nodes": {"a": {"op": "a"}}}`},
		{"negative cost", `{"nodes": {"a": {"eclass": "A", "cost": -1}}}`},
		{"bad cost", `{"nodes": {"a": {"eclass": "A", "cost": "cheap"}}}`},
		{"unknown root", `{"nodes": {"a": {"eclass": "A"}}, "root_eclasses": ["Q"]}`},
		{"empty root", `{"nodes": {"a": {"eclass": "A"}}, "root_eclasses": [""]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("ReadJSON() should fail")
			}
			if !errors.Is(err, errors.ErrCodeMalformedGraph) {
				t.Errorf("error code = %s, want MALFORMED_GRAPH", errors.GetCode(err))
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	g, err := ReadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("re-read: %v\n%s", err, buf.String())
	}

	if len(back.Nodes()) != len(g.Nodes()) {
		t.Fatalf("node count = %d, want %d", len(back.Nodes()), len(g.Nodes()))
	}
	for i, n := range g.Nodes() {
		m := back.Nodes()[i]
		if m.ID != n.ID || m.Op != n.Op || m.Class != n.Class || m.Cost != n.Cost {
			t.Errorf("node %d = %+v, want %+v", i, *m, *n)
		}
		if !slices.Equal(m.Children, n.Children) {
			t.Errorf("node %s children = %v, want %v", n.ID, m.Children, n.Children)
		}
	}
	if !slices.Equal(back.Roots(), g.Roots()) {
		t.Errorf("roots = %v, want %v", back.Roots(), g.Roots())
	}
}

func TestImportExportFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	if err := os.WriteFile(in, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}

	g, err := ImportJSON(in)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	out := filepath.Join(dir, "out.json")
	if err := ExportJSON(g, out); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	back, err := ImportJSON(out)
	if err != nil {
		t.Fatalf("ImportJSON(out): %v", err)
	}
	if back.NodeCount() != g.NodeCount() {
		t.Errorf("NodeCount() = %d, want %d", back.NodeCount(), g.NodeCount())
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportJSON(missing) = %v, want FILE_NOT_FOUND", err)
	}
}
