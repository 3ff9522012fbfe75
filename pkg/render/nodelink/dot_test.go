package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/eclass/pkg/egraph"
	"github.com/matzehuels/eclass/pkg/extract"
)

// shiftGraph is E:{x*2, x<<1} over X, K2 and K1, plus an unused class U.
func shiftGraph(t *testing.T) *egraph.Graph {
	t.Helper()
	b := egraph.NewBuilder()
	for _, n := range []egraph.Node{
		{ID: "x", Op: "x", Class: "X", Cost: 1},
		{ID: "two", Op: "2", Class: "K2", Cost: 1},
		{ID: "one", Op: "1", Class: "K1", Cost: 1},
		{ID: "mul", Op: "*", Class: "E", Cost: 4, Children: []egraph.ClassID{"X", "K2"}},
		{ID: "shl", Op: "<<", Class: "E", Cost: 1, Children: []egraph.ClassID{"X", "K1"}},
		{ID: "u", Op: "u", Class: "U", Cost: egraph.Infinity},
	} {
		if err := b.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.AddRoot("E"); err != nil {
		t.Fatal(err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func extractAll(g *egraph.Graph) *extract.Result {
	return extract.Dijkstra{}.Extract(g, g.Roots(), egraph.ClassParents(g))
}

func TestToDOT_Term(t *testing.T) {
	g := shiftGraph(t)
	dot := ToDOT(g, extractAll(g), g.Roots(), Options{})

	for _, want := range []string{
		"digraph G",
		`"c:E" [label="<<", penwidth=2.5]`,
		`"c:X" [label="x"]`,
		`"c:E" -> "c:X" [label="0"]`,
		`"c:E" -> "c:K1" [label="1"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
	for _, absent := range []string{`"c:K2"`, `"c:U"`, `"*"`} {
		if strings.Contains(dot, absent) {
			t.Errorf("ToDOT() term view should not contain %s", absent)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	g := shiftGraph(t)
	dot := ToDOT(g, extractAll(g), g.Roots(), Options{Detailed: true})

	if !strings.Contains(dot, `id: shl`) {
		t.Error("ToDOT() detailed output missing node ID")
	}
	if !strings.Contains(dot, `cost: 3`) {
		t.Error("ToDOT() detailed output missing settled cost of E")
	}
}

func TestToDOT_AllClasses(t *testing.T) {
	g := shiftGraph(t)
	dot := ToDOT(g, extractAll(g), g.Roots(), Options{AllClasses: true})

	for _, want := range []string{
		"compound=true",
		`subgraph "cluster_E"`,
		`subgraph "cluster_U"`,
		`"n:mul" [label="*"]`,
		`"n:shl" [label="<<", fillcolor=lightblue]`,
		`"n:u" [label="u", fillcolor=mistyrose]`,
		`"n:mul" -> "n:two" [lhead="cluster_K2", label="1"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
}

func TestToDOT_NilSelection(t *testing.T) {
	g := shiftGraph(t)
	dot := ToDOT(g, nil, g.Roots(), Options{})
	if !strings.Contains(dot, `subgraph "cluster_E"`) {
		t.Error("nil selection should fall back to the e-graph view")
	}
	if strings.Contains(dot, "fillcolor=lightblue") {
		t.Error("nil selection should not highlight nodes")
	}
}

func TestFmtAttrs(t *testing.T) {
	tests := []struct {
		name     string
		root     bool
		infinite bool
		want     int
		contains string
	}{
		{"plain", false, false, 1, "label="},
		{"root", true, false, 2, "penwidth"},
		{"infinite", false, true, 3, "color=red"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := fmtAttrs("l", tt.root, tt.infinite)
			if len(attrs) != tt.want {
				t.Errorf("fmtAttrs() = %v, want %d attrs", attrs, tt.want)
			}
			if !strings.Contains(strings.Join(attrs, " "), tt.contains) {
				t.Errorf("fmtAttrs() = %v, missing %s", attrs, tt.contains)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	g := shiftGraph(t)
	svg, err := RenderSVG(context.Background(), ToDOT(g, extractAll(g), g.Roots(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
