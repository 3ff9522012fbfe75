package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/eclass/pkg/egraph"
	"github.com/matzehuels/eclass/pkg/extract"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes node IDs and costs in labels.
	// When false, only the operator is shown.
	Detailed bool

	// AllClasses draws every class and node of the e-graph, highlighting
	// the chosen nodes, instead of only the extracted term.
	AllClasses bool
}

const header = `digraph G {
  rankdir=TB;
  bgcolor="transparent";
  node [shape=box, style="rounded,filled", fillcolor=white, fontsize=20, margin="0.2,0.1"];
  ranksep=0.5;
  nodesep=0.3;
`

// ToDOT converts an extraction to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// In the term view sel must hold a choice for every class reachable from
// roots. In the e-graph view sel may be nil, in which case no node is
// highlighted.
func ToDOT(g *egraph.Graph, sel *extract.Result, roots []egraph.ClassID, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString(header)

	isRoot := make(map[egraph.ClassID]bool, len(roots))
	for _, r := range roots {
		isRoot[r] = true
	}

	if opts.AllClasses || sel == nil {
		writeEGraph(&buf, g, sel, isRoot, opts)
	} else {
		writeTerm(&buf, g, sel, roots, isRoot, opts)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeTerm(buf *bytes.Buffer, g *egraph.Graph, sel *extract.Result, roots []egraph.ClassID, isRoot map[egraph.ClassID]bool, opts Options) {
	term := sel.Restrict(g, roots)

	buf.WriteString("\n")
	for _, e := range term.Entries() {
		n := g.MustNode(e.Node)
		attrs := fmtAttrs(fmtLabel(n, e.Cost, opts.Detailed), isRoot[e.Class], e.Cost.IsInf())
		fmt.Fprintf(buf, "  %q [%s];\n", classNode(e.Class), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range term.Entries() {
		n := g.MustNode(e.Node)
		for i, child := range n.Children {
			fmt.Fprintf(buf, "  %q -> %q%s;\n", classNode(e.Class), classNode(child), edgeLabel(n, i))
		}
	}
}

func writeEGraph(buf *bytes.Buffer, g *egraph.Graph, sel *extract.Result, isRoot map[egraph.ClassID]bool, opts Options) {
	buf.WriteString("  compound=true;\n")

	for _, c := range g.Classes() {
		cost := egraph.Infinity
		var chosen egraph.NodeID
		if sel != nil {
			chosen, _ = sel.Choice(c.ID)
			cost, _ = sel.Cost(c.ID)
		}

		fmt.Fprintf(buf, "\n  subgraph %q {\n", "cluster_"+string(c.ID))
		style := "dashed"
		if isRoot[c.ID] {
			style = "dashed,bold"
		}
		fmt.Fprintf(buf, "    style=%q;\n    label=%q;\n", style, string(c.ID))
		for _, nid := range c.Nodes {
			n := g.MustNode(nid)
			attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, n.Cost, opts.Detailed))}
			if nid == chosen {
				fill := "lightblue"
				if cost.IsInf() {
					fill = "mistyrose"
				}
				attrs = append(attrs, "fillcolor="+fill)
			}
			fmt.Fprintf(buf, "    %q [%s];\n", nodeNode(nid), strings.Join(attrs, ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, n := range g.Nodes() {
		for i, child := range n.Children {
			cls, _ := g.Class(child)
			target := cls.Nodes[0]
			if sel != nil {
				if chosen, ok := sel.Choice(child); ok {
					target = chosen
				}
			}
			attrs := []string{fmt.Sprintf("lhead=%q", "cluster_"+string(child))}
			if len(n.Children) > 1 {
				attrs = append(attrs, fmt.Sprintf("label=%q", strconv.Itoa(i)))
			}
			fmt.Fprintf(buf, "  %q -> %q [%s];\n", nodeNode(n.ID), nodeNode(target), strings.Join(attrs, ", "))
		}
	}
}

func classNode(c egraph.ClassID) string { return "c:" + string(c) }

func nodeNode(n egraph.NodeID) string { return "n:" + string(n) }

// edgeLabel numbers the child positions of operators with several children
// so argument order stays visible.
func edgeLabel(n *egraph.Node, i int) string {
	if len(n.Children) < 2 {
		return ""
	}
	return fmt.Sprintf(" [label=%q]", strconv.Itoa(i))
}

func fmtLabel(n *egraph.Node, cost egraph.Cost, detailed bool) string {
	op := n.Op
	if op == "" {
		op = string(n.ID)
	}
	if !detailed {
		return op
	}
	return fmt.Sprintf("%s\nid: %s\ncost: %s", op, n.ID, cost)
}

func fmtAttrs(label string, root, infinite bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if root {
		attrs = append(attrs, "penwidth=2.5")
	}
	if infinite {
		attrs = append(attrs, "color=red", "fontcolor=red")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the drawing starts at the
// origin and carries explicit pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
