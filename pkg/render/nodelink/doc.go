// Package nodelink renders e-graphs and extracted terms as node-link diagrams.
//
// # Overview
//
// Two views are produced as Graphviz DOT source:
//
//   - Term view (default): one box per class reachable from the roots, labeled
//     with the operator of its chosen node, with an arrow for every child
//     reference. Shared subterms appear once, so the picture is the DAG whose
//     cost is reported as the "dag" cost.
//   - E-graph view ([Options.AllClasses]): every class is a dashed cluster
//     holding all of its nodes. Chosen nodes are filled, and each child
//     reference points at the child class cluster.
//
// Root classes are drawn with a bold outline. Classes that settled at an
// infinite cost are drawn in red.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, sel, g.Roots(), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: labels include node IDs and costs
//   - AllClasses: draw the whole e-graph instead of the extracted term
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
