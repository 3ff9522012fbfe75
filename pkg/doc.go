// Package pkg provides the core libraries for eclass e-graph extraction.
//
// # Overview
//
// An e-graph groups equivalent expressions into classes. Extraction picks one
// node per class so the resulting term is as cheap as possible. The pkg
// directory is organized into these areas:
//
//  1. [egraph] - The immutable e-graph model and its reverse index
//  2. [extract] - Extractors, the selection type and its cost measures
//  3. [io] - The egraph-serialize JSON format
//  4. [pipeline] - Orchestration (load → extract → report → render)
//  5. [report], [render/nodelink] - Cost reports and drawings of the chosen term
//  6. [cache], [observability], [errors] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through eclass:
//
//	egraph-serialize JSON
//	         ↓
//	    [io] package (decode, keep node order)
//	         ↓
//	    [extract] package (hypergraph Dijkstra over classes)
//	         ↓
//	    [report] package (tree cost, DAG cost, timing)
//	         ↓
//	    [render/nodelink] package (DOT/SVG, optional)
//
// # Quick Start
//
//	g, _ := io.ImportJSON("expr.json")
//	sel := extract.Dijkstra{}.Extract(g, g.Roots(), egraph.ClassParents(g))
//	fmt.Println(sel.TreeCost(g, g.Roots()), sel.DagCost(g, g.Roots()))
//
// Or let the pipeline handle caching, hooks and reporting:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, _ := runner.Execute(ctx, pipeline.Options{Input: "expr.json"})
//	_ = res.Report.WriteFile("out.json")
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test -run Example ./... # Examples only
//
// [egraph]: https://pkg.go.dev/github.com/matzehuels/eclass/pkg/egraph
// [extract]: https://pkg.go.dev/github.com/matzehuels/eclass/pkg/extract
// [io]: https://pkg.go.dev/github.com/matzehuels/eclass/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/eclass/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/eclass/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/eclass/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/eclass/pkg/errors
// [report]: https://pkg.go.dev/github.com/matzehuels/eclass/pkg/report
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/eclass/pkg/render/nodelink
package pkg
