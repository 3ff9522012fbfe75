// Package io reads and writes e-graphs in the egraph-serialize JSON format.
//
// # JSON Format
//
// The format has a "nodes" object keyed by node ID and a "root_eclasses"
// array:
//
//	{
//	  "nodes": {
//	    "x":   {"op": "x",  "children": [],           "eclass": "X", "cost": 1},
//	    "two": {"op": "2",  "children": [],           "eclass": "K", "cost": 1},
//	    "mul": {"op": "*",  "children": ["x", "two"], "eclass": "E", "cost": 4}
//	  },
//	  "root_eclasses": ["E"]
//	}
//
// # Node Fields
//
// Required:
//   - eclass: ID of the class the node belongs to
//
// Optional:
//   - op: operator label, used only for display
//   - children: node IDs; each one stands for the class that owns it
//   - cost: nonnegative number, 1.0 when omitted; null marks an infinite cost
//
// Unknown top-level keys such as "class_data" are ignored.
//
// # Order
//
// Node and class order follow the order of keys in the file, so extraction
// tie-breaking and every listing derived from the graph are reproducible.
//
// # Import
//
// Use [ImportJSON] to read a graph from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	g, err := io.ImportJSON("math.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both return MALFORMED_GRAPH errors from pkg/errors when a child refers to a
// node that is not in the file, when a root class has no nodes, or when the
// JSON itself is invalid.
//
// # Export
//
// Use [ExportJSON] or [WriteJSON] to write a graph back out. A child class is
// written as the ID of its first member node, which re-imports to the same
// class.
package io
