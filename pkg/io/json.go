package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/eclass/pkg/egraph"
	"github.com/matzehuels/eclass/pkg/errors"
)

// defaultCost is used for nodes without a "cost" field.
const defaultCost = 1.0

type document struct {
	Nodes        json.RawMessage `json:"nodes"`
	RootEclasses []string        `json:"root_eclasses"`
}

type node struct {
	Op       string          `json:"op"`
	Children []string        `json:"children"`
	Eclass   string          `json:"eclass"`
	Cost     json.RawMessage `json:"cost,omitempty"`
}

type keyedNode struct {
	id string
	node
}

// ReadJSON decodes an egraph-serialize document from r into a Graph.
//
// The returned Graph is independent of r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*egraph.Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "decode")
	}
	if len(doc.Nodes) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedGraph, `missing "nodes" object`)
	}

	nodes, err := decodeNodes(doc.Nodes)
	if err != nil {
		return nil, err
	}

	owner := make(map[string]string, len(nodes))
	for _, n := range nodes {
		owner[n.id] = n.Eclass
	}

	b := egraph.NewBuilder()
	for _, n := range nodes {
		children := make([]egraph.ClassID, len(n.Children))
		for i, child := range n.Children {
			cls, ok := owner[child]
			if !ok {
				return nil, errors.New(errors.ErrCodeMalformedGraph, "node %s: unknown child node %s", n.id, child)
			}
			children[i] = egraph.ClassID(cls)
		}
		cost, err := decodeCost(n.Cost)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "node %s cost", n.id)
		}
		err = b.AddNode(egraph.Node{
			ID:       egraph.NodeID(n.id),
			Op:       n.Op,
			Class:    egraph.ClassID(n.Eclass),
			Cost:     cost,
			Children: children,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "node %s", n.id)
		}
	}
	for _, root := range doc.RootEclasses {
		if err := b.AddRoot(egraph.ClassID(root)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "root %q", root)
		}
	}

	g, err := b.Build()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "invalid graph")
	}
	return g, nil
}

// decodeNodes walks the "nodes" object token by token so the result keeps
// the key order of the file.
func decodeNodes(raw json.RawMessage) ([]keyedNode, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "nodes")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New(errors.ErrCodeMalformedGraph, `"nodes" must be an object`)
	}

	var out []keyedNode
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "nodes")
		}
		id, _ := tok.(string)
		var n node
		if err := dec.Decode(&n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "node %s", id)
		}
		if n.Eclass == "" {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "node %s: missing eclass", id)
		}
		out = append(out, keyedNode{id: id, node: n})
	}
	return out, nil
}

// decodeCost maps a missing cost to 1.0 and null to an infinite cost.
func decodeCost(raw json.RawMessage) (egraph.Cost, error) {
	if len(raw) == 0 {
		return defaultCost, nil
	}
	if string(raw) == "null" {
		return egraph.Infinity, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	return egraph.Cost(v), nil
}

// ImportJSON reads the file at path and returns the decoded Graph.
// A missing file yields a FILE_NOT_FOUND error.
func ImportJSON(path string) (*egraph.Graph, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// WriteJSON encodes g in the egraph-serialize format and writes it to w.
// Nodes are written in graph order.
func WriteJSON(g *egraph.Graph, w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString("{\n  \"nodes\": {")
	for i, n := range g.Nodes() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(n.ID))
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		children := make([]string, len(n.Children))
		for j, c := range n.Children {
			cls, _ := g.Class(c)
			children[j] = string(cls.Nodes[0])
		}
		cost := json.RawMessage("null")
		if !n.Cost.IsInf() {
			if cost, err = json.Marshal(float64(n.Cost)); err != nil {
				return fmt.Errorf("encode node %s: %w", n.ID, err)
			}
		}
		val, err := json.Marshal(node{Op: n.Op, Children: children, Eclass: string(n.Class), Cost: cost})
		if err != nil {
			return fmt.Errorf("encode node %s: %w", n.ID, err)
		}
		fmt.Fprintf(&buf, "\n    %s: %s", key, val)
	}
	buf.WriteString("\n  },\n  \"root_eclasses\": ")

	roots := make([]string, 0, len(g.Roots()))
	for _, r := range g.Roots() {
		roots = append(roots, string(r))
	}
	rootData, err := json.Marshal(roots)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	buf.Write(rootData)
	buf.WriteString("\n}\n")

	_, err = w.Write(buf.Bytes())
	return err
}

// ExportJSON writes g to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *egraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
