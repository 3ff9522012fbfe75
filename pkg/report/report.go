// Package report describes the outcome of one extraction run.
//
// A [Report] carries the input name, the extractor used, the tree and DAG
// costs of the selection and the extraction time in microseconds. It is
// written as a small JSON object so benchmark harnesses can collect many runs
// and compare extractors:
//
//	{
//	  "name": "data/math/expr.json",
//	  "extractor": "dijkstra",
//	  "tree": 12,
//	  "dag": 9,
//	  "micros": 318,
//	  "run_id": "0b6b1f3e-...",
//	  "cached": false
//	}
//
// Infinite costs are written as null.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/matzehuels/eclass/pkg/egraph"
)

// Report is the summary of a single extraction.
type Report struct {
	Name      string      // Input file name or caller-supplied label
	Extractor string      // Registry name of the extractor
	Tree      egraph.Cost // Tree cost of the roots
	Dag       egraph.Cost // DAG cost of the roots
	Micros    int64       // Extraction time in microseconds
	RunID     string      // Unique identifier of this run
	Cached    bool        // Selection was served from the cache
}

// New creates a report with a fresh run ID.
func New(name, extractor string) *Report {
	return &Report{
		Name:      name,
		Extractor: extractor,
		Tree:      egraph.Infinity,
		Dag:       egraph.Infinity,
		RunID:     uuid.NewString(),
	}
}

type reportJSON struct {
	Name      string   `json:"name"`
	Extractor string   `json:"extractor"`
	Tree      *float64 `json:"tree"`
	Dag       *float64 `json:"dag"`
	Micros    int64    `json:"micros"`
	RunID     string   `json:"run_id,omitempty"`
	Cached    bool     `json:"cached"`
}

func finite(c egraph.Cost) *float64 {
	if c.IsInf() {
		return nil
	}
	v := float64(c)
	return &v
}

func fromFinite(v *float64) egraph.Cost {
	if v == nil {
		return egraph.Infinity
	}
	return egraph.Cost(*v)
}

// MarshalJSON implements json.Marshaler.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		Name:      r.Name,
		Extractor: r.Extractor,
		Tree:      finite(r.Tree),
		Dag:       finite(r.Dag),
		Micros:    r.Micros,
		RunID:     r.RunID,
		Cached:    r.Cached,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw reportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Report{
		Name:      raw.Name,
		Extractor: raw.Extractor,
		Tree:      fromFinite(raw.Tree),
		Dag:       fromFinite(raw.Dag),
		Micros:    raw.Micros,
		RunID:     raw.RunID,
		Cached:    raw.Cached,
	}
	return nil
}

// Write encodes r as indented JSON to w.
func (r *Report) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteFile writes r to path, replacing any existing file.
func (r *Report) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Line formats r as one tab-separated row suitable for log output:
// name, extractor, tree cost, dag cost and microseconds.
func (r *Report) Line() string {
	return fmt.Sprintf("%-40s\t%-10s\t%5s\t%5s\t%5d", r.Name, r.Extractor, r.Tree, r.Dag, r.Micros)
}
