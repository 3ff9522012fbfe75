package extract

import (
	"fmt"
	"slices"

	"github.com/matzehuels/eclass/pkg/egraph"
)

// Extractor chooses one node per class of an e-graph.
//
// Implementations must treat g and parents as read-only so that a single
// graph can be extracted concurrently.
type Extractor interface {
	Extract(g *egraph.Graph, roots []egraph.ClassID, parents *egraph.Parents) *Result
}

// ExtractorFunc adapts a function to the [Extractor] interface.
type ExtractorFunc func(g *egraph.Graph, roots []egraph.ClassID, parents *egraph.Parents) *Result

// Extract calls f.
func (f ExtractorFunc) Extract(g *egraph.Graph, roots []egraph.ClassID, parents *egraph.Parents) *Result {
	return f(g, roots, parents)
}

// NameDijkstra is the registry name of [Dijkstra].
const NameDijkstra = "dijkstra"

// Registry maps extractor names to implementations, remembering registration
// order for listings.
type Registry struct {
	byName map[string]Extractor
	names  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Extractor)}
}

// DefaultRegistry returns a registry with every built-in extractor.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(NameDijkstra, Dijkstra{})
	return r
}

// Register adds e under name. Names must be unique and non-empty.
func (r *Registry) Register(name string, e Extractor) error {
	if name == "" {
		return fmt.Errorf("extractor name must not be empty")
	}
	if e == nil {
		return fmt.Errorf("extractor %q is nil", name)
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("extractor %q already registered", name)
	}
	r.byName[name] = e
	r.names = append(r.names, name)
	return nil
}

// Get returns the extractor registered under name.
func (r *Registry) Get(name string) (Extractor, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string { return slices.Clone(r.names) }
