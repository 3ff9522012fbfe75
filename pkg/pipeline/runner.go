package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/eclass/pkg/cache"
	"github.com/matzehuels/eclass/pkg/egraph"
	"github.com/matzehuels/eclass/pkg/errors"
	"github.com/matzehuels/eclass/pkg/extract"
	pkgio "github.com/matzehuels/eclass/pkg/io"
	"github.com/matzehuels/eclass/pkg/observability"
	"github.com/matzehuels/eclass/pkg/render/nodelink"
	"github.com/matzehuels/eclass/pkg/report"
)

// cacheKeyType labels result entries in cache hooks.
const cacheKeyType = "result"

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache, logger and registry - it
// doesn't store pipeline results. Multiple goroutines can safely use the same
// Runner with different options; concurrent extractions of the same graph
// with the same extractor run once and share the selection, which callers
// must treat as read-only.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Registry *extract.Registry

	flight singleflight.Group
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The registry starts as [extract.DefaultRegistry].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Registry: extract.DefaultRegistry(),
	}
}

// Execute runs the complete load → extract → report → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	g, graphHash, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Graph = g
	result.GraphHash = graphHash
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.ClassCount = g.ClassCount()
	result.Stats.NodeCount = g.NodeCount()

	logger.Info("loaded e-graph",
		"classes", g.ClassCount(),
		"nodes", g.NodeCount(),
		"roots", len(g.Roots()),
		"duration", result.Stats.LoadTime)
	if len(g.Roots()) == 0 {
		logger.Warn("e-graph declares no root classes; costs will be zero")
	}

	// Stage 2: Extract
	sel, elapsed, hit, err := r.ExtractWithCacheInfo(ctx, g, graphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	result.Selection = sel
	result.Stats.ExtractTime = elapsed
	result.CacheInfo.ExtractHit = hit

	logger.Info("extracted",
		"extractor", opts.Extractor,
		"classes", sel.Len(),
		"cached", hit,
		"duration", elapsed)

	// Stage 3: Report
	roots := g.Roots()
	result.Unreachable = sel.UnreachableRoots(roots)
	if len(result.Unreachable) > 0 {
		if opts.FailOnUnreachable {
			return nil, errors.New(errors.ErrCodeUnreachableClass,
				"no finite term for root classes %v", result.Unreachable)
		}
		logger.Warn("roots have no finite term", "classes", result.Unreachable)
	}
	if cycles := sel.FindCycles(g, finiteRoots(sel, roots)); len(cycles) > 0 {
		return nil, errors.New(errors.ErrCodeCycleDetected,
			"extractor %s chose a cyclic term through %v", opts.Extractor, cycles)
	}

	rep := report.New(opts.Name, opts.Extractor)
	rep.Tree = sel.TreeCost(g, roots)
	rep.Dag = sel.DagCost(g, roots)
	rep.Micros = elapsed.Microseconds()
	rep.Cached = hit
	result.Report = rep

	logger.Info(rep.Line())

	// Stage 4: Render
	if opts.WantsRender() {
		renderStart := time.Now()
		artifacts, err := r.Render(ctx, g, sel, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)

		logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// Load returns the graph named by opts together with the content hash used
// for cache keys. An in-memory graph is hashed through its serialized form.
func (r *Runner) Load(ctx context.Context, opts Options) (*egraph.Graph, string, error) {
	source := opts.Input
	if opts.Graph != nil {
		source = "memory"
	}
	observability.Extract().OnLoadStart(ctx, source)
	start := time.Now()

	g, hash, err := load(opts)

	classes, nodes := 0, 0
	if g != nil {
		classes, nodes = g.ClassCount(), g.NodeCount()
	}
	observability.Extract().OnLoadComplete(ctx, source, classes, nodes, time.Since(start), err)
	return g, hash, err
}

func load(opts Options) (*egraph.Graph, string, error) {
	if opts.Graph != nil {
		hash, err := hashGraph(opts.Graph)
		if err != nil {
			return nil, "", err
		}
		return opts.Graph, hash, nil
	}

	data, err := os.ReadFile(opts.Input)
	if os.IsNotExist(err) {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", opts.Input)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", opts.Input, err)
	}
	g, err := pkgio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", opts.Input, err)
	}
	return g, cache.Hash(data), nil
}

// hashGraph hashes the serialized form of g.
func hashGraph(g *egraph.Graph) (string, error) {
	var buf bytes.Buffer
	if err := pkgio.WriteJSON(g, &buf); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

// cachedSelection is the stored form of an extraction. The elapsed time of
// the original run travels with it so cached reports stay comparable.
type cachedSelection struct {
	Micros    int64           `json:"micros"`
	Selection *extract.Result `json:"selection"`
}

// ExtractWithCacheInfo runs the named extractor with caching and returns the
// selection, the extraction time and whether the cache was hit. An empty
// graphHash is computed from g.
func (r *Runner) ExtractWithCacheInfo(ctx context.Context, g *egraph.Graph, graphHash string, opts Options) (*extract.Result, time.Duration, bool, error) {
	if opts.Graph == nil {
		opts.Graph = g
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, 0, false, err
	}
	if graphHash == "" {
		var err error
		if graphHash, err = hashGraph(g); err != nil {
			return nil, 0, false, err
		}
	}

	ext, ok := r.Registry.Get(opts.Extractor)
	if !ok {
		return nil, 0, false, errors.New(errors.ErrCodeUnknownExtractor,
			"unknown extractor: %s (available: %v)", opts.Extractor, r.Registry.Names())
	}

	cacheKey := r.Keyer.ResultKey(graphHash, opts.ResultKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if sel, elapsed, ok := r.lookup(ctx, cacheKey, g, opts.Logger); ok {
			return sel, elapsed, true, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, 0, false, err
	}

	v, err, shared := r.flight.Do(cacheKey, func() (any, error) {
		return r.run(ctx, g, ext, cacheKey, opts)
	})
	if err != nil {
		return nil, 0, false, err
	}
	if shared {
		opts.Logger.Debug("shared concurrent extraction", "extractor", opts.Extractor)
	}
	run := v.(extraction)
	return run.sel, run.elapsed, false, nil
}

// extraction is the outcome of one uncached extractor run.
type extraction struct {
	sel     *extract.Result
	elapsed time.Duration
}

// run executes ext, checks its selection and stores it under cacheKey.
func (r *Runner) run(ctx context.Context, g *egraph.Graph, ext extract.Extractor, cacheKey string, opts Options) (extraction, error) {
	observability.Extract().OnExtractStart(ctx, opts.Extractor, g.ClassCount())
	parents := egraph.ClassParents(g)
	start := time.Now()
	sel := ext.Extract(g, g.Roots(), parents)
	elapsed := time.Since(start)

	var err error
	if sel == nil {
		err = errors.New(errors.ErrCodeInternal, "extractor %s returned no result", opts.Extractor)
	} else if verr := sel.Validate(g, g.Roots()); verr != nil {
		err = errors.Wrap(errors.ErrCodeInternal, verr, "extractor %s returned an invalid selection", opts.Extractor)
	}
	observability.Extract().OnExtractComplete(ctx, opts.Extractor, elapsed, err)
	if err != nil {
		return extraction{}, err
	}

	data, merr := json.Marshal(cachedSelection{Micros: elapsed.Microseconds(), Selection: sel})
	if merr == nil {
		if serr := r.Cache.Set(ctx, cacheKey, data, opts.CacheTTL); serr != nil {
			opts.Logger.Warn("cache write failed", "error", serr)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}

	return extraction{sel: sel, elapsed: elapsed}, nil
}

// Extract is a convenience wrapper that calls ExtractWithCacheInfo and
// discards the timing and cache hit info.
func (r *Runner) Extract(ctx context.Context, g *egraph.Graph, graphHash string, opts Options) (*extract.Result, error) {
	sel, _, _, err := r.ExtractWithCacheInfo(ctx, g, graphHash, opts)
	return sel, err
}

// lookup returns a cached selection when one exists and still fits g.
// Undecodable or stale entries count as misses.
func (r *Runner) lookup(ctx context.Context, key string, g *egraph.Graph, logger *log.Logger) (*extract.Result, time.Duration, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, 0, false
	}

	var cached cachedSelection
	if err := json.Unmarshal(data, &cached); err != nil || cached.Selection == nil {
		logger.Debug("discarding undecodable cache entry", "key", key)
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, 0, false
	}
	if err := cached.Selection.Validate(g, g.Roots()); err != nil {
		logger.Debug("discarding stale cache entry", "key", key, "error", err)
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, 0, false
	}

	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return cached.Selection, time.Duration(cached.Micros) * time.Microsecond, true
}

// Render draws the extraction in every requested format.
func (r *Runner) Render(ctx context.Context, g *egraph.Graph, sel *extract.Result, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	dot := nodelink.ToDOT(g, sel, g.Roots(), nodelink.Options{
		Detailed:   opts.Detailed,
		AllClasses: opts.AllClasses,
	})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatDOT:
			artifacts[format] = []byte(dot)
		case FormatSVG:
			svg, err := nodelink.RenderSVG(ctx, dot)
			if err != nil {
				return nil, err
			}
			artifacts[format] = svg
		}
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// finiteRoots drops roots without a finite term. Their placeholder choices
// may legitimately point back into themselves.
func finiteRoots(sel *extract.Result, roots []egraph.ClassID) []egraph.ClassID {
	out := make([]egraph.ClassID, 0, len(roots))
	for _, root := range roots {
		if cost, ok := sel.Cost(root); ok && !cost.IsInf() {
			out = append(out, root)
		}
	}
	return out
}
