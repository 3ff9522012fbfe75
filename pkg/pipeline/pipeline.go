// Package pipeline provides the extraction pipeline for eclass.
//
// This package implements the complete load → extract → report → render flow
// used by the CLI. By centralizing this logic, every entry point caches,
// validates and reports extractions the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Read a serialized e-graph, or take one that is already in memory
//  2. Extract: Run a registered extractor, consulting the result cache first
//  3. Report: Check the selection for cycles and compute tree and DAG costs
//  4. Render: Optionally draw the extracted term as DOT or SVG
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:     "data/expr.json",
//	    Extractor: "dijkstra",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report.Line())
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/eclass/pkg/cache"
	"github.com/matzehuels/eclass/pkg/egraph"
	"github.com/matzehuels/eclass/pkg/errors"
	"github.com/matzehuels/eclass/pkg/extract"
	"github.com/matzehuels/eclass/pkg/report"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultExtractor is the extractor used when none is named.
	DefaultExtractor = extract.NameDijkstra

	// DefaultCacheTTL is how long extraction results stay cached.
	DefaultCacheTTL = 7 * 24 * time.Hour
)

// Format constants for rendered outputs.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one extraction run.
type Options struct {
	// Input is the path of a serialized e-graph. Ignored when Graph is set.
	Input string `json:"input,omitempty"`

	// Name labels the run in its report. Defaults to Input.
	Name string `json:"name,omitempty"`

	// Extractor is the registry name of the extractor to run.
	Extractor string `json:"extractor,omitempty"`

	// FailOnUnreachable turns roots without a finite term into an error
	// instead of a warning.
	FailOnUnreachable bool `json:"fail_on_unreachable,omitempty"`

	// Refresh skips the cache lookup but still stores the new result.
	Refresh bool `json:"refresh,omitempty"`

	// CacheTTL bounds the lifetime of stored results.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"`
	AllClasses bool     `json:"all_classes,omitempty"`

	// Runtime options (not serialized)
	Graph  *egraph.Graph `json:"-"`
	Logger *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the loaded e-graph.
	Graph *egraph.Graph

	// GraphHash is the content hash of the serialized graph.
	GraphHash string

	// Selection holds the chosen node and settled cost of every class.
	Selection *extract.Result

	// Report summarizes the run.
	Report *report.Report

	// Unreachable lists the roots that have no finite term.
	Unreachable []egraph.ClassID

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ClassCount  int
	NodeCount   int
	LoadTime    time.Duration
	ExtractTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ExtractHit bool // Whether the selection came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Graph == nil {
		if err := errors.ValidateInputPath(o.Input); err != nil {
			return err
		}
	}
	if o.Extractor == "" {
		o.Extractor = DefaultExtractor
	}
	if err := errors.ValidateExtractorName(o.Extractor); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Name == "" {
		o.Name = o.Input
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ResultKeyOpts returns cache key options for the extraction result.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{Extractor: o.Extractor}
}

// WantsRender reports whether any output format was requested.
func (o *Options) WantsRender() bool {
	return len(o.Formats) > 0
}
