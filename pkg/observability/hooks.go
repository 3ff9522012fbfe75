// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about graph loading, extraction and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the extraction packages
// never import a metrics backend. [Metrics] is the Prometheus implementation
// used by the CLI.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetExtractHooks(&myExtractHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Extract().OnExtractStart(ctx, "dijkstra", g.ClassCount())
//	// ... run the extractor ...
//	observability.Extract().OnExtractComplete(ctx, "dijkstra", duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Extract Hooks
// =============================================================================

// ExtractHooks receives events from the extraction pipeline.
type ExtractHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, classCount, nodeCount int, duration time.Duration, err error)

	// Extraction events
	OnExtractStart(ctx context.Context, extractor string, classCount int)
	OnExtractComplete(ctx context.Context, extractor string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopExtractHooks is a no-op implementation of ExtractHooks.
type NoopExtractHooks struct{}

func (NoopExtractHooks) OnLoadStart(context.Context, string) {}
func (NoopExtractHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopExtractHooks) OnExtractStart(context.Context, string, int)                     {}
func (NoopExtractHooks) OnExtractComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	extractHooks ExtractHooks = NoopExtractHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetExtractHooks registers custom extraction hooks.
// This should be called once at application startup before any extraction.
func SetExtractHooks(h ExtractHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		extractHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Extract returns the registered extraction hooks.
func Extract() ExtractHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return extractHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	extractHooks = NoopExtractHooks{}
	cacheHooks = NoopCacheHooks{}
}
