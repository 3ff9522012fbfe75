// Package cache stores extraction results between runs.
//
// Extraction is deterministic for a given graph and extractor, so a result
// computed once can be reused whenever the same serialized graph is extracted
// again. Backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance, selected with a redis:// URL
//   - [NullCache]: stores nothing, used when caching is disabled
//
// Keys are built by a [Keyer] from a content hash of the input graph and the
// extractor options, so a changed graph never hits a stale entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ResultKeyOpts holds everything besides the graph that affects an
// extraction result.
type ResultKeyOpts struct {
	Extractor string `json:"extractor"`
}

// Keyer generates cache keys.
type Keyer interface {
	// ResultKey returns the key of an extraction result for the graph with
	// the given content hash.
	ResultKey(graphHash string, opts ResultKeyOpts) string
}

// resultFormat is bumped whenever the cached result encoding changes.
const resultFormat = 1

// DefaultKeyer builds unprefixed keys of the form "result:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey hashes the graph hash together with opts.
func (DefaultKeyer) ResultKey(graphHash string, opts ResultKeyOpts) string {
	return hashKey("result", resultFormat, graphHash, opts)
}
