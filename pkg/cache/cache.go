// Package cache provides caching for generated diagrams.
//
// The [Cache] interface abstracts over backends:
//   - file: directory-based storage for CLI usage
//   - redis: shared storage for server deployments
//   - null: disabled caching
//
// Keys are produced by a [Keyer] so that CLI and server derive identical
// keys for identical inputs. Diagram keys are content-addressed: they hash
// the declared input files together with the rendering options, and every
// entry carries a TTL that bounds staleness from files the key does not
// cover (role files, includes).
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the default lifetime of a cached diagram.
const DefaultTTL = 15 * time.Minute

// Cache stores rendered diagram artifacts keyed by content hash.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DiagramKeyOpts are the options that distinguish otherwise identical
// diagram requests.
type DiagramKeyOpts struct {
	Layout string
	Format string
}

// Keyer generates cache keys.
type Keyer interface {
	// DiagramKey generates a key for a rendered diagram. inputHash is the
	// content hash of the request's input files.
	DiagramKey(inputHash string, opts DiagramKeyOpts) string

	// ScanKey generates a key for a repository scan result.
	ScanKey(root string) string
}

// DefaultKeyer is the standard key generation strategy.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DiagramKey generates a key of the form "diagram:<sha256>".
func (k *DefaultKeyer) DiagramKey(inputHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", inputHash, opts)
}

// ScanKey generates a key of the form "scan:<sha256>".
func (k *DefaultKeyer) ScanKey(root string) string {
	return hashKey("scan", root)
}

// ScopedKeyer wraps a Keyer with a prefix, giving separate namespaces to
// different tenants of a shared backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all generated
// keys. A nil inner falls back to the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DiagramKey generates a prefixed diagram key.
func (k *ScopedKeyer) DiagramKey(inputHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(inputHash, opts)
}

// ScanKey generates a prefixed scan key.
func (k *ScopedKeyer) ScanKey(root string) string {
	return k.prefix + k.inner.ScanKey(root)
}
