// Package cache stores placement results between CLI runs.
//
// Entries are opaque byte slices addressed by string keys. Keys are built
// by a [Keyer] from the hash of the design file plus every option that
// changes the outcome of a run, so a cached placement is only reused for
// an identical request.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// TTLPlacement is how long a cached placement stays valid.
const TTLPlacement = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear() (int, error)
}

// PlacementKeyOpts holds every run option that affects a placement.
type PlacementKeyOpts struct {
	Seed            uint64  `json:"seed"`
	Rotate          bool    `json:"rotate"`
	MaxPlaceRetries int     `json:"max_place_retries"`
	MaxMacroRetries int     `json:"max_macro_retries"`
	Swaps           int     `json:"swaps"`
	AcceptRate      float64 `json:"accept_rate"`
}

// Keyer builds cache keys.
type Keyer interface {
	PlacementKey(designHash string, opts PlacementKeyOpts) string
}

// DefaultKeyer builds unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PlacementKey returns "placement:<sha256>" over the key version, the
// design hash and opts.
func (DefaultKeyer) PlacementKey(designHash string, opts PlacementKeyOpts) string {
	return hashKey("placement", designHash, opts)
}

// keyVersion is mixed into every key. Bump it when the cached payload
// changes shape so old entries become unreachable.
const keyVersion = 1

// hashKey returns prefix:sha256(keyVersion, parts...).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(append([]any{keyVersion}, parts...))
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// NullCache
// =============================================================================

// NullCache never stores anything. The CLI uses it for --no-cache and for
// seed sweeps.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() *NullCache { return &NullCache{} }

// Get always misses.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards data.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (*NullCache) Delete(context.Context, string) error { return nil }

// Clear reports zero removed entries.
func (*NullCache) Clear() (int, error) { return 0, nil }

// Close does nothing.
func (*NullCache) Close() error { return nil }

var (
	_ Cache   = (*NullCache)(nil)
	_ Cache   = (*FileCache)(nil)
	_ Clearer = (*NullCache)(nil)
	_ Clearer = (*FileCache)(nil)
)
