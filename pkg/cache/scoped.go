package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several tools or
// workspaces can share one cache directory without reading each other's
// entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ci:nightly:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PlacementKey generates a prefixed key for placement caching.
func (k *ScopedKeyer) PlacementKey(designHash string, opts PlacementKeyOpts) string {
	return k.prefix + k.inner.PlacementKey(designHash, opts)
}
