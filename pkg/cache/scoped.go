package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one cache backend without seeing each other's entries.
//
// Example usage:
//
//	// Staging and production share a Redis database
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// LayoutKey generates a prefixed key for placement caching.
func (k *ScopedKeyer) LayoutKey(layoutHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(layoutHash, opts)
}

// PlateKey generates a prefixed key for plate caching.
func (k *ScopedKeyer) PlateKey(layoutHash string, opts PlateKeyOpts) string {
	return k.prefix + k.inner.PlateKey(layoutHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(plateHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(plateHash, opts)
}
