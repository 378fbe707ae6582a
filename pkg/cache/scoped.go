package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The API server scopes its keys so that several deployments can share one
// Redis instance, and a version prefix invalidates entries after upgrades.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "bookplot:v1:")
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

// FitKey generates a prefixed key for fit results.
func (k *ScopedKeyer) FitKey(samplesHash string, opts FitKeyOpts) string {
	return k.prefix + k.inner.FitKey(samplesHash, opts)
}

// ArtifactKey generates a prefixed key for rendered plots.
func (k *ScopedKeyer) ArtifactKey(dataHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(dataHash, opts)
}
