package cache

// ScopedKeyer prefixes every key of an inner Keyer. Use it to share one Redis
// database between deployments:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "tilecalc:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// RecordKey returns the prefixed record key.
func (k *ScopedKeyer) RecordKey(opts RecordKeyOpts) string {
	return k.prefix + k.inner.RecordKey(opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(recordHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(recordHash, opts)
}
