package identity

// Option applies a configuration option to the resolver.
type Option func(*nameResolver)

// WithThreshold sets the similarity ratio at or above which a name match
// is accepted. Out-of-range values keep the default.
func WithThreshold(threshold float64) Option {
	return func(r *nameResolver) {
		if threshold > 0 && threshold <= 1 {
			r.threshold = threshold
		}
	}
}

// WithSimilarity replaces the name similarity strategy.
func WithSimilarity(sim Similarity) Option {
	return func(r *nameResolver) {
		if sim != nil {
			r.sim = sim
		}
	}
}
