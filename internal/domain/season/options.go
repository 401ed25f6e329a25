package season

import "github.com/seambreak/gully/internal/domain/scoring"

// Option applies a configuration option to the aggregator.
type Option func(*foldAggregator)

// WithEngine sets the scoring engine used for incoming performances.
func WithEngine(e scoring.Engine) Option {
	return func(a *foldAggregator) {
		if e != nil {
			a.engine = e
		}
	}
}
