// Package handicap computes per-player fantasy multipliers.
//
// A multiplier handicaps raw fantasy points the way a golf handicap
// levels a fourball: strong performers drift below neutral, weak
// performers drift above it, relative to a comparison scope. Targets
// come from the scope's score distribution and each pass blends the
// previous value a fixed fraction of the way toward target, so one
// freak innings cannot slam a multiplier to its bound.
package handicap

import (
	"context"
	"math"
	"sort"
	"time"

	model "github.com/seambreak/gully/internal/domain/model"
	"github.com/seambreak/gully/internal/domain/rules"
)

// Option applies a configuration option to the DriftEngine.
type Option func(*DriftEngine)

// WithRules sets the multiplier bounds and drift the engine works under.
func WithRules(rs *rules.RuleSet) Option {
	return func(e *DriftEngine) {
		if rs == nil {
			return
		}
		cp := *rs
		e.rules = &cp
	}
}

// Engine computes one handicap pass over a comparison scope.
type Engine interface {
	// Adjust blends every listed player's multiplier toward its target
	// under the scope's score distribution. points carries the comparison
	// score per player key; previous carries current multipliers, with
	// missing entries treated as neutral. The caller stamps Generation.
	Adjust(ctx context.Context, scope model.Scope, points, previous map[string]float64) model.MultiplierSnapshot
}

// DriftEngine implements Engine with piecewise-linear targets and
// fractional drift.
type DriftEngine struct {
	rules *rules.RuleSet
}

// NewDriftEngine creates an engine with configuration options. Without
// WithRules it uses the default rule set's bounds.
func NewDriftEngine(opts ...Option) *DriftEngine {
	e := &DriftEngine{
		rules: rules.Default(context.Background()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Adjust implements Engine. Context is accepted to satisfy the
// project-wide convention; the computation never blocks.
func (e *DriftEngine) Adjust(_ context.Context, scope model.Scope, points, previous map[string]float64) model.MultiplierSnapshot {
	snap := model.MultiplierSnapshot{
		Scope:      scope,
		ComputedAt: time.Now(),
		Values:     make(map[string]float64, len(points)),
	}

	lo, median, hi, ok := distribution(points)
	for key, score := range points {
		target := e.rules.NeutralMultiplier
		if ok && score > 0 {
			target = e.target(score, lo, median, hi)
		}
		prev, seen := previous[key]
		if !seen {
			prev = e.rules.NeutralMultiplier
		}
		next := prev*(1-e.rules.Drift) + target*e.rules.Drift
		next = math.Round(next*100) / 100
		snap.Values[key] = clamp(next, e.rules.MinMultiplier, e.rules.MaxMultiplier)
	}
	return snap
}

// target maps a score onto [min, max] multipliers: the scope's lowest
// score earns the max multiplier, the median earns neutral, the highest
// earns the min, with linear interpolation inside each half. Degenerate
// halves collapse to neutral so uniform scopes handicap nobody.
func (e *DriftEngine) target(score, lo, median, hi float64) float64 {
	r := e.rules
	if score <= median {
		if median == lo {
			return r.NeutralMultiplier
		}
		frac := (score - lo) / (median - lo)
		return r.MaxMultiplier + (r.NeutralMultiplier-r.MaxMultiplier)*frac
	}
	if hi == median {
		return r.NeutralMultiplier
	}
	frac := (score - median) / (hi - median)
	return r.NeutralMultiplier + (r.MinMultiplier-r.NeutralMultiplier)*frac
}

// distribution summarizes the non-zero scores of a scope. Players yet to
// score sit outside the distribution; they are targeted at neutral rather
// than dragging the minimum to zero. ok is false when nobody has scored.
func distribution(points map[string]float64) (lo, median, hi float64, ok bool) {
	scores := make([]float64, 0, len(points))
	for _, s := range points {
		if s > 0 {
			scores = append(scores, s)
		}
	}
	if len(scores) == 0 {
		return 0, 0, 0, false
	}
	sort.Float64s(scores)

	lo, hi = scores[0], scores[len(scores)-1]
	mid := len(scores) / 2
	if len(scores)%2 == 1 {
		median = scores[mid]
	} else {
		median = (scores[mid-1] + scores[mid]) / 2
	}
	return lo, median, hi, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
