// Package rules defines the scoring rule set and its loading hooks.
//
// Conventions:
// - A RuleSet is immutable once handed to an engine; reload by building a
//   new one and constructing new engines.
// - All loading functions accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package rules

import "context"

// RuleSet contains every tunable constant of scoring and handicapping.
// Flat keys keep file and environment layering unambiguous.
type RuleSet struct {
	// PointsPerRun is the base batting award before strike-rate scaling.
	PointsPerRun float64 `koanf:"points_per_run"`

	// PointsPerWicket is the base bowling award before economy scaling.
	PointsPerWicket float64 `koanf:"points_per_wicket"`

	// PointsPerMaiden is awarded per maiden over, unscaled.
	PointsPerMaiden float64 `koanf:"points_per_maiden"`

	// PointsPerCatch, PointsPerStumping and PointsPerRunOut are flat
	// fielding awards.
	PointsPerCatch    float64 `koanf:"points_per_catch"`
	PointsPerStumping float64 `koanf:"points_per_stumping"`
	PointsPerRunOut   float64 `koanf:"points_per_run_out"`

	// FiftyBonus applies at fifty or more runs, CenturyBonus at a hundred
	// or more. Both apply to a century.
	FiftyBonus   float64 `koanf:"fifty_bonus"`
	CenturyBonus float64 `koanf:"century_bonus"`

	// FiveWicketBonus applies at five or more wickets in an innings.
	FiveWicketBonus float64 `koanf:"five_wicket_bonus"`

	// DuckPenalty is subtracted for a dismissal on zero having faced a ball.
	DuckPenalty float64 `koanf:"duck_penalty"`

	// MinMultiplier, NeutralMultiplier and MaxMultiplier bound the
	// handicap range; Drift is the per-pass blend fraction toward target.
	MinMultiplier     float64 `koanf:"min_multiplier"`
	NeutralMultiplier float64 `koanf:"neutral_multiplier"`
	MaxMultiplier     float64 `koanf:"max_multiplier"`
	Drift             float64 `koanf:"drift"`

	// TierFactors scales component points by competition grade.
	TierFactors map[string]float64 `koanf:"tier_factors"`

	// DefaultTierFactor is used for unknown or empty grades.
	DefaultTierFactor float64 `koanf:"default_tier_factor"`
}

// Default creates a RuleSet with the standard season constants. Context is
// accepted first to satisfy the project-wide convention; it is reserved for
// future use and is currently unused.
func Default(_ context.Context) *RuleSet {
	return &RuleSet{
		PointsPerRun:      1,
		PointsPerWicket:   12,
		PointsPerMaiden:   4,
		PointsPerCatch:    8,
		PointsPerStumping: 10,
		PointsPerRunOut:   6,
		FiftyBonus:        8,
		CenturyBonus:      16,
		FiveWicketBonus:   16,
		DuckPenalty:       4,
		MinMultiplier:     0.5,
		NeutralMultiplier: 1.0,
		MaxMultiplier:     2.0,
		Drift:             0.15,
		TierFactors: map[string]float64{
			"premier": 1.2,
		},
		DefaultTierFactor: 1.0,
	}
}

// FactorFor returns the component scale for a competition grade, falling
// back to the default factor for grades the rule set does not name.
func (r *RuleSet) FactorFor(tier string) float64 {
	if f, ok := r.TierFactors[tier]; ok {
		return f
	}
	return r.DefaultTierFactor
}

// Validate checks internal consistency of the rule set.
func (r *RuleSet) Validate() error {
	for name, v := range map[string]float64{
		"points_per_run":      r.PointsPerRun,
		"points_per_wicket":   r.PointsPerWicket,
		"points_per_maiden":   r.PointsPerMaiden,
		"points_per_catch":    r.PointsPerCatch,
		"points_per_stumping": r.PointsPerStumping,
		"points_per_run_out":  r.PointsPerRunOut,
		"fifty_bonus":         r.FiftyBonus,
		"century_bonus":       r.CenturyBonus,
		"five_wicket_bonus":   r.FiveWicketBonus,
		"duck_penalty":        r.DuckPenalty,
	} {
		if v < 0 {
			return invalidf("%s must not be negative, got %v", name, v)
		}
	}
	if r.MinMultiplier <= 0 {
		return invalidf("min_multiplier must be positive, got %v", r.MinMultiplier)
	}
	if r.MinMultiplier > r.NeutralMultiplier || r.NeutralMultiplier > r.MaxMultiplier {
		return invalidf("multiplier bounds must be ordered min <= neutral <= max, got %v/%v/%v",
			r.MinMultiplier, r.NeutralMultiplier, r.MaxMultiplier)
	}
	if r.Drift <= 0 || r.Drift > 1 {
		return invalidf("drift must be in (0, 1], got %v", r.Drift)
	}
	if r.DefaultTierFactor <= 0 {
		return invalidf("default_tier_factor must be positive, got %v", r.DefaultTierFactor)
	}
	for tier, f := range r.TierFactors {
		if f <= 0 {
			return invalidf("tier_factors[%s] must be positive, got %v", tier, f)
		}
	}
	return nil
}
