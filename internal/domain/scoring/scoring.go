// Package scoring turns one performance record into fantasy points.
package scoring

import (
	"context"
	"math"

	model "github.com/seambreak/gully/internal/domain/model"
	"github.com/seambreak/gully/internal/domain/rules"
)

// Milestone thresholds and the economy scaling cap.
const (
	fiftyRuns       = 50
	centuryRuns     = 100
	fiveWickets     = 5
	maxEconomyScale = 6.0
)

// Option applies a configuration option to the RuleEngine.
type Option func(*RuleEngine)

// WithRules sets the rule set the engine scores under. The rule set is
// copied so later edits by the caller cannot skew a pass in flight.
func WithRules(rs *rules.RuleSet) Option {
	return func(e *RuleEngine) {
		if rs == nil {
			return
		}
		cp := *rs
		cp.TierFactors = make(map[string]float64, len(rs.TierFactors))
		for tier, f := range rs.TierFactors {
			cp.TierFactors[tier] = f
		}
		e.rules = &cp
	}
}

// Engine computes a fantasy score breakdown for a single performance.
// Scoring is a total function: any record scores, a zero record scores
// zero, and the same record always scores the same value.
type Engine interface {
	// Score computes the breakdown for one record.
	Score(ctx context.Context, rec model.PerformanceRecord) model.ScoreBreakdown
}

// RuleEngine implements Engine under a fixed rule set.
type RuleEngine struct {
	rules *rules.RuleSet
}

// NewRuleEngine creates an engine with configuration options. Without
// WithRules it scores under the default rule set.
func NewRuleEngine(opts ...Option) *RuleEngine {
	e := &RuleEngine{
		rules: rules.Default(context.Background()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the breakdown for one record. Context is accepted to
// satisfy the project-wide convention; the computation never blocks.
func (e *RuleEngine) Score(_ context.Context, rec model.PerformanceRecord) model.ScoreBreakdown {
	factor := e.rules.FactorFor(rec.Tier)

	batting, battingBonus := e.batting(rec.Batting)
	bowling, bowlingBonus := e.bowling(rec.Bowling)
	fielding := e.fielding(rec.Fielding)

	b := model.ScoreBreakdown{
		Batting:  batting * factor,
		Bowling:  bowling * factor,
		Fielding: fielding * factor,
		Bonus:    (battingBonus + bowlingBonus) * factor,
	}

	// The floor applies to the grand total only; a duck-heavy breakdown
	// keeps its negative batting component.
	total := b.Batting + b.Bowling + b.Fielding
	if total < 0 {
		total = 0
	}
	b.Total = total
	return b
}

// batting returns the batting component and the bonus portion inside it.
// Runs are scaled by strike rate over 100 once any ball has been faced,
// so a run-a-ball knock scores exactly its base points.
func (e *RuleEngine) batting(line model.BattingLine) (points, bonus float64) {
	base := float64(line.Runs) * e.rules.PointsPerRun
	if line.Balls > 0 && line.Runs > 0 {
		sr := float64(line.Runs) / float64(line.Balls) * 100
		base *= sr / 100
	}
	if line.Runs >= fiftyRuns {
		bonus += e.rules.FiftyBonus
	}
	if line.Runs >= centuryRuns {
		bonus += e.rules.CenturyBonus
	}
	if line.Duck() {
		bonus -= e.rules.DuckPenalty
	}
	return base + bonus, bonus
}

// bowling returns the bowling component and the bonus portion inside it.
// Wicket points are scaled by economy: six an over is par, anything
// cheaper scales up toward the cap, anything more expensive scales down.
// Maiden points are never scaled.
func (e *RuleEngine) bowling(line model.BowlingLine) (points, bonus float64) {
	base := float64(line.Wickets) * e.rules.PointsPerWicket
	if line.Overs > 0 && line.Wickets > 0 {
		scale := maxEconomyScale
		if econ := float64(line.Conceded) / line.Overs; econ > 0 {
			scale = math.Min(maxEconomyScale, maxEconomyScale/econ)
		}
		base *= scale
	}
	base += float64(line.Maidens) * e.rules.PointsPerMaiden
	if line.Wickets >= fiveWickets {
		bonus += e.rules.FiveWicketBonus
	}
	return base + bonus, bonus
}

// fielding returns the flat fielding component.
func (e *RuleEngine) fielding(line model.FieldingLine) float64 {
	return float64(line.Catches)*e.rules.PointsPerCatch +
		float64(line.Stumpings)*e.rules.PointsPerStumping +
		float64(line.RunOuts)*e.rules.PointsPerRunOut
}
