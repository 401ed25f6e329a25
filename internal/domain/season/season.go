// Package season folds scored performances into canonical player
// state: totals, match history, milestone counters and idempotence
// bookkeeping.
package season

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seambreak/gully/internal/domain/identity"
	"github.com/seambreak/gully/internal/domain/model"
	"github.com/seambreak/gully/internal/domain/scoring"
	"github.com/seambreak/gully/pkg/metrics"
)

// Store is the slice of the season store the aggregator needs.
type Store interface {
	ResolveOrCreate(ctx context.Context, rec model.PerformanceRecord) (identity.Resolution, error)
	Update(ctx context.Context, key string, fn func(p *model.CanonicalPlayer) (changed bool, err error)) (*model.CanonicalPlayer, bool, error)
	Player(ctx context.Context, key string) (*model.CanonicalPlayer, error)
}

// Aggregator is the interface for folding performances into players.
type Aggregator interface {
	// AddPerformance resolves the record to a canonical player, scores
	// it and folds it into their season. It returns the post-fold
	// player snapshot and whether the record was applied; a match id
	// the player has already been credited for is an idempotent no-op.
	AddPerformance(ctx context.Context, rec model.PerformanceRecord) (*model.CanonicalPlayer, bool, error)

	// Replay recomputes a player's totals from their stored history.
	Replay(ctx context.Context, key string) (model.SeasonTotals, error)
}

type foldAggregator struct {
	store  Store
	engine scoring.Engine
}

// NewAggregator creates an aggregator folding into the given store.
func NewAggregator(store Store, opts ...Option) Aggregator {
	a := &foldAggregator{
		store:  store,
		engine: scoring.NewRuleEngine(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *foldAggregator) AddPerformance(ctx context.Context, rec model.PerformanceRecord) (*model.CanonicalPlayer, bool, error) {
	if strings.TrimSpace(rec.Name) == "" {
		metrics.RecordErrorByComponent("season", "missing_name")
		return nil, false, ErrMissingName
	}
	if strings.TrimSpace(rec.MatchID) == "" {
		metrics.RecordErrorByComponent("season", "missing_match_id")
		return nil, false, ErrMissingMatchID
	}

	res, err := a.store.ResolveOrCreate(ctx, rec)
	if err != nil {
		return nil, false, fmt.Errorf("resolving %q: %w", rec.Name, err)
	}

	player, applied, err := a.store.Update(ctx, res.Key, func(p *model.CanonicalPlayer) (bool, error) {
		if p.Folded(rec.MatchID) {
			return false, nil
		}
		start := time.Now()
		br := a.engine.Score(ctx, rec)
		metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000.0)

		p.Processed[rec.MatchID] = struct{}{}
		p.History = append(p.History, model.HistoryEntry{Performance: rec, Score: br})
		foldInto(&p.Totals, rec, br)
		return true, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("folding match %s: %w", rec.MatchID, err)
	}

	if applied {
		metrics.RecordPerformanceProcessed()
	} else {
		metrics.RecordPerformanceDuplicate()
	}
	return player, applied, nil
}

func (a *foldAggregator) Replay(ctx context.Context, key string) (model.SeasonTotals, error) {
	p, err := a.store.Player(ctx, key)
	if err != nil {
		return model.SeasonTotals{}, fmt.Errorf("loading player %s: %w", key, err)
	}
	return ReplayTotals(p.History), nil
}

// ReplayTotals folds a stored history from scratch. It shares the fold
// path with live ingestion, so incremental totals and a replay agree
// bit for bit.
func ReplayTotals(history []model.HistoryEntry) model.SeasonTotals {
	var t model.SeasonTotals
	for _, h := range history {
		foldInto(&t, h.Performance, h.Score)
	}
	return t
}

// foldInto accumulates one scored performance. Every mutation of season
// totals in the module funnels through here.
func foldInto(t *model.SeasonTotals, rec model.PerformanceRecord, br model.ScoreBreakdown) {
	t.Matches++
	t.Points += br.Total

	bat := rec.Batting
	t.Runs += bat.Runs
	t.Balls += bat.Balls
	t.Fours += bat.Fours
	t.Sixes += bat.Sixes
	if bat.Dismissed {
		t.Dismissals++
	}
	if bat.Batted() {
		t.Innings++
	}
	switch {
	case bat.Runs >= centuryRuns:
		t.Centuries++
	case bat.Runs >= fiftyRuns:
		t.Fifties++
	}
	if bat.Duck() {
		t.Ducks++
	}

	bowl := rec.Bowling
	t.Wickets += bowl.Wickets
	t.Overs += bowl.Overs
	t.Maidens += bowl.Maidens
	t.Conceded += bowl.Conceded
	if bowl.Bowled() {
		t.BowledInnings++
		figures := model.BestBowling{Wickets: bowl.Wickets, Conceded: bowl.Conceded}
		// The first bowled innings always sets the mark; the zero value
		// would otherwise pose as perfect figures.
		if t.BowledInnings == 1 || figures.Better(t.Best) {
			t.Best = figures
		}
	}
	if bowl.Wickets >= fiveWickets {
		t.FiveWicketHauls++
	}

	fld := rec.Fielding
	t.Catches += fld.Catches
	t.Stumpings += fld.Stumpings
	t.RunOuts += fld.RunOuts
}

// Milestone thresholds, matching the scoring bonuses.
const (
	fiftyRuns   = 50
	centuryRuns = 100
	fiveWickets = 5
)
