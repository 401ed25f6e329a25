package seasonsim

import (
	"context"
	"fmt"
	"log"
	"math"

	service "github.com/seambreak/gully/internal/app"
	"github.com/seambreak/gully/internal/domain/model"
	"github.com/seambreak/gully/internal/domain/rules"
	"github.com/seambreak/gully/internal/domain/types"
)

// pointsTolerance bounds the disagreement between a player record and a
// standings row: the index keeps points in nine-decimal fixed point, so
// the two agree to rounding while a missed fold moves points by whole
// units.
const pointsTolerance = 1e-6

// verifySeason checks the folded season against what the simulation
// submitted: one canonical player per roster entry, a replay that
// reproduces the live totals bit for bit, committed multipliers inside
// the rule bounds, a full resubmission that folds nothing twice, and a
// correctly ordered table. Returns the final standings for export.
func verifySeason(ctx context.Context, config *Config, svc *service.Service, records []model.PerformanceRecord, ruleSet *rules.RuleSet, stats *Stats) ([]types.Standing, error) {
	log.Println("🔍 Verifying folded season...")

	players, err := svc.Players(ctx)
	if err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}
	stats.PlayersResolved = len(players)

	// Every roster entry must resolve to exactly one canonical player;
	// a split or a merge shows up as a count mismatch.
	if len(players) != stats.PlayersRostered {
		return nil, fmt.Errorf("roster resolved to %d players, want %d", len(players), stats.PlayersRostered)
	}
	log.Printf("✅ Identity: %d players resolved, none split or merged", len(players))

	for _, p := range players {
		if p.Totals.Matches != config.Matches {
			return nil, fmt.Errorf("player %s folded %d rounds, want %d",
				p.DisplayName, p.Totals.Matches, config.Matches)
		}
		replayed, err := svc.Replay(ctx, p.Key)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", p.DisplayName, err)
		}
		// History holds performances in fold order, so the replayed
		// sums land on identical floats.
		if replayed != p.Totals {
			return nil, fmt.Errorf("replay for %s diverges from live totals", p.DisplayName)
		}
		if p.Multiplier < ruleSet.MinMultiplier || p.Multiplier > ruleSet.MaxMultiplier {
			return nil, fmt.Errorf("player %s multiplier %.2f outside [%.2f, %.2f]",
				p.DisplayName, p.Multiplier, ruleSet.MinMultiplier, ruleSet.MaxMultiplier)
		}
	}
	log.Printf("✅ Replay: %d players reproduce their live totals", len(players))

	// Re-submitting the whole season synchronously must change nothing:
	// every line was already folded, however it was spelled.
	reapplied := 0
	for _, rec := range records {
		_, applied, err := svc.Submit(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("resubmit %s in %s: %w", rec.Name, rec.MatchID, err)
		}
		if applied {
			reapplied++
		}
	}
	if reapplied > 0 {
		return nil, fmt.Errorf("%d resubmitted lines folded twice", reapplied)
	}
	log.Printf("✅ Idempotence: %d resubmitted lines all dropped", len(records))

	standings, err := svc.Standings(ctx, len(players))
	if err != nil {
		return nil, fmt.Errorf("standings: %w", err)
	}
	stats.StandingsRows = len(standings)
	if err := verifyStandingsOrder(standings); err != nil {
		return nil, err
	}

	// The table and the player record must tell the same story at the top.
	if len(standings) > 0 {
		top := standings[0]
		p, err := svc.Player(ctx, top.PlayerKey)
		if err != nil {
			return nil, fmt.Errorf("top player: %w", err)
		}
		if math.Abs(p.Totals.Points-top.Points) > pointsTolerance {
			return nil, fmt.Errorf("top of table shows %.2f points, player record holds %.2f",
				top.Points, p.Totals.Points)
		}
	}
	log.Println("✅ Standings consistency verified")

	displayStandings(standings, config.TopN, config.Verbose)

	log.Println("✅ Season verification completed")
	return standings, nil
}

// verifyStandingsOrder checks the table is ordered by points, best
// first, under competition ranking: tied totals share a rank and the
// entry after a tie group skips past it.
func verifyStandingsOrder(standings []types.Standing) error {
	for i, row := range standings {
		want := i + 1
		if i > 0 && row.Points == standings[i-1].Points {
			want = standings[i-1].Rank
		}
		if row.Rank != want {
			return fmt.Errorf("standings row %d carries rank %d, want %d", i, row.Rank, want)
		}
		if i > 0 && row.Points > standings[i-1].Points {
			return fmt.Errorf("standings not ordered: row %d outscores row %d", i, i-1)
		}
	}
	return nil
}

// displayStandings shows the top of the season table.
func displayStandings(standings []types.Standing, topN int, verbose bool) {
	if topN > len(standings) {
		topN = len(standings)
	}

	log.Printf("🏆 Top %d of the season table:", topN)
	for _, row := range standings[:topN] {
		log.Printf("   %d. %s (%s) - %.2f pts over %d matches, multiplier %.2f",
			row.Rank, row.DisplayName, row.Club, row.Points, row.Matches, row.Multiplier)
	}

	if verbose && len(standings) > 0 {
		log.Printf(`📊 Points statistics:
   Average: %.2f
   Maximum: %.2f
   Minimum: %.2f
`, calculateAveragePoints(standings), standings[0].Points, standings[len(standings)-1].Points)
	}
}

// calculateAveragePoints averages season points across the table.
func calculateAveragePoints(standings []types.Standing) float64 {
	if len(standings) == 0 {
		return 0
	}

	sum := 0.0
	for _, row := range standings {
		sum += row.Points
	}

	return sum / float64(len(standings))
}
