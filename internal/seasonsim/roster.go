package seasonsim

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seambreak/gully/internal/domain/model"
	"github.com/seambreak/gully/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	variantFormCount   = 3
)

// Season calendar constants.
const (
	daysBetweenRounds = 7
	premierRoundEvery = 3
)

// seasonStart anchors the simulated fixture calendar.
var seasonStart = time.Date(2026, time.April, 4, 14, 0, 0, 0, time.UTC)

// archetype pins a roster player to one kind of cricketer for the whole
// season. The archetype bounds the scorecard lines the player produces,
// which gives the points table a realistic spread for the handicap
// passes to work against.
type archetype int64

const (
	archAnchorBatter archetype = iota
	archAggressiveOpener
	archKeeperBatter
	archAllRounder
	archSeamBowler
	archSpinBowler
	archLowerOrder
	archWildcard

	archetypeCount
)

// profile bounds the scorecard ranges one archetype produces.
type profile struct {
	batChance     float64
	runsMin       int
	runsRange     int
	tempoMin      float64 // runs per ball at the low end
	tempoRange    float64
	dismissChance float64
	bowlChance    float64
	oversMin      int
	oversRange    int
	wicketsMax    int
	econMin       float64
	econRange     float64
	maidenChance  float64
	catchChance   float64
	stumpChance   float64
}

var profiles = map[archetype]profile{
	archAnchorBatter: {
		batChance: 0.95, runsMin: 15, runsRange: 60,
		tempoMin: 0.6, tempoRange: 0.5, dismissChance: 0.6,
		catchChance: 0.3,
	},
	archAggressiveOpener: {
		batChance: 0.95, runsMin: 0, runsRange: 90,
		tempoMin: 1.0, tempoRange: 0.7, dismissChance: 0.75,
		catchChance: 0.25,
	},
	archKeeperBatter: {
		batChance: 0.9, runsMin: 10, runsRange: 50,
		tempoMin: 0.8, tempoRange: 0.5, dismissChance: 0.65,
		catchChance: 0.6, stumpChance: 0.4,
	},
	archAllRounder: {
		batChance: 0.85, runsMin: 5, runsRange: 45,
		tempoMin: 0.7, tempoRange: 0.6, dismissChance: 0.6,
		bowlChance: 0.8, oversMin: 3, oversRange: 5, wicketsMax: 3,
		econMin: 4, econRange: 3, maidenChance: 0.15,
		catchChance: 0.35,
	},
	archSeamBowler: {
		batChance: 0.35, runsMin: 0, runsRange: 12,
		tempoMin: 0.4, tempoRange: 0.6, dismissChance: 0.7,
		bowlChance: 0.95, oversMin: 5, oversRange: 5, wicketsMax: 5,
		econMin: 3.5, econRange: 3, maidenChance: 0.3,
		catchChance: 0.2,
	},
	archSpinBowler: {
		batChance: 0.3, runsMin: 0, runsRange: 10,
		tempoMin: 0.3, tempoRange: 0.5, dismissChance: 0.7,
		bowlChance: 0.95, oversMin: 6, oversRange: 4, wicketsMax: 4,
		econMin: 3, econRange: 2.5, maidenChance: 0.35,
		catchChance: 0.2,
	},
	archLowerOrder: {
		batChance: 0.6, runsMin: 0, runsRange: 25,
		tempoMin: 0.5, tempoRange: 0.8, dismissChance: 0.7,
		bowlChance: 0.3, oversMin: 2, oversRange: 3, wicketsMax: 2,
		econMin: 5, econRange: 3, maidenChance: 0.05,
		catchChance: 0.3,
	},
	archWildcard: {
		batChance: 0.8, runsMin: 0, runsRange: 100,
		tempoMin: 0.4, tempoRange: 1.2, dismissChance: 0.65,
		bowlChance: 0.5, oversMin: 1, oversRange: 8, wicketsMax: 5,
		econMin: 3, econRange: 4, maidenChance: 0.2,
		catchChance: 0.3,
	},
}

// Name pools for roster generation. Each surname is used at most once
// per roster and no surname is a respelling of another, so abbreviated
// or shouted scorecard names still resolve to exactly one player.
var (
	firstNames = []string{
		"Arjun", "Rohan", "Vikram", "Sachin", "Rahul", "Amit",
		"Dev", "Karan", "Nikhil", "Sanjay", "Manish", "Pranav",
		"Aiden", "Liam", "Oliver", "Harry", "Jack", "Ben",
		"Tom", "Sam", "Imran", "Bilal", "Tariq", "Faisal",
	}

	surnames = []string{
		"Sharma", "Kohli", "Bumrah", "Jadeja", "Rahane", "Pant",
		"Pandya", "Shami", "Gill", "Chahal", "Patel", "Iyer",
		"Varma", "Yadav", "Krishna", "Sundar", "Borde", "Samson",
		"Kishan", "Thakur", "Menon", "Nair", "Reddy", "Joshi",
		"Desai", "Mehta", "Kulkarni", "Bhandari", "Chopra", "Malhotra",
		"Saxena", "Bedi", "Amarnath", "Vengsarkar", "Gavaskar", "Tendulkar",
		"Dravid", "Ganguly", "Laxman", "Kumble",
	}

	clubNames = []string{
		"Harbour CC", "Lakeside CC", "Northern Star CC", "Old Mill CC",
		"Cathedral Road CC", "Riverside CC", "Greenfield CC", "Bayview CC",
	}
)

// rosterEntry is one synthetic player on the season roster.
type rosterEntry struct {
	externalID string
	name       string
	club       string
	arch       archetype
}

// buildRoster mints the season roster with unique upstream ids and
// unique surnames. Requests beyond the surname pool are capped.
func buildRoster(ctx context.Context, config *Config, stats *Stats) []rosterEntry {
	n := min(config.Players, len(surnames))
	if n < 1 {
		n = 1
	}
	if n < config.Players {
		logger.Get().Warn(ctx, "roster capped by surname pool",
			logger.Int("requested", config.Players),
			logger.Int("rostered", n))
	}

	roster := make([]rosterEntry, n)
	for i := range roster {
		roster[i] = rosterEntry{
			externalID: uuid.New().String(),
			name:       firstNames[i%len(firstNames)] + " " + surnames[i],
			club:       clubNames[i%len(clubNames)],
			arch:       randomArchetype(),
		}
	}

	stats.PlayersRostered = len(roster)
	logger.Get().Info(ctx, "roster built",
		logger.Int("players", len(roster)),
		logger.Int("clubs", min(len(roster), len(clubNames))))
	return roster
}

// generateSeason produces every scorecard line of the season using a
// pool of generator workers, one round per task. Records come back in
// submission order: round by round, roster order within a round. The
// caller keeps the slice for the replay and idempotence checks at the
// end of the run.
func generateSeason(ctx context.Context, config *Config, roster []rosterEntry, stats *Stats) ([]model.PerformanceRecord, error) {
	logger.Get().Info(ctx, "generating season scorecards",
		logger.Int("players", len(roster)),
		logger.Int("rounds", config.Matches))

	type roundResult struct {
		round   int
		records []model.PerformanceRecord
		err     error
	}
	resultChan := make(chan roundResult, config.Matches)

	workerCount := min(config.Workers, config.Matches)
	if workerCount < 1 {
		workerCount = 1
	}
	roundsPerWorker := config.Matches / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * roundsPerWorker
		end := start + roundsPerWorker
		if worker == workerCount-1 {
			end = config.Matches // Last worker gets remaining rounds
		}

		go func(start, end int) {
			for m := start; m < end; m++ {
				select {
				case <-ctx.Done():
					resultChan <- roundResult{round: m, err: ctx.Err()}
					return
				default:
					resultChan <- roundResult{round: m, records: generateRound(roster, m, config.VariantRate)}
				}
			}
		}(start, end)
	}

	rounds := make([][]model.PerformanceRecord, config.Matches)
	for i := 0; i < config.Matches; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during scorecard generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate round %d: %w", result.round, result.err)
			}
			rounds[result.round] = result.records
		}
	}

	records := make([]model.PerformanceRecord, 0, len(roster)*config.Matches)
	for _, r := range rounds {
		records = append(records, r...)
	}

	// A respelled record travels without its upstream id, which is also
	// how it is counted.
	variants := 0
	for i := range records {
		if records[i].ExternalID == "" {
			variants++
		}
	}

	stats.RecordsGenerated = len(records)
	stats.VariantsSent = variants
	logger.Get().Info(ctx, "generated season scorecards",
		logger.Int("records", len(records)),
		logger.Int("variants", variants))

	return records, nil
}

// generateRound produces one scorecard line per roster player for one
// round. Every player appears in every round so verification can pin
// the expected match count exactly.
func generateRound(roster []rosterEntry, round int, variantRate float64) []model.PerformanceRecord {
	matchID := fmt.Sprintf("round-%03d", round+1)
	date := seasonStart.AddDate(0, 0, round*daysBetweenRounds)
	tier := tierForRound(round)

	records := make([]model.PerformanceRecord, len(roster))
	for i, entry := range roster {
		p := profiles[entry.arch]
		rec := model.PerformanceRecord{
			MatchID:    matchID,
			ExternalID: entry.externalID,
			Name:       entry.name,
			Club:       entry.club,
			Tier:       tier,
			Date:       date,
			Batting:    battingLine(p),
			Bowling:    bowlingLine(p),
			Fielding:   fieldingLine(p),
		}
		// A respelled line loses its upstream id as well, the way a
		// typed-up scorecard does, so resolution has to fall back to
		// the in-club name match.
		if variantRate > 0 && getRandomFloat() < variantRate {
			rec.Name = variantName(entry.name)
			rec.ExternalID = ""
		}
		records[i] = rec
	}
	return records
}

// tierForRound alternates competition grades so tier factors get a
// workout across the season.
func tierForRound(round int) string {
	if round%premierRoundEvery == 0 {
		return "premier"
	}
	return "division-2"
}

// battingLine draws a batting line from the archetype's ranges. Balls
// faced follow from the runs and a drawn tempo; a scoreless innings
// still faces a few deliveries so ducks can happen.
func battingLine(p profile) model.BattingLine {
	if getRandomFloat() > p.batChance {
		return model.BattingLine{}
	}

	runs := p.runsMin + randomInt(p.runsRange+1)
	tempo := p.tempoMin + getRandomFloat()*p.tempoRange
	balls := int(float64(runs) / tempo)
	if balls < 1 {
		balls = 1 + randomInt(11)
	}

	return model.BattingLine{
		Runs:      runs,
		Balls:     balls,
		Fours:     randomInt(runs/8 + 1),
		Sixes:     randomInt(runs/25 + 1),
		Dismissed: getRandomFloat() < p.dismissChance,
	}
}

// bowlingLine draws a bowling line from the archetype's ranges. Whole
// overs only; partial overs add nothing to what the simulation checks.
func bowlingLine(p profile) model.BowlingLine {
	if p.bowlChance == 0 || getRandomFloat() > p.bowlChance {
		return model.BowlingLine{}
	}

	overs := p.oversMin + randomInt(p.oversRange+1)
	econ := p.econMin + getRandomFloat()*p.econRange
	maidens := 0
	if getRandomFloat() < p.maidenChance {
		maidens = 1 + randomInt(2)
	}
	if maidens > overs {
		maidens = overs
	}

	return model.BowlingLine{
		Wickets:  randomInt(p.wicketsMax + 1),
		Overs:    float64(overs),
		Maidens:  maidens,
		Conceded: int(float64(overs) * econ),
	}
}

// fieldingLine draws catches, stumpings and run outs. Run outs are a
// flat chance for everyone on the field.
func fieldingLine(p profile) model.FieldingLine {
	const runOutChance = 0.08

	var f model.FieldingLine
	if getRandomFloat() < p.catchChance {
		f.Catches = 1 + randomInt(2)
	}
	if p.stumpChance > 0 && getRandomFloat() < p.stumpChance {
		f.Stumpings = 1 + randomInt(2)
	}
	if getRandomFloat() < runOutChance {
		f.RunOuts = 1
	}
	return f
}

// variantName respells a roster name the way scorecards do: an
// abbreviated first name, shouting capitals or stray whitespace.
func variantName(name string) string {
	parts := strings.Fields(name)
	n, _ := rand.Int(rand.Reader, big.NewInt(variantFormCount))
	switch n.Int64() {
	case 0:
		if len(parts) == 2 {
			return parts[0][:1] + ". " + parts[1]
		}
		return strings.ToUpper(name)
	case 1:
		return strings.ToUpper(name)
	default:
		return "  " + strings.Join(parts, "  ") + " "
	}
}

// randomArchetype draws an archetype uniformly across the eight kinds.
func randomArchetype() archetype {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(archetypeCount)))
	return archetype(n.Int64())
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomInt returns a random int in [0, n). A bound of zero or less
// returns zero.
func randomInt(n int) int {
	if n <= 0 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}
