// Package model contains domain models passed between layers.
package model

import "time"

// PerformanceRecord is one player's line in one match scorecard as
// delivered by an upstream extractor. Any stat block may be zero: a
// specialist bowler has an empty batting line, a non-keeper never stumps.
type PerformanceRecord struct {
	MatchID    string    // scorecard identifier, unique within a season
	ExternalID string    // stable upstream player id, often absent
	Name       string    // display name as printed on the scorecard
	Club       string    // club the player appeared for
	Tier       string    // competition grade, e.g. "premier", "division-2"
	Date       time.Time // match date
	Batting    BattingLine
	Bowling    BowlingLine
	Fielding   FieldingLine
}

// BattingLine is the batting portion of a scorecard line.
type BattingLine struct {
	Runs      int
	Balls     int
	Fours     int
	Sixes     int
	Dismissed bool
}

// Batted reports whether the player faced at least one delivery.
func (b BattingLine) Batted() bool {
	return b.Balls > 0
}

// Duck reports a dismissal for zero having faced at least one ball.
// A not-out zero or a "did not bat" line is not a duck.
func (b BattingLine) Duck() bool {
	return b.Dismissed && b.Runs == 0 && b.Balls > 0
}

// BowlingLine is the bowling portion of a scorecard line. Overs are
// expressed as a decimal fraction of six-ball overs.
type BowlingLine struct {
	Wickets  int
	Overs    float64
	Maidens  int
	Conceded int // runs conceded
}

// Bowled reports whether the player sent down any deliveries.
func (b BowlingLine) Bowled() bool {
	return b.Overs > 0 || b.Wickets > 0
}

// FieldingLine is the fielding portion of a scorecard line.
type FieldingLine struct {
	Catches   int
	Stumpings int
	RunOuts   int
}
