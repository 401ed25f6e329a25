package model

// Provenance records how a player's identity was established.
type Provenance string

const (
	// ProvenanceNameDerived marks players minted from a name/club pair only.
	ProvenanceNameDerived Provenance = "name_derived"
	// ProvenanceIdentifierConfirmed marks players tied to a stable upstream id.
	ProvenanceIdentifierConfirmed Provenance = "identifier_confirmed"
)

// Promote upgrades name-derived provenance to identifier-confirmed.
// Promotion is one way; a confirmed player stays confirmed.
func (p Provenance) Promote() Provenance {
	if p == ProvenanceNameDerived {
		return ProvenanceIdentifierConfirmed
	}
	return p
}

// HistoryEntry pairs a folded performance with the breakdown it scored.
type HistoryEntry struct {
	Performance PerformanceRecord
	Score       ScoreBreakdown
}

// BestBowling holds a bowler's best innings figures, compared by most
// wickets first and fewest runs conceded second.
type BestBowling struct {
	Wickets  int
	Conceded int
}

// Better reports whether b beats o under the wickets-then-conceded order.
func (b BestBowling) Better(o BestBowling) bool {
	if b.Wickets != o.Wickets {
		return b.Wickets > o.Wickets
	}
	return b.Conceded < o.Conceded
}

// SeasonTotals accumulates every numeric scorecard field together with
// the innings and milestone counters the derived statistics need.
// Averages are computed from these sums on demand, never stored.
type SeasonTotals struct {
	Matches         int
	Points          float64
	Runs            int
	Balls           int
	Fours           int
	Sixes           int
	Dismissals      int
	Innings         int // innings with at least one ball faced
	Wickets         int
	Overs           float64
	Maidens         int
	Conceded        int
	BowledInnings   int
	Catches         int
	Stumpings       int
	RunOuts         int
	Fifties         int // innings of 50 to 99
	Centuries       int
	Ducks           int
	FiveWicketHauls int
	Best            BestBowling
}

// BattingAverage is runs over estimated dismissals. A player never
// dismissed divides by one so the average stays defined.
func (t SeasonTotals) BattingAverage() float64 {
	d := t.Dismissals
	if d < 1 {
		d = 1
	}
	return float64(t.Runs) / float64(d)
}

// StrikeRate is runs per hundred balls, zero before any ball is faced.
func (t SeasonTotals) StrikeRate() float64 {
	if t.Balls == 0 {
		return 0
	}
	return float64(t.Runs) / float64(t.Balls) * 100
}

// BowlingAverage is runs conceded per wicket, zero before any wicket.
func (t SeasonTotals) BowlingAverage() float64 {
	if t.Wickets == 0 {
		return 0
	}
	return float64(t.Conceded) / float64(t.Wickets)
}

// Economy is runs conceded per over, zero before any over is bowled.
func (t SeasonTotals) Economy() float64 {
	if t.Overs == 0 {
		return 0
	}
	return float64(t.Conceded) / t.Overs
}

// PointsPerMatch is season fantasy points per folded match.
func (t SeasonTotals) PointsPerMatch() float64 {
	if t.Matches == 0 {
		return 0
	}
	return t.Points / float64(t.Matches)
}

// CanonicalPlayer is the resolved identity a season's performances fold
// into. One exists per real player per season; records that arrive under
// name variants all land here.
type CanonicalPlayer struct {
	Key         string              // stable key minted at first sight
	DisplayName string              // name from the record that minted the player
	Club        string
	ExternalID  string              // stable upstream id once one has been seen
	Provenance  Provenance
	Multiplier  float64             // current global handicap multiplier
	Totals      SeasonTotals
	History     []HistoryEntry
	Processed   map[string]struct{} // match ids already folded
}

// Folded reports whether the match has already been folded into totals.
func (p *CanonicalPlayer) Folded(matchID string) bool {
	_, ok := p.Processed[matchID]
	return ok
}

// Clone returns a deep copy safe to hand outside the store's locks.
func (p *CanonicalPlayer) Clone() *CanonicalPlayer {
	if p == nil {
		return nil
	}
	cp := *p
	cp.History = make([]HistoryEntry, len(p.History))
	copy(cp.History, p.History)
	cp.Processed = make(map[string]struct{}, len(p.Processed))
	for id := range p.Processed {
		cp.Processed[id] = struct{}{}
	}
	return &cp
}
