package model

import "time"

// ScopeKind distinguishes the comparison group of a handicap pass.
type ScopeKind string

const (
	// ScopeGlobal compares every player in the season registry.
	ScopeGlobal ScopeKind = "global"
	// ScopeLeague compares only the roster of one fantasy league.
	ScopeLeague ScopeKind = "league"
)

// Scope identifies a handicap comparison group.
type Scope struct {
	Kind   ScopeKind
	League string // league identifier, empty for the global scope
}

// GlobalScope returns the season-wide scope.
func GlobalScope() Scope {
	return Scope{Kind: ScopeGlobal}
}

// LeagueScope returns the scope of one league's roster.
func LeagueScope(league string) Scope {
	return Scope{Kind: ScopeLeague, League: league}
}

// String renders the scope as a stable map key, "global" or "league/<id>".
func (s Scope) String() string {
	if s.Kind == ScopeLeague {
		return string(ScopeLeague) + "/" + s.League
	}
	return string(ScopeGlobal)
}

// MultiplierSnapshot is the wholesale output of one handicap pass. A new
// pass replaces the previous snapshot for its scope; values are never
// edited in place.
type MultiplierSnapshot struct {
	Scope      Scope
	ComputedAt time.Time
	Generation uint64 // store generation the pass observed
	Values     map[string]float64
}

// Value looks up a player's multiplier in the snapshot.
func (s MultiplierSnapshot) Value(key string) (float64, bool) {
	v, ok := s.Values[key]
	return v, ok
}
