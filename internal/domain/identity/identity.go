// Package identity ties raw performance records to canonical player keys.
//
// Scorecards rarely agree on spelling: the same player arrives as
// "Rohit Sharma", "R. Sharma" or "ROHIT SHARMA", usually with no stable
// identifier. Resolution prefers a stable identifier when one is present,
// then falls back to fuzzy name matching within the record's club, and
// otherwise reports no match so the caller can mint a fresh player.
package identity

import (
	"context"

	model "github.com/seambreak/gully/internal/domain/model"
)

// Default resolver configuration.
const defaultThreshold = 0.85

// Method records how a record was tied to a player key.
type Method string

const (
	// MethodExact is a stable-identifier hit.
	MethodExact Method = "exact"
	// MethodFuzzy is a name match within the record's club.
	MethodFuzzy Method = "fuzzy"
	// MethodMinted marks a freshly created player. The resolver never
	// returns it; stores tag mints with it after a failed resolve.
	MethodMinted Method = "minted"
)

// Resolution is the outcome of resolving one record.
type Resolution struct {
	Key     string
	Method  Method
	Promote bool // name match that should confirm the player's provenance
}

// Candidate is one registered player considered for a fuzzy match.
type Candidate struct {
	Key        string
	Name       string
	Provenance model.Provenance
}

// Registry supplies the candidates a record may belong to. Implementations
// must return club candidates in registration order; the resolver relies
// on that order to break ratio ties deterministically.
type Registry interface {
	// ByExternalID returns the player key bound to a stable upstream id.
	ByExternalID(ctx context.Context, id string) (string, bool)

	// ClubCandidates returns the club's players in registration order.
	ClubCandidates(ctx context.Context, club string) []Candidate
}

// Resolver decides which canonical player a record belongs to.
type Resolver interface {
	// Resolve reports the matched player and how the match was made.
	// A false return means no registered player fits and the caller
	// should mint one.
	Resolve(ctx context.Context, rec model.PerformanceRecord, reg Registry) (Resolution, bool)
}

// nameResolver implements Resolver with identifier-first resolution and
// in-club fuzzy name matching.
type nameResolver struct {
	threshold float64
	sim       Similarity
}

// NewResolver creates a resolver with configuration options.
func NewResolver(opts ...Option) Resolver {
	r := &nameResolver{
		threshold: defaultThreshold,
		sim:       LevenshteinSimilarity{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve implements Resolver.
func (r *nameResolver) Resolve(ctx context.Context, rec model.PerformanceRecord, reg Registry) (Resolution, bool) {
	if rec.ExternalID != "" {
		if key, ok := reg.ByExternalID(ctx, rec.ExternalID); ok {
			return Resolution{Key: key, Method: MethodExact}, true
		}
	}

	norm := Normalize(rec.Name)
	if norm == "" {
		return Resolution{}, false
	}
	toks := Tokens(rec.Name)

	// Scan in registration order and require a strictly better ratio to
	// displace the current best, so equal-ratio candidates resolve to the
	// earliest-registered player on every run.
	var (
		best      Candidate
		bestRatio float64
		found     bool
	)
	for _, cand := range reg.ClubCandidates(ctx, rec.Club) {
		cn := Normalize(cand.Name)
		ratio := r.sim.Ratio(norm, cn)
		if ratio < r.threshold && !containsName(norm, cn) && !abbreviationMatch(toks, Tokens(cand.Name)) {
			continue
		}
		if !found || ratio > bestRatio {
			best, bestRatio, found = cand, ratio, true
		}
	}
	if !found {
		return Resolution{}, false
	}

	promote := rec.ExternalID != "" && best.Provenance == model.ProvenanceNameDerived
	return Resolution{Key: best.Key, Method: MethodFuzzy, Promote: promote}, true
}
