// Package repository keeps the canonical season state: the player
// registry, per-player season totals and the standings index.
package repository

import (
	"context"

	"github.com/seambreak/gully/internal/domain/identity"
	"github.com/seambreak/gully/internal/domain/model"
	"github.com/seambreak/gully/internal/domain/types"
)

// UpdateFunc mutates a player's live state inside its exclusive
// section. It reports whether anything changed so idempotent replays
// leave the standings index and fold generation untouched. An alias so
// callers can satisfy Store-shaped interfaces with plain closures.
type UpdateFunc = func(p *model.CanonicalPlayer) (changed bool, err error)

// Adjuster computes fresh multipliers from a consistent snapshot of
// season points and current multipliers. The store stamps the returned
// snapshot with the fold generation it was taken at.
type Adjuster func(points, previous map[string]float64) model.MultiplierSnapshot

// Store is the interface for season state access.
type Store interface {
	// ResolveOrCreate maps a performance record to a canonical player
	// key, minting a new player when no existing one matches.
	ResolveOrCreate(ctx context.Context, rec model.PerformanceRecord) (identity.Resolution, error)

	// Update runs fn against the player's live state and returns a
	// clone of the result. The reported bool mirrors fn's changed flag.
	Update(ctx context.Context, key string, fn UpdateFunc) (*model.CanonicalPlayer, bool, error)

	// Player returns a clone of one player's state.
	Player(ctx context.Context, key string) (*model.CanonicalPlayer, error)

	// Players returns clones of every player in registration order.
	Players(ctx context.Context) []*model.CanonicalPlayer

	// Standings returns the top n standings rows.
	Standings(ctx context.Context, n int) ([]types.Standing, error)

	// Rank returns the standings row for one player.
	Rank(ctx context.Context, key string) (types.Standing, error)

	// AdjustGlobal runs a handicap pass over every player with
	// ingestion paused, commits the resulting multipliers and returns
	// the snapshot.
	AdjustGlobal(ctx context.Context, adjust Adjuster) model.MultiplierSnapshot

	// Count returns the number of registered players.
	Count(ctx context.Context) int

	// Generation returns the number of folds applied so far.
	Generation(ctx context.Context) uint64
}
