package repository

import (
	"context"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/seambreak/gully/internal/domain/identity"
	"github.com/seambreak/gully/internal/domain/model"
	"github.com/seambreak/gully/internal/domain/types"
	"github.com/seambreak/gully/pkg/metrics"
)

// playerNamespace seeds deterministic player keys: the same club and
// normalized name mint the same key on every run.
var playerNamespace = uuid.MustParse("7b1d60a3-5a4c-4d51-9c7e-2f8a91d34b6f")

// MemStore holds the whole season in memory.
//
// Lock order is registry mutex, then a player mutex, then the standings
// index mutex. The ingestion gate sits outside all three: folds hold it
// shared, handicap passes hold it exclusive so the points they snapshot
// stay frozen until the new multipliers commit.
type MemStore struct {
	resolver          identity.Resolver
	initialMultiplier float64

	gate sync.RWMutex

	mu         sync.RWMutex
	players    map[string]*model.CanonicalPlayer
	locks      map[string]*sync.Mutex
	clubs      map[string][]string // club -> keys in registration order
	byExternal map[string]string
	order      []string // registration order across clubs

	treapMu sync.RWMutex
	root    *node

	generation atomic.Uint64
}

// NewMemStore creates an empty season store.
func NewMemStore(_ context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		resolver:          identity.NewResolver(),
		initialMultiplier: 1.0,
		players:           make(map[string]*model.CanonicalPlayer),
		locks:             make(map[string]*sync.Mutex),
		clubs:             make(map[string][]string),
		byExternal:        make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lockedView adapts the registry maps to identity.Registry. Callers
// must hold s.mu. Candidate order follows registration order, which the
// resolver relies on for tie-breaking.
type lockedView struct {
	s *MemStore
}

func (v lockedView) ByExternalID(_ context.Context, id string) (string, bool) {
	key, ok := v.s.byExternal[id]
	return key, ok
}

func (v lockedView) ClubCandidates(_ context.Context, club string) []identity.Candidate {
	keys := v.s.clubs[club]
	out := make([]identity.Candidate, 0, len(keys))
	for _, k := range keys {
		p := v.s.players[k]
		out = append(out, identity.Candidate{
			Key:        k,
			Name:       p.DisplayName,
			Provenance: p.Provenance,
		})
	}
	return out
}

// ResolveOrCreate maps a record to a canonical player key, minting a
// new player when nothing matches.
func (s *MemStore) ResolveOrCreate(ctx context.Context, rec model.PerformanceRecord) (identity.Resolution, error) {
	// Fast path: resolve under the read lock. Most records belong to a
	// player the registry already knows.
	s.mu.RLock()
	res, ok := s.resolver.Resolve(ctx, rec, lockedView{s})
	s.mu.RUnlock()
	if ok && !res.Promote {
		metrics.RecordResolution(string(res.Method))
		return res, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-resolve: another goroutine may have minted or promoted the
	// player between the two locks.
	res, ok = s.resolver.Resolve(ctx, rec, lockedView{s})
	if ok {
		if res.Promote {
			s.promoteLocked(res.Key, rec.ExternalID)
		}
		metrics.RecordResolution(string(res.Method))
		return res, nil
	}

	norm := identity.Normalize(rec.Name)
	if norm == "" {
		metrics.RecordErrorByComponent("repository", "unresolvable")
		return identity.Resolution{}, ErrUnresolvable
	}
	key := s.mintLocked(rec, norm)
	metrics.RecordResolution(string(identity.MethodMinted))
	return identity.Resolution{Key: key, Method: identity.MethodMinted}, nil
}

// promoteLocked attaches an external identifier to a name-derived
// player. Caller holds s.mu exclusively.
func (s *MemStore) promoteLocked(key, externalID string) {
	p := s.players[key]
	lock := s.locks[key]
	lock.Lock()
	defer lock.Unlock()
	if p.ExternalID != "" {
		return
	}
	p.ExternalID = externalID
	p.Provenance = p.Provenance.Promote()
	s.byExternal[externalID] = key
	metrics.RecordPromotion()
}

// mintLocked registers a new canonical player. Caller holds s.mu
// exclusively.
func (s *MemStore) mintLocked(rec model.PerformanceRecord, norm string) string {
	key := uuid.NewSHA1(playerNamespace, []byte(rec.Club+"/"+norm)).String()
	if _, exists := s.players[key]; exists {
		// Same club and normalized name always resolve before minting,
		// so an occupied key means the player is already registered.
		return key
	}

	p := &model.CanonicalPlayer{
		Key:         key,
		DisplayName: strings.TrimSpace(rec.Name),
		Club:        rec.Club,
		Provenance:  model.ProvenanceNameDerived,
		Multiplier:  s.initialMultiplier,
		Processed:   make(map[string]struct{}),
	}
	if rec.ExternalID != "" {
		p.ExternalID = rec.ExternalID
		p.Provenance = model.ProvenanceIdentifierConfirmed
		s.byExternal[rec.ExternalID] = key
	}
	s.players[key] = p
	s.locks[key] = &sync.Mutex{}
	s.clubs[rec.Club] = append(s.clubs[rec.Club], key)
	s.order = append(s.order, key)

	s.treapMu.Lock()
	s.root = insertNode(s.root, key, 0)
	s.treapMu.Unlock()

	metrics.UpdateTotalPlayers(len(s.players))
	return key
}

// Update runs fn against the player's live state and returns a clone of
// the result. The standings index is rewritten inside the player's
// exclusive section so concurrent folds never leave a stale row behind.
func (s *MemStore) Update(ctx context.Context, key string, fn UpdateFunc) (*model.CanonicalPlayer, bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	s.gate.RLock()
	defer s.gate.RUnlock()

	s.mu.RLock()
	p := s.players[key]
	lock := s.locks[key]
	s.mu.RUnlock()
	if p == nil {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, false, ErrNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	oldPoints := p.Totals.Points
	changed, err := fn(p)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "update")
		return nil, false, err
	}
	if changed {
		if p.Totals.Points != oldPoints {
			s.reindex(key, oldPoints, p.Totals.Points)
		}
		s.generation.Add(1)
		metrics.RecordFoldApplied()
	}
	return p.Clone(), changed, nil
}

func (s *MemStore) reindex(key string, oldPoints, newPoints float64) {
	s.treapMu.Lock()
	s.root = deleteNode(s.root, key, toFixedPoint(oldPoints))
	s.root = insertNode(s.root, key, toFixedPoint(newPoints))
	s.treapMu.Unlock()
}

// Player returns a clone of one player's state.
func (s *MemStore) Player(_ context.Context, key string) (*model.CanonicalPlayer, error) {
	s.mu.RLock()
	p := s.players[key]
	lock := s.locks[key]
	s.mu.RUnlock()
	if p == nil {
		return nil, ErrNotFound
	}
	lock.Lock()
	defer lock.Unlock()
	return p.Clone(), nil
}

// Players returns clones of every player in registration order.
func (s *MemStore) Players(_ context.Context) []*model.CanonicalPlayer {
	s.mu.RLock()
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	ptrs := make([]*model.CanonicalPlayer, len(keys))
	lks := make([]*sync.Mutex, len(keys))
	for i, k := range keys {
		ptrs[i] = s.players[k]
		lks[i] = s.locks[k]
	}
	s.mu.RUnlock()

	out := make([]*model.CanonicalPlayer, 0, len(keys))
	for i := range keys {
		lks[i].Lock()
		out = append(out, ptrs[i].Clone())
		lks[i].Unlock()
	}
	return out
}

// Standings returns the top n standings rows.
func (s *MemStore) Standings(_ context.Context, n int) ([]types.Standing, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.treapMu.RLock()
	entries := make([]indexEntry, 0, min(n, nsize(s.root)))
	collectOrdered(s.root, n, &entries)
	s.treapMu.RUnlock()

	return s.rows(entries), nil
}

// Rank returns the standings row for one player.
func (s *MemStore) Rank(_ context.Context, key string) (types.Standing, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	s.mu.RLock()
	_, exists := s.players[key]
	s.mu.RUnlock()
	if !exists {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Standing{}, ErrNotFound
	}

	s.treapMu.RLock()
	entries := make([]indexEntry, 0, nsize(s.root))
	collectOrdered(s.root, -1, &entries)
	s.treapMu.RUnlock()

	ranks := ranksWithTies(entries)
	for i, e := range entries {
		if e.key == key {
			rows := s.rows(entries[i : i+1])
			if len(rows) == 0 {
				break
			}
			row := rows[0]
			row.Rank = ranks[i]
			return row, nil
		}
	}
	return types.Standing{}, ErrNotFound
}

// rows joins ordered index entries with registry state. Point totals
// come from the index so the returned order is always internally
// consistent.
func (s *MemStore) rows(entries []indexEntry) []types.Standing {
	ranks := ranksWithTies(entries)

	s.mu.RLock()
	ptrs := make([]*model.CanonicalPlayer, len(entries))
	lks := make([]*sync.Mutex, len(entries))
	for i, e := range entries {
		ptrs[i] = s.players[e.key]
		lks[i] = s.locks[e.key]
	}
	s.mu.RUnlock()

	out := make([]types.Standing, 0, len(entries))
	for i, e := range entries {
		if ptrs[i] == nil {
			continue
		}
		lks[i].Lock()
		out = append(out, types.Standing{
			Rank:        ranks[i],
			PlayerKey:   e.key,
			DisplayName: ptrs[i].DisplayName,
			Club:        ptrs[i].Club,
			Matches:     ptrs[i].Totals.Matches,
			Points:      toFloat(e.points),
			Multiplier:  ptrs[i].Multiplier,
		})
		lks[i].Unlock()
	}
	return out
}

// AdjustGlobal runs a handicap pass over every player. The exclusive
// gate pauses folds so points, previous multipliers and the committed
// result all belong to one consistent moment.
func (s *MemStore) AdjustGlobal(_ context.Context, adjust Adjuster) model.MultiplierSnapshot {
	start := time.Now()

	s.gate.Lock()
	defer s.gate.Unlock()

	s.mu.RLock()
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	ptrs := make([]*model.CanonicalPlayer, len(keys))
	lks := make([]*sync.Mutex, len(keys))
	for i, k := range keys {
		ptrs[i] = s.players[k]
		lks[i] = s.locks[k]
	}
	s.mu.RUnlock()

	points := make(map[string]float64, len(keys))
	previous := make(map[string]float64, len(keys))
	for i, k := range keys {
		lks[i].Lock()
		points[k] = ptrs[i].Totals.Points
		previous[k] = ptrs[i].Multiplier
		lks[i].Unlock()
	}

	snap := adjust(points, previous)
	snap.Generation = s.generation.Load()

	for i, k := range keys {
		v, ok := snap.Values[k]
		if !ok {
			continue
		}
		lks[i].Lock()
		if ptrs[i].Multiplier != v {
			metrics.RecordMultiplierShift(math.Abs(v - ptrs[i].Multiplier))
			ptrs[i].Multiplier = v
		}
		lks[i].Unlock()
	}

	metrics.RecordHandicapPass(float64(time.Since(start).Microseconds()) / 1000.0)
	metrics.UpdateHandicapLastUnix(float64(time.Now().Unix()))
	return snap
}

// Count returns the number of registered players.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Generation returns the number of folds applied so far.
func (s *MemStore) Generation(_ context.Context) uint64 {
	return s.generation.Load()
}
