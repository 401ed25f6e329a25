// Package service wires the season pipeline behind one facade: record
// queue, worker pool, aggregator, player store and handicap engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	recordqueue "github.com/seambreak/gully/internal/adapters/ingest/queue"
	workerpool "github.com/seambreak/gully/internal/adapters/ingest/worker"
	repository "github.com/seambreak/gully/internal/adapters/repository"
	"github.com/seambreak/gully/internal/domain/dedupe"
	"github.com/seambreak/gully/internal/domain/handicap"
	"github.com/seambreak/gully/internal/domain/identity"
	"github.com/seambreak/gully/internal/domain/model"
	"github.com/seambreak/gully/internal/domain/rules"
	"github.com/seambreak/gully/internal/domain/scoring"
	"github.com/seambreak/gully/internal/domain/season"
	"github.com/seambreak/gully/internal/domain/types"
	"github.com/seambreak/gully/pkg/logger"
	"github.com/seambreak/gully/pkg/metrics"
)

// ErrNotStarted reports use of the service before Start.
var ErrNotStarted = errors.New("service not started")

// Default service configuration constants.
const (
	defaultQueueSize      = 100000
	defaultDedupeSize     = 50000
	defaultMatchThreshold = 0.85
	defaultMaxStandings   = 1000
)

// Service implements the season fantasy pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components, built in Start.
	store       repository.Store
	aggregator  season.Aggregator
	deduper     dedupe.Deduper
	recordQueue recordqueue.Queue
	workerPool  *workerpool.Pool
	handicapper handicap.Engine

	// Retained handicap snapshots, one per scope key.
	snapMu    sync.RWMutex
	snapshots map[string]model.MultiplierSnapshot

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	matchThreshold float64
	maxStandings   int
	ruleSet        *rules.RuleSet

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the record queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submission fingerprint cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMatchThreshold sets the similarity ratio the identity resolver
// accepts a name match at.
func WithMatchThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold <= 1 {
			s.matchThreshold = threshold
		}
	}
}

// WithMaxStandingsLimit caps the page size handed to Standings.
func WithMaxStandingsLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxStandings = limit
		}
	}
}

// WithRules sets the scoring and handicap rule set.
func WithRules(rs *rules.RuleSet) Option {
	return func(s *Service) {
		if rs != nil {
			s.ruleSet = rs
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU() * 2,
		queueSize:      defaultQueueSize,
		dedupeSize:     defaultDedupeSize,
		matchThreshold: defaultMatchThreshold,
		maxStandings:   defaultMaxStandings,
		snapshots:      make(map[string]model.MultiplierSnapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds and starts the pipeline components. Starting an already
// started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.ruleSet == nil {
		s.ruleSet = rules.Default(ctx)
	}
	if err := s.ruleSet.Validate(); err != nil {
		return fmt.Errorf("rule set: %w", err)
	}

	s.logger.Info(ctx, "starting season service")

	resolver := identity.NewResolver(
		identity.WithThreshold(s.matchThreshold),
	)
	s.store = repository.NewMemStore(ctx,
		repository.WithResolver(resolver),
		repository.WithInitialMultiplier(s.ruleSet.NeutralMultiplier),
	)
	s.aggregator = season.NewAggregator(s.store,
		season.WithEngine(scoring.NewRuleEngine(scoring.WithRules(s.ruleSet))),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.recordQueue = recordqueue.NewInMemoryQueue(
		recordqueue.WithCapacity(s.queueSize),
	)
	s.handicapper = handicap.NewDriftEngine(
		handicap.WithRules(s.ruleSet),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.recordQueue, s.aggregator)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "season service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop drains the queue and shuts the pipeline down. Folded state stays
// readable; a later Start begins a fresh season.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping season service")

	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx) // closes the queue and drains it
	}

	s.started = false
	s.logger.Info(ctx, "season service stopped")
}

// Submit folds one record synchronously and returns the updated player.
// The fingerprint is recorded so a later batch retry of the same line is
// dropped at the queue door.
func (s *Service) Submit(ctx context.Context, rec model.PerformanceRecord) (*model.CanonicalPlayer, bool, error) {
	if err := s.guard(); err != nil {
		return nil, false, err
	}
	s.deduper.SeenAndRecord(ctx, identity.Fingerprint(rec))
	return s.aggregator.AddPerformance(ctx, rec)
}

// Enqueue submits a record for asynchronous folding. Duplicate
// submissions are dropped silently; a full or closed queue re-arms the
// fingerprint and reports the reason.
func (s *Service) Enqueue(ctx context.Context, rec model.PerformanceRecord) error {
	if err := s.guard(); err != nil {
		return err
	}

	fp := identity.Fingerprint(rec)
	if s.deduper.SeenAndRecord(ctx, fp) {
		metrics.RecordDedupeHit()
		s.logger.Debug(ctx, "duplicate submission dropped",
			logger.String("match_id", rec.MatchID),
			logger.String("player", rec.Name),
		)
		return nil
	}

	if !s.recordQueue.Enqueue(ctx, rec) {
		s.deduper.Unrecord(ctx, fp)
		if s.recordQueue.IsClosed() {
			return recordqueue.ErrClosed
		}
		return recordqueue.ErrFull
	}
	return nil
}

// QueueLen returns the number of records waiting to be folded.
func (s *Service) QueueLen(ctx context.Context) int {
	if err := s.guard(); err != nil {
		return 0
	}
	return s.recordQueue.Len(ctx)
}

// RecomputeGlobal runs a handicap pass over every player with ingestion
// paused, commits the multipliers and retains the snapshot.
func (s *Service) RecomputeGlobal(ctx context.Context) (model.MultiplierSnapshot, error) {
	if err := s.guard(); err != nil {
		return model.MultiplierSnapshot{}, err
	}

	snap := s.store.AdjustGlobal(ctx, func(points, previous map[string]float64) model.MultiplierSnapshot {
		return s.handicapper.Adjust(ctx, model.GlobalScope(), points, previous)
	})
	s.retain(snap)

	s.logger.Info(ctx, "global handicap pass complete",
		logger.Int("players", len(snap.Values)),
		logger.Int("generation", int(snap.Generation)),
	)
	return snap, nil
}

// RecomputeLeague runs a handicap pass over one league's roster using
// caller-supplied comparison points. The pass reads current multipliers
// but never writes back to player records; the result lives only in the
// retained snapshot.
func (s *Service) RecomputeLeague(ctx context.Context, league string, leaguePoints map[string]float64) (model.MultiplierSnapshot, error) {
	if err := s.guard(); err != nil {
		return model.MultiplierSnapshot{}, err
	}
	if strings.TrimSpace(league) == "" {
		return model.MultiplierSnapshot{}, errors.New("league id is empty")
	}

	previous := make(map[string]float64, len(leaguePoints))
	for key := range leaguePoints {
		if p, err := s.store.Player(ctx, key); err == nil {
			previous[key] = p.Multiplier
		}
	}

	snap := s.handicapper.Adjust(ctx, model.LeagueScope(league), leaguePoints, previous)
	snap.Generation = s.store.Generation(ctx)
	s.retain(snap)

	s.logger.Info(ctx, "league handicap pass complete",
		logger.String("league", league),
		logger.Int("players", len(snap.Values)),
	)
	return snap, nil
}

// MultiplierFor looks up a player's multiplier in the scope's retained
// snapshot. The global scope falls back to the committed value on the
// player record, so it answers before any pass has run.
func (s *Service) MultiplierFor(ctx context.Context, scope model.Scope, key string) (float64, bool) {
	if err := s.ready(); err != nil {
		return 0, false
	}

	s.snapMu.RLock()
	snap, ok := s.snapshots[scope.String()]
	s.snapMu.RUnlock()
	if ok {
		if v, hit := snap.Value(key); hit {
			return v, true
		}
	}
	if scope.Kind == model.ScopeGlobal {
		if p, err := s.store.Player(ctx, key); err == nil {
			return p.Multiplier, true
		}
	}
	return 0, false
}

// Player returns a clone of one canonical player.
func (s *Service) Player(ctx context.Context, key string) (*model.CanonicalPlayer, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.Player(ctx, key)
}

// Players returns clones of every player in registration order.
func (s *Service) Players(ctx context.Context) ([]*model.CanonicalPlayer, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.Players(ctx), nil
}

// Standings returns the top n rows of the season table. Requests beyond
// the configured page cap are trimmed to it.
func (s *Service) Standings(ctx context.Context, n int) ([]types.Standing, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if n > s.maxStandings {
		n = s.maxStandings
	}
	return s.store.Standings(ctx, n)
}

// Rank returns one player's standings row.
func (s *Service) Rank(ctx context.Context, key string) (types.Standing, error) {
	if err := s.ready(); err != nil {
		return types.Standing{}, err
	}
	return s.store.Rank(ctx, key)
}

// Replay recomputes a player's season totals from recorded history.
func (s *Service) Replay(ctx context.Context, key string) (model.SeasonTotals, error) {
	if err := s.ready(); err != nil {
		return model.SeasonTotals{}, err
	}
	return s.aggregator.Replay(ctx, key)
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
		"dedupe_size":  s.dedupeSize,
	}
	if s.store != nil {
		players := s.store.Count(ctx)
		stats["players"] = players
		stats["generation"] = s.store.Generation(ctx)
		stats["dedupe_entries"] = s.deduper.Size()
		metrics.UpdateTotalPlayers(players)
	}
	if s.started {
		stats["queue_length"] = s.recordQueue.Len(ctx)
	}
	return stats
}

// guard reports ErrNotStarted unless the pipeline is running.
func (s *Service) guard() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// ready reports ErrNotStarted until the first Start has built the
// components. Queries keep working after Stop; the folded season stays
// readable while the pipeline is down.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return ErrNotStarted
	}
	return nil
}

// retain stores the snapshot of a completed pass under its scope key.
func (s *Service) retain(snap model.MultiplierSnapshot) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	s.snapshots[snap.Scope.String()] = snap
}
