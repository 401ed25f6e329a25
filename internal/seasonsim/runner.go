// Package seasonsim drives a synthetic cricket season through the full
// in-process pipeline: roster generation, paced scorecard submission
// with respelled and duplicated lines, periodic handicap passes, and an
// end-of-season verification that the folded state survives a replay
// and a full resubmission.
package seasonsim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	recordqueue "github.com/seambreak/gully/internal/adapters/ingest/queue"
	service "github.com/seambreak/gully/internal/app"
	appconfig "github.com/seambreak/gully/internal/config"
	"github.com/seambreak/gully/internal/domain/model"
	"github.com/seambreak/gully/internal/domain/rules"
	"github.com/seambreak/gully/internal/domain/types"
	"github.com/seambreak/gully/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	outputPermission    = 0600
)

// Run executes one complete simulated season.
func Run(ctx context.Context, config *Config) error {
	if config.Players < 1 || config.Matches < 1 {
		return fmt.Errorf("season needs at least one player and one round")
	}
	if err := setupLogging(config.LogFile); err != nil {
		return fmt.Errorf("logging setup failed: %w", err)
	}

	// Process knobs come from the same env and file layering the service
	// uses; sim flags override where set.
	cfg, err := appconfig.Load(ctx)
	if err != nil {
		return fmt.Errorf("process config load failed: %w", err)
	}
	if config.Verbose {
		_ = logger.SetLevelString("debug")
	} else if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if config.Workers < 1 {
		config.Workers = cfg.WorkerCount
	}
	if config.QueueSize < 1 {
		config.QueueSize = cfg.QueueSize
	}

	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting season simulation",
		logger.Int("players", config.Players),
		logger.Int("rounds", config.Matches),
		logger.Int("workers", config.Workers),
		logger.Float64("rate", config.Rate),
		logger.Float64("variantRate", config.VariantRate),
		logger.Float64("duplicateRate", config.DuplicateRate),
		logger.Int("topN", config.TopN),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	var ruleSet *rules.RuleSet
	if cfg.RulesFile != "" {
		ruleSet, err = rules.LoadFile(ctx, cfg.RulesFile)
	} else {
		ruleSet, err = rules.Load(ctx)
	}
	if err != nil {
		return fmt.Errorf("rule set load failed: %w", err)
	}

	// Step 1: Build the roster
	roster := buildRoster(ctx, config, stats)

	// Step 2: Generate the season's scorecards
	records, err := generateSeason(ctx, config, roster, stats)
	if err != nil {
		return fmt.Errorf("scorecard generation failed: %w", err)
	}

	// Step 3: Start the pipeline
	svc := service.New(
		service.WithWorkerCount(config.Workers),
		service.WithQueueSize(config.QueueSize),
		service.WithDedupeSize(max(cfg.DedupeSize, len(records)*2)),
		service.WithMatchThreshold(cfg.MatchThreshold),
		service.WithMaxStandingsLimit(cfg.MaxStandingsLimit),
		service.WithRules(ruleSet),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("pipeline start failed: %w", err)
	}
	defer svc.Stop()

	// Step 4: Submit round by round, handicap passes at the cadence
	if err := submitSeason(ctx, config, svc, records, len(roster), stats); err != nil {
		return fmt.Errorf("scorecard submission failed: %w", err)
	}

	// Step 5: Drain the queue and let the last folds land
	if err := drainPipeline(ctx, svc); err != nil {
		return fmt.Errorf("pipeline drain failed: %w", err)
	}

	// Step 6: Closing handicap passes, global and a showcase league
	if err := closingPasses(ctx, svc, stats); err != nil {
		return fmt.Errorf("handicap pass failed: %w", err)
	}

	// Step 7: Verify the folded season
	standings, err := verifySeason(ctx, config, svc, records, ruleSet, stats)
	if err != nil {
		return fmt.Errorf("season verification failed: %w", err)
	}

	// Step 8: Save standings and report pipeline counters
	if err := saveStandings(ctx, config, standings); err != nil {
		logger.Get().Warn(ctx, "failed to save standings", logger.Error(err))
	}
	reportMetrics(ctx, config)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// setupLogging configures logging to both console and file. An empty
// path gets a timestamped filename.
func setupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "season_sim_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, outputPermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// submitSeason pushes the season through the queue in round order,
// pacing submissions when a rate is configured and re-sending a slice
// of lines verbatim to exercise the duplicate drop. At the configured
// cadence the queue is drained and a global handicap pass runs, the way
// a live season recomputes after a week's fixtures.
func submitSeason(ctx context.Context, config *Config, svc *service.Service, records []model.PerformanceRecord, rosterSize int, stats *Stats) error {
	log.Printf("📤 Submitting %d scorecard lines across %d rounds...", len(records), config.Matches)

	var limiter *rate.Limiter
	if config.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.Rate), 1)
	}

	var (
		submitted int
		accepted  int
		duplicate int
		failed    int
	)

	lastReport := time.Now()
	reportInterval := 1 * time.Second

	for i, rec := range records {
		if config.HandicapEvery > 0 && i > 0 && i%rosterSize == 0 {
			round := i / rosterSize
			if round%config.HandicapEvery == 0 {
				if err := drainPipeline(ctx, svc); err != nil {
					return err
				}
				snap, err := svc.RecomputeGlobal(ctx)
				if err != nil {
					return fmt.Errorf("handicap pass after round %d: %w", round, err)
				}
				stats.HandicapPasses++
				log.Printf("⚖️  Handicap pass after round %d: %d multipliers, generation %d",
					round, len(snap.Values), snap.Generation)
			}
		}

		if err := submitRecord(ctx, svc, limiter, rec); err != nil {
			failed++
		} else {
			accepted++
		}
		submitted++

		// A verbatim resend lands on the fingerprint cache and is
		// dropped without costing a queue slot.
		if config.DuplicateRate > 0 && getRandomFloat() < config.DuplicateRate {
			if err := submitRecord(ctx, svc, limiter, rec); err == nil {
				duplicate++
				submitted++
			}
		}

		if time.Since(lastReport) >= reportInterval {
			lastReport = time.Now()
			if config.Verbose {
				log.Printf("📊 Progress: %d/%d lines (accepted: %d, duplicate resends: %d, failed: %d)",
					i+1, len(records), accepted, duplicate, failed)
			} else {
				fmt.Printf("\r📤 Submitted: %d/%d (accepted: %d, duplicate resends: %d, failed: %d)",
					i+1, len(records), accepted, duplicate, failed)
			}
		}
	}

	// Final progress report
	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	stats.RecordsSubmitted = submitted
	stats.RecordsAccepted = accepted
	stats.RecordsDuplicate = duplicate
	stats.RecordsFailed = failed

	log.Printf(`✅ Scorecard submission completed:
   Accepted: %d
   Duplicate resends: %d
   Failed: %d
`, accepted, duplicate, failed)

	return nil
}

// submitRecord enqueues one record, waiting out the pace limiter first
// and sitting out brief backpressure when the queue is full. A closed
// queue is terminal.
func submitRecord(ctx context.Context, svc *service.Service, limiter *rate.Limiter, rec model.PerformanceRecord) error {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		err := svc.Enqueue(ctx, rec)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, recordqueue.ErrFull) && attempt < EnqueueRetryLimit:
			time.Sleep(EnqueueRetryDelay)
		default:
			return err
		}
	}
}

// drainPipeline waits for the record queue to empty. Queue length hits
// zero while the last records are still in worker hands, so a settle
// delay follows before the folded state is read.
func drainPipeline(ctx context.Context, svc *service.Service) error {
	deadline := time.Now().Add(DrainTimeout)
	for svc.QueueLen(ctx) > 0 {
		if time.Now().After(deadline) {
			return fmt.Errorf("queue not drained after %s", DrainTimeout)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during drain: %w", ctx.Err())
		case <-time.After(DrainPollInterval):
		}
	}
	time.Sleep(DrainSettleDelay)
	return nil
}

// closingPasses runs the end-of-season global pass and a showcase
// league pass over the top half of the table. The league pass reads
// committed multipliers but writes none back; its result lives only in
// the retained snapshot.
func closingPasses(ctx context.Context, svc *service.Service, stats *Stats) error {
	snap, err := svc.RecomputeGlobal(ctx)
	if err != nil {
		return fmt.Errorf("closing global pass: %w", err)
	}
	stats.HandicapPasses++
	log.Printf("⚖️  Closing handicap pass: %d multipliers, generation %d",
		len(snap.Values), snap.Generation)

	standings, err := svc.Standings(ctx, stats.PlayersRostered)
	if err != nil {
		return fmt.Errorf("standings for league pass: %w", err)
	}
	if len(standings) < 2 {
		return nil
	}

	leaguePoints := make(map[string]float64, len(standings)/2)
	for _, row := range standings[:len(standings)/2] {
		leaguePoints[row.PlayerKey] = row.Points
	}
	leagueSnap, err := svc.RecomputeLeague(ctx, ShowcaseLeague, leaguePoints)
	if err != nil {
		return fmt.Errorf("showcase league pass: %w", err)
	}
	stats.HandicapPasses++
	log.Printf("⚖️  Showcase league pass: %d multipliers", len(leagueSnap.Values))
	return nil
}

// saveStandings writes the final table to a JSON file.
func saveStandings(ctx context.Context, config *Config, standings []types.Standing) error {
	if len(standings) == 0 {
		return fmt.Errorf("no standings to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "season_standings_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(standings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal standings: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filename, data, outputPermission); err != nil {
		return fmt.Errorf("failed to write standings: %w", err)
	}

	logger.Get().Info(ctx, "standings saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var duplicateShare, recordsPerSecond float64

	if stats.RecordsSubmitted > 0 {
		duplicateShare = float64(stats.RecordsDuplicate) / float64(stats.RecordsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		recordsPerSecond = float64(stats.RecordsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("playersRostered", stats.PlayersRostered),
		logger.Int("recordsGenerated", stats.RecordsGenerated),
		logger.Int("recordsSubmitted", stats.RecordsSubmitted),
		logger.Int("recordsAccepted", stats.RecordsAccepted),
		logger.Int("duplicateResends", stats.RecordsDuplicate),
		logger.Int("recordsFailed", stats.RecordsFailed),
		logger.Int("variantsSent", stats.VariantsSent),
		logger.Int("handicapPasses", stats.HandicapPasses),
		logger.Int("playersResolved", stats.PlayersResolved),
		logger.Int("standingsRows", stats.StandingsRows),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("duplicateShare", duplicateShare),
		logger.Float64("recordsPerSecond", recordsPerSecond))
}
