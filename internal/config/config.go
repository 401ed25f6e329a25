// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Keep the struct flat; every field carries a koanf tag.
// - Provide New(ctx) to build a Config with defaults.
// - All loading functions accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration for the season service.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// WorkerCount sets the number of folding workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory performance record queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize caps the submission fingerprint cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MatchThreshold is the similarity floor for merging name variants
	// into one player, in (0, 1].
	MatchThreshold float64 `koanf:"match_threshold"`

	// RulesFile points at an optional YAML rule-set overlay. Empty means
	// the built-in season constants.
	RulesFile string `koanf:"rules_file"`

	// MaxStandingsLimit caps how many rows one standings query may ask for.
	MaxStandingsLimit int `koanf:"max_standings_limit"`
}

// New creates a Config with the standard defaults. Context is accepted
// first to satisfy the project-wide convention; it is reserved for future
// use and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		WorkerCount:       runtime.NumCPU() * 2,
		QueueSize:         100_000,
		DedupeSize:        50_000,
		MatchThreshold:    0.85,
		MaxStandingsLimit: 1_000,
	}
}
