package seasonsim

import "time"

// Config holds configuration for a season simulation.
type Config struct {
	Players       int     // roster size, capped by the surname pool
	Matches       int     // rounds to simulate
	Workers       int     // folding workers, zero falls back to process config
	QueueSize     int     // record queue capacity, zero falls back to process config
	Rate          float64 // submission pace in records per second, zero means unpaced
	VariantRate   float64 // fraction of records respelled and stripped of their id
	DuplicateRate float64 // fraction of records re-sent verbatim
	HandicapEvery int     // global handicap pass every N rounds, zero means end of season only
	TopN          int     // standings rows to display
	OutputFile    string  // standings export file
	LogFile       string  // log file for simulation output
	Verbose       bool    // enable verbose logging
}

// Stats holds simulation statistics.
type Stats struct {
	PlayersRostered  int
	RecordsGenerated int
	RecordsSubmitted int
	RecordsAccepted  int
	RecordsDuplicate int
	RecordsFailed    int
	VariantsSent     int
	HandicapPasses   int
	PlayersResolved  int
	StandingsRows    int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
