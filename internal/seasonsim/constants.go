package seasonsim

import "time"

// Queue drain behaviour.
const (
	DrainPollInterval = 25 * time.Millisecond
	DrainSettleDelay  = 300 * time.Millisecond
	DrainTimeout      = 2 * time.Minute
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	EnqueueRetryDelay    = 5 * time.Millisecond
	EnqueueRetryLimit    = 200
	ShowcaseLeague       = "showcase"
)
