package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

// The provider publishes no rate limit, so the sweep self-limits to one
// player fetch per second and caps batch requests at the provider maximum.
const (
	SweepRatePerSecond = 1
	MaxBatchPlayers    = 128
)

// Cron cadences for the tracked-player sweep.
const (
	DailySweepCron     = "0 2 * * *"
	SixHourlySweepCron = "0 */6 * * *"
)

const (
	DefaultTrendDays       = 30
	DefaultLeaderboardSize = 100
	MaxLeaderboardSize     = 500
	MinPasswordLength      = 6
	MinComparePlayers      = 2
)
