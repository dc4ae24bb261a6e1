package domain

import (
	"time"
)

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	PlayerID     *string    `json:"playerId,omitempty"`
	PlayerName   *string    `json:"playerName,omitempty"`
	AvatarURL    *string    `json:"avatarUrl,omitempty"`
	Bio          *string    `json:"bio,omitempty"`
	IsVerified   bool       `json:"isVerified"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type TrackedPlayer struct {
	PlayerID    string     `json:"playerId"`
	PlayerName  string     `json:"playerName"`
	Platform    string     `json:"platform"`
	LastFetched *time.Time `json:"lastFetched"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// StatsSnapshot is the normalized per-player stat record. History rows and
// leaderboard entries both carry this shape; the batch provider endpoint
// never returns headshot or accuracy figures, so those stay zero on the
// leaderboard path.
type StatsSnapshot struct {
	PlayerID           string  `json:"playerId"`
	PlayerName         string  `json:"playerName"`
	Kills              int64   `json:"kills"`
	Deaths             int64   `json:"deaths"`
	KDRatio            float64 `json:"kdRatio"`
	Wins               int64   `json:"wins"`
	Losses             int64   `json:"losses"`
	WinRate            float64 `json:"winRate"`
	Score              int64   `json:"score"`
	TimePlayed         int64   `json:"timePlayed"`
	Headshots          int64   `json:"headshots"`
	HeadshotPercentage float64 `json:"headshotPercentage"`
	Accuracy           float64 `json:"accuracy"`
	Level              int64   `json:"level"`
	Rank               string  `json:"rank"`
}

// HistoryEntry is one immutable row of the stats time series.
type HistoryEntry struct {
	ID         string    `json:"id"` // nanoid
	StatsSnapshot
	RecordedAt time.Time `json:"recordedAt"`
}

// LeaderboardEntry is the single current-value row per player, overwritten
// in place on every update.
type LeaderboardEntry struct {
	StatsSnapshot
	Platform    string    `json:"platform"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// TrendPoint is one day of an aggregated metric series.
type TrendPoint struct {
	Date string  `json:"date"` // YYYY-MM-DD
	Avg  float64 `json:"avg"`
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`
}

// LeaderboardSummary aggregates the whole leaderboard table.
type LeaderboardSummary struct {
	TotalPlayers int64   `json:"totalPlayers"`
	AvgKD        float64 `json:"avgKd"`
	MaxKD        float64 `json:"maxKd"`
	AvgWinRate   float64 `json:"avgWinRate"`
	TotalKills   int64   `json:"totalKills"`
	TotalDeaths  int64   `json:"totalDeaths"`
}
