package repository

import (
	"context"
	"database/sql"
	"fmt"

	"battlefield-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// Columns the leaderboard may be ordered by. Validated here because the
// column name is interpolated into the query.
var orderColumns = map[string]bool{
	"kd_ratio": true,
	"score":    true,
	"wins":     true,
	"level":    true,
}

// ValidOrderColumn reports whether a metric may be used for ordering.
func ValidOrderColumn(name string) bool {
	return orderColumns[name]
}

type LeaderboardRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewLeaderboardRepository(sqlDB *sql.DB, logger zerolog.Logger) *LeaderboardRepository {
	return &LeaderboardRepository{db: sqlDB, logger: logger}
}

// Upsert overwrites the snapshot row for a player, or creates it.
func (r *LeaderboardRepository) Upsert(ctx context.Context, entry domain.LeaderboardEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leaderboard
			(player_id, player_name, kills, deaths, kd_ratio, wins, losses, win_rate,
			 score, time_played, headshots, headshot_percentage, accuracy, level, rank,
			 platform, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(player_id) DO UPDATE SET
			player_name = excluded.player_name,
			kills = excluded.kills,
			deaths = excluded.deaths,
			kd_ratio = excluded.kd_ratio,
			wins = excluded.wins,
			losses = excluded.losses,
			win_rate = excluded.win_rate,
			score = excluded.score,
			time_played = excluded.time_played,
			headshots = excluded.headshots,
			headshot_percentage = excluded.headshot_percentage,
			accuracy = excluded.accuracy,
			level = excluded.level,
			rank = excluded.rank,
			platform = excluded.platform,
			last_updated = CURRENT_TIMESTAMP
	`, entry.PlayerID, entry.PlayerName, entry.Kills, entry.Deaths, entry.KDRatio,
		entry.Wins, entry.Losses, entry.WinRate, entry.Score, entry.TimePlayed,
		entry.Headshots, entry.HeadshotPercentage, entry.Accuracy, entry.Level,
		entry.Rank, entry.Platform)
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", entry.PlayerID).Msg("failed to upsert leaderboard entry")
		return fmt.Errorf("failed to upsert leaderboard entry: %w", err)
	}
	return nil
}

// List returns a leaderboard page ordered by the given metric, best first.
// An offset past the end of the table yields an empty page.
func (r *LeaderboardRepository) List(ctx context.Context, orderBy string, limit, offset int) ([]domain.LeaderboardEntry, error) {
	if !ValidOrderColumn(orderBy) {
		return nil, fmt.Errorf("unsupported order column: %s", orderBy)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT player_id, player_name, kills, deaths, kd_ratio, wins, losses, win_rate,
			score, time_played, headshots, headshot_percentage, accuracy, level, rank,
			platform, last_updated
		FROM leaderboard
		ORDER BY %s DESC NULLS LAST
		LIMIT ? OFFSET ?
	`, orderBy), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(
			&e.PlayerID, &e.PlayerName, &e.Kills, &e.Deaths, &e.KDRatio,
			&e.Wins, &e.Losses, &e.WinRate, &e.Score, &e.TimePlayed,
			&e.Headshots, &e.HeadshotPercentage, &e.Accuracy, &e.Level, &e.Rank,
			&e.Platform, &e.LastUpdated,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PlayerRank computes a player's position on the chosen metric as the count
// of strictly greater rows plus one. Tied players share a rank.
// Returns sql.ErrNoRows for players not on the leaderboard.
func (r *LeaderboardRepository) PlayerRank(ctx context.Context, playerID, orderBy string) (int64, error) {
	if !ValidOrderColumn(orderBy) {
		return 0, fmt.Errorf("unsupported order column: %s", orderBy)
	}

	var value float64
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM leaderboard WHERE player_id = ?
	`, orderBy), playerID).Scan(&value)
	if err != nil {
		return 0, err
	}

	var rank int64
	err = r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*) + 1 FROM leaderboard WHERE %s > ?
	`, orderBy), value).Scan(&rank)
	if err != nil {
		return 0, err
	}
	return rank, nil
}

// Summary aggregates the whole table. Zeroes on an empty leaderboard.
func (r *LeaderboardRepository) Summary(ctx context.Context) (*domain.LeaderboardSummary, error) {
	var s domain.LeaderboardSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(AVG(kd_ratio), 0),
			COALESCE(MAX(kd_ratio), 0),
			COALESCE(AVG(win_rate), 0),
			COALESCE(SUM(kills), 0),
			COALESCE(SUM(deaths), 0)
		FROM leaderboard
	`).Scan(&s.TotalPlayers, &s.AvgKD, &s.MaxKD, &s.AvgWinRate, &s.TotalKills, &s.TotalDeaths)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
