package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"battlefield-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// Metric columns the trend queries may aggregate. Validated here because
// the column name is interpolated into the query.
const (
	TrendMetricKD      = "kd_ratio"
	TrendMetricWinRate = "win_rate"
)

type StatsHistoryRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewStatsHistoryRepository(sqlDB *sql.DB, logger zerolog.Logger) *StatsHistoryRepository {
	return &StatsHistoryRepository{db: sqlDB, logger: logger}
}

const historyColumns = `id, player_id, player_name, kills, deaths, kd_ratio, wins, losses, win_rate,
	score, time_played, headshots, headshot_percentage, accuracy, level, rank, recorded_at`

// Append writes one immutable history row. Rows are never updated.
func (r *StatsHistoryRepository) Append(ctx context.Context, snap domain.StatsSnapshot) error {
	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate nanoid: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO player_stats_history
			(id, player_id, player_name, kills, deaths, kd_ratio, wins, losses, win_rate,
			 score, time_played, headshots, headshot_percentage, accuracy, level, rank)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, snap.PlayerID, snap.PlayerName, snap.Kills, snap.Deaths, snap.KDRatio,
		snap.Wins, snap.Losses, snap.WinRate, snap.Score, snap.TimePlayed,
		snap.Headshots, snap.HeadshotPercentage, snap.Accuracy, snap.Level, snap.Rank)
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", snap.PlayerID).Msg("failed to append stats history")
		return fmt.Errorf("failed to append stats history: %w", err)
	}

	return nil
}

// ForPlayer returns the history rows for a player within the last N days,
// oldest first.
func (r *StatsHistoryRepository) ForPlayer(ctx context.Context, playerID string, days int) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+historyColumns+`
		FROM player_stats_history
		WHERE player_id = ? AND recorded_at >= datetime('now', ?)
		ORDER BY recorded_at ASC
	`, playerID, fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHistory(rows)
}

// Trend aggregates a metric per calendar day over the last N days.
func (r *StatsHistoryRepository) Trend(ctx context.Context, playerID, metric string, days int) ([]domain.TrendPoint, error) {
	if metric != TrendMetricKD && metric != TrendMetricWinRate {
		return nil, fmt.Errorf("unsupported trend metric: %s", metric)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT
			DATE(recorded_at) AS date,
			AVG(%[1]s), MAX(%[1]s), MIN(%[1]s)
		FROM player_stats_history
		WHERE player_id = ? AND recorded_at >= datetime('now', ?)
		GROUP BY DATE(recorded_at)
		ORDER BY date ASC
	`, metric), playerID, fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.TrendPoint
	for rows.Next() {
		var p domain.TrendPoint
		if err := rows.Scan(&p.Date, &p.Avg, &p.Max, &p.Min); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// LatestForPlayers returns the most recent history row per requested player.
// Players with no history are simply absent from the result.
func (r *StatsHistoryRepository) LatestForPlayers(ctx context.Context, playerIDs []string) ([]domain.HistoryEntry, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(playerIDs)), ",")
	args := make([]any, len(playerIDs))
	for i, id := range playerIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+historyColumns+` FROM (
			SELECT `+historyColumns+`,
				ROW_NUMBER() OVER (PARTITION BY player_id ORDER BY recorded_at DESC) AS rn
			FROM player_stats_history
			WHERE player_id IN (`+placeholders+`)
		)
		WHERE rn = 1
		ORDER BY player_id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHistory(rows)
}

func scanHistory(rows *sql.Rows) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.PlayerID, &e.PlayerName, &e.Kills, &e.Deaths, &e.KDRatio,
			&e.Wins, &e.Losses, &e.WinRate, &e.Score, &e.TimePlayed,
			&e.Headshots, &e.HeadshotPercentage, &e.Accuracy, &e.Level, &e.Rank,
			&e.RecordedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
