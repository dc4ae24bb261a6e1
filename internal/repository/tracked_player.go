package repository

import (
	"context"
	"database/sql"
	"fmt"

	"battlefield-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type TrackedPlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewTrackedPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *TrackedPlayerRepository {
	return &TrackedPlayerRepository{db: sqlDB, logger: logger}
}

// Upsert registers a player for recurring collection, refreshing the name
// and platform on repeat tracking.
func (r *TrackedPlayerRepository) Upsert(ctx context.Context, playerID, playerName, platform string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tracked_players (player_id, player_name, platform)
		VALUES (?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			player_name = excluded.player_name,
			platform = excluded.platform,
			updated_at = CURRENT_TIMESTAMP
	`, playerID, playerName, platform)
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to upsert tracked player")
		return fmt.Errorf("failed to upsert tracked player: %w", err)
	}

	r.logger.Debug().Str("player_id", playerID).Str("player_name", playerName).Msg("tracked player upserted")
	return nil
}

// All returns every tracked player ordered by name, for display.
func (r *TrackedPlayerRepository) All(ctx context.Context) ([]domain.TrackedPlayer, error) {
	return r.query(ctx, `
		SELECT player_id, player_name, platform, last_fetched, created_at, updated_at
		FROM tracked_players ORDER BY player_name ASC
	`)
}

// AllByFetchOrder returns tracked players ordered oldest-fetched first, with
// never-fetched players ahead of everything. This is the sweep order.
func (r *TrackedPlayerRepository) AllByFetchOrder(ctx context.Context) ([]domain.TrackedPlayer, error) {
	return r.query(ctx, `
		SELECT player_id, player_name, platform, last_fetched, created_at, updated_at
		FROM tracked_players ORDER BY last_fetched ASC NULLS FIRST
	`)
}

// TouchLastFetched records a successful collection pass for a player.
func (r *TrackedPlayerRepository) TouchLastFetched(ctx context.Context, playerID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tracked_players
		SET last_fetched = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE player_id = ?
	`, playerID)
	if err != nil {
		r.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to update fetch time")
		return fmt.Errorf("failed to update fetch time: %w", err)
	}
	return nil
}

func (r *TrackedPlayerRepository) query(ctx context.Context, q string) ([]domain.TrackedPlayer, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.TrackedPlayer
	for rows.Next() {
		var p domain.TrackedPlayer
		var lastFetched sql.NullTime
		if err := rows.Scan(&p.PlayerID, &p.PlayerName, &p.Platform, &lastFetched, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if lastFetched.Valid {
			t := lastFetched.Time
			p.LastFetched = &t
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
