package service

import (
	"context"
	"fmt"

	"battlefield-tracker/internal/api"
	"battlefield-tracker/internal/constants"
	"battlefield-tracker/internal/domain"
	"battlefield-tracker/internal/normalize"
	"battlefield-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrTooManyPlayers is returned when a batch request exceeds the provider
// maximum. The provider is never called in that case.
var ErrTooManyPlayers = fmt.Errorf("maximum %d players can be fetched at once", constants.MaxBatchPlayers)

// StatsProvider is the slice of the gametools client the collector needs.
type StatsProvider interface {
	GetPlayerStats(ctx context.Context, playerID string) (*api.PlayerStatsResponse, error)
	GetMultiplePlayers(ctx context.Context, playerIDs []string) ([]api.BatchPlayer, error)
}

// Collector runs the fetch -> normalize -> persist pipeline. Single-player
// collection appends to the stats history; batch collection overwrites
// leaderboard snapshots. The two paths intentionally write to different
// tables.
type Collector struct {
	provider        StatsProvider
	historyRepo     *repository.StatsHistoryRepository
	trackedRepo     *repository.TrackedPlayerRepository
	leaderboardRepo *repository.LeaderboardRepository
	limiter         *rate.Limiter
	logger          zerolog.Logger
}

func NewCollector(
	provider StatsProvider,
	historyRepo *repository.StatsHistoryRepository,
	trackedRepo *repository.TrackedPlayerRepository,
	leaderboardRepo *repository.LeaderboardRepository,
	logger zerolog.Logger,
) *Collector {
	return &Collector{
		provider:        provider,
		historyRepo:     historyRepo,
		trackedRepo:     trackedRepo,
		leaderboardRepo: leaderboardRepo,
		limiter:         rate.NewLimiter(rate.Limit(constants.SweepRatePerSecond), 1),
		logger:          logger,
	}
}

// FetchAndStore fetches one player's stats, normalizes them and appends one
// history row. Provider failures and error envelopes degrade to a nil
// snapshot: they are logged, never retried, and never a hard error.
func (c *Collector) FetchAndStore(ctx context.Context, playerID, playerName string) (*domain.StatsSnapshot, error) {
	c.logger.Info().Str("player_id", playerID).Str("player_name", playerName).Msg("fetching player stats")

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	raw, err := c.provider.GetPlayerStats(apiCtx, playerID)
	if err != nil {
		c.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to fetch player stats")
		return nil, nil
	}
	if raw.HasErrors() {
		c.logger.Error().Strs("errors", raw.Errors).Str("player_id", playerID).Msg("provider returned error envelope")
		return nil, nil
	}

	snap := normalize.PlayerStats(playerID, playerName, raw)

	if err := c.historyRepo.Append(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to store stats for %s: %w", playerName, err)
	}

	c.logger.Info().Str("player_id", playerID).Msg("stats stored")
	return &snap, nil
}

// FetchMultiple fetches batch stats for up to 128 players. Requests above
// the cap are rejected before the provider is called. A provider failure or
// malformed batch body yields an empty result, not an error.
func (c *Collector) FetchMultiple(ctx context.Context, playerIDs []string) ([]domain.StatsSnapshot, error) {
	if len(playerIDs) == 0 {
		return []domain.StatsSnapshot{}, nil
	}
	if len(playerIDs) > constants.MaxBatchPlayers {
		return nil, ErrTooManyPlayers
	}

	c.logger.Info().Int("count", len(playerIDs)).Msg("fetching batch player stats")

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	raw, err := c.provider.GetMultiplePlayers(apiCtx, playerIDs)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to fetch batch player data")
		return []domain.StatsSnapshot{}, nil
	}

	players := normalize.BatchPlayers(raw)
	c.logger.Info().Int("count", len(players)).Msg("batch fetch completed")
	return players, nil
}

// BatchUpdateLeaderboard upserts a batch of snapshots into the leaderboard.
// The batch endpoint carries no headshot or accuracy figures, so those
// columns are written as zero.
func (c *Collector) BatchUpdateLeaderboard(ctx context.Context, players []domain.StatsSnapshot) error {
	c.logger.Info().Int("count", len(players)).Msg("updating leaderboard")

	for _, p := range players {
		entry := domain.LeaderboardEntry{
			StatsSnapshot: p,
			Platform:      "pc",
		}
		if err := c.leaderboardRepo.Upsert(ctx, entry); err != nil {
			return fmt.Errorf("failed to update leaderboard for %s: %w", p.PlayerName, err)
		}
	}

	c.logger.Info().Msg("leaderboard updated")
	return nil
}

// CollectAllTracked sweeps every tracked player in least-recently-fetched
// order, one at a time, pacing fetches at one per second. A failure on one
// player is logged and skipped; the sweep always runs to the end. There is
// deliberately no lock between overlapping sweeps.
func (c *Collector) CollectAllTracked(ctx context.Context) error {
	players, err := c.trackedRepo.AllByFetchOrder(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tracked players: %w", err)
	}

	if len(players) == 0 {
		c.logger.Info().Msg("no tracked players found")
		return nil
	}

	c.logger.Info().Int("count", len(players)).Msg("collecting stats for tracked players")

	for _, p := range players {
		if _, err := c.FetchAndStore(ctx, p.PlayerID, p.PlayerName); err != nil {
			c.logger.Error().Err(err).Str("player_id", p.PlayerID).Msg("failed to collect player, skipping")
		} else if err := c.trackedRepo.TouchLastFetched(ctx, p.PlayerID); err != nil {
			c.logger.Error().Err(err).Str("player_id", p.PlayerID).Msg("failed to update fetch time")
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	c.logger.Info().Msg("stats collection complete")
	return nil
}
