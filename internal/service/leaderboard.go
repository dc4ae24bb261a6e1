package service

import (
	"context"
	"database/sql"
	"errors"

	"battlefield-tracker/internal/constants"
	"battlefield-tracker/internal/domain"
	"battlefield-tracker/internal/repository"

	"github.com/rs/zerolog"
)

var (
	// ErrPlayerNotRanked means the player has no leaderboard row.
	ErrPlayerNotRanked = errors.New("player not found in leaderboard")
	// ErrNoPlayerData means the provider returned nothing for a batch.
	ErrNoPlayerData = errors.New("no player data found")
)

const defaultOrderBy = "kd_ratio"

// LeaderboardService is the read side over the leaderboard snapshot table,
// plus the batch-update write path through the collector.
type LeaderboardService struct {
	repo      *repository.LeaderboardRepository
	collector *Collector
	logger    zerolog.Logger
}

func NewLeaderboardService(repo *repository.LeaderboardRepository, collector *Collector, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{repo: repo, collector: collector, logger: logger}
}

// NormalizeOrderBy maps an arbitrary orderBy value onto a valid metric
// column, falling back to K/D ratio.
func NormalizeOrderBy(orderBy string) string {
	if repository.ValidOrderColumn(orderBy) {
		return orderBy
	}
	return defaultOrderBy
}

// List returns one leaderboard page. Limits are clamped to the configured
// maximum; unknown metrics fall back to K/D ratio. Every call re-queries
// the table; there is no caching layer.
func (s *LeaderboardService) List(ctx context.Context, orderBy string, limit, offset int) ([]domain.LeaderboardEntry, string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	orderBy = NormalizeOrderBy(orderBy)
	if limit <= 0 {
		limit = constants.DefaultLeaderboardSize
	}
	if limit > constants.MaxLeaderboardSize {
		limit = constants.MaxLeaderboardSize
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.repo.List(ctx, orderBy, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("order_by", orderBy).Msg("failed to list leaderboard")
		return nil, orderBy, err
	}
	return entries, orderBy, nil
}

// Rank computes a player's position on the chosen metric: the count of
// strictly greater rows plus one, so tied players share a rank.
func (s *LeaderboardService) Rank(ctx context.Context, playerID, orderBy string) (int64, string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	orderBy = NormalizeOrderBy(orderBy)

	rank, err := s.repo.PlayerRank(ctx, playerID, orderBy)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, orderBy, ErrPlayerNotRanked
	}
	if err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to compute player rank")
		return 0, orderBy, err
	}
	return rank, orderBy, nil
}

func (s *LeaderboardService) Summary(ctx context.Context) (*domain.LeaderboardSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.repo.Summary(ctx)
}

// BatchUpdate fetches a batch of players from the provider and overwrites
// their leaderboard snapshots. An empty provider result is reported as
// ErrNoPlayerData without touching the table.
func (s *LeaderboardService) BatchUpdate(ctx context.Context, playerIDs []string) ([]domain.StatsSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	players, err := s.collector.FetchMultiple(ctx, playerIDs)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, ErrNoPlayerData
	}

	if err := s.collector.BatchUpdateLeaderboard(ctx, players); err != nil {
		return nil, err
	}
	return players, nil
}

// FetchMultiple returns batch provider data without touching the
// leaderboard.
func (s *LeaderboardService) FetchMultiple(ctx context.Context, playerIDs []string) ([]domain.StatsSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	return s.collector.FetchMultiple(ctx, playerIDs)
}
