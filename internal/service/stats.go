package service

import (
	"context"

	"battlefield-tracker/internal/constants"
	"battlefield-tracker/internal/domain"
	"battlefield-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// StatsService serves the history and trend read side and owns player
// tracking.
type StatsService struct {
	historyRepo *repository.StatsHistoryRepository
	trackedRepo *repository.TrackedPlayerRepository
	collector   *Collector
	logger      zerolog.Logger
}

func NewStatsService(
	historyRepo *repository.StatsHistoryRepository,
	trackedRepo *repository.TrackedPlayerRepository,
	collector *Collector,
	logger zerolog.Logger,
) *StatsService {
	return &StatsService{
		historyRepo: historyRepo,
		trackedRepo: trackedRepo,
		collector:   collector,
		logger:      logger,
	}
}

func (s *StatsService) History(ctx context.Context, playerID string, days int) ([]domain.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if days <= 0 {
		days = constants.DefaultTrendDays
	}
	return s.historyRepo.ForPlayer(ctx, playerID, days)
}

func (s *StatsService) KDTrend(ctx context.Context, playerID string, days int) ([]domain.TrendPoint, error) {
	return s.trend(ctx, playerID, repository.TrendMetricKD, days)
}

func (s *StatsService) WinRateTrend(ctx context.Context, playerID string, days int) ([]domain.TrendPoint, error) {
	return s.trend(ctx, playerID, repository.TrendMetricWinRate, days)
}

func (s *StatsService) trend(ctx context.Context, playerID, metric string, days int) ([]domain.TrendPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if days <= 0 {
		days = constants.DefaultTrendDays
	}

	s.logger.Debug().Str("player_id", playerID).Str("metric", metric).Int("days", days).Msg("computing trend")
	return s.historyRepo.Trend(ctx, playerID, metric, days)
}

// Compare returns the latest known snapshot per requested player.
func (s *StatsService) Compare(ctx context.Context, playerIDs []string) ([]domain.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.historyRepo.LatestForPlayers(ctx, playerIDs)
}

// Track registers a player for recurring collection and immediately fetches
// a first history snapshot.
func (s *StatsService) Track(ctx context.Context, playerID, playerName, platform string) error {
	if platform == "" {
		platform = "pc"
	}

	if err := s.trackedRepo.Upsert(ctx, playerID, playerName, platform); err != nil {
		return err
	}

	s.logger.Info().Str("player_id", playerID).Str("player_name", playerName).Msg("player is now being tracked")

	if _, err := s.collector.FetchAndStore(ctx, playerID, playerName); err != nil {
		return err
	}
	return nil
}

func (s *StatsService) Tracked(ctx context.Context) ([]domain.TrackedPlayer, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.trackedRepo.All(ctx)
}

// TriggerCollection kicks off a full tracked-player sweep in the background
// and returns immediately.
func (s *StatsService) TriggerCollection() {
	g := new(errgroup.Group)
	g.Go(func() error {
		return s.collector.CollectAllTracked(context.Background())
	})

	go func() {
		if err := g.Wait(); err != nil {
			s.logger.Error().Err(err).Msg("manual stats collection failed")
		}
	}()
}
