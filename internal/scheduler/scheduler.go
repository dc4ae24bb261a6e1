// Package scheduler drives the recurring tracked-player sweeps: one daily
// pass at 02:00 and one every six hours. The cadences run independently and
// are not mutually excluded; an overlap performs duplicate fetches but
// nothing worse, matching the observed behavior of the system this
// replaces.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"battlefield-tracker/internal/constants"
	"battlefield-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Sweeper runs one full collection pass over all tracked players.
type Sweeper interface {
	CollectAllTracked(ctx context.Context) error
}

type Scheduler struct {
	sweeper Sweeper
	logger  zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(collector *service.Collector, logger zerolog.Logger) *Scheduler {
	return &Scheduler{sweeper: collector, logger: logger}
}

// Start launches one goroutine per cadence. Returns an error only when a
// cron expression fails to parse, which would be a programming mistake.
func (s *Scheduler) Start() error {
	cadences := []string{constants.DailySweepCron, constants.SixHourlySweepCron}

	schedules := make([]*cronSchedule, len(cadences))
	for i, expr := range cadences {
		parsed, err := parseCron(expr)
		if err != nil {
			return fmt.Errorf("invalid sweep cadence %q: %w", expr, err)
		}
		schedules[i] = parsed
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for i, schedule := range schedules {
		s.wg.Add(1)
		go s.run(ctx, schedule, cadences[i])
	}

	s.logger.Info().Strs("cadences", cadences).Msg("sweep scheduler started")
	return nil
}

// Stop cancels all cadence loops and waits for them to exit. A sweep in
// flight observes the cancellation through its context.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info().Msg("sweep scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, schedule *cronSchedule, cadence string) {
	defer s.wg.Done()

	for {
		next := schedule.next(time.Now())
		if next.IsZero() {
			s.logger.Error().Str("cadence", cadence).Msg("no next run time, stopping cadence")
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.logger.Info().Str("cadence", cadence).Msg("running scheduled stats collection")
		if err := s.sweeper.CollectAllTracked(ctx); err != nil {
			s.logger.Error().Err(err).Str("cadence", cadence).Msg("scheduled stats collection failed")
		}
	}
}

var Module = fx.Provide(New)
