package fx

import (
	"battlefield-tracker/internal/api"
	"battlefield-tracker/internal/auth"
	"battlefield-tracker/internal/config"
	"battlefield-tracker/internal/database"
	"battlefield-tracker/internal/logger"
	"battlefield-tracker/internal/repository"
	"battlefield-tracker/internal/scheduler"
	"battlefield-tracker/internal/server"
	"battlefield-tracker/internal/service"

	"go.uber.org/fx"
)

func ProvideStatsProvider(client *api.GametoolsClient) service.StatsProvider {
	return client
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewTrackedPlayerRepository),
	fx.Provide(repository.NewStatsHistoryRepository),
	fx.Provide(repository.NewLeaderboardRepository),
	// provider client
	fx.Provide(api.NewGametoolsClient),
	fx.Provide(ProvideStatsProvider),
	// auth + svc
	fx.Provide(auth.NewService),
	fx.Provide(service.NewCollector),
	fx.Provide(service.NewStatsService),
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(service.NewUserService),
	// scheduler
	fx.Provide(scheduler.New),
	// http server
	fx.Provide(server.New),
)
