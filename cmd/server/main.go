package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"battlefield-tracker/internal/config"
	"battlefield-tracker/internal/constants"
	fxmodules "battlefield-tracker/internal/fx"
	"battlefield-tracker/internal/logger"
	"battlefield-tracker/internal/middleware"
	"battlefield-tracker/internal/scheduler"
	"battlefield-tracker/internal/server"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	apiServer *server.Server,
	sched *scheduler.Scheduler,
	cfg *config.Config,
	db *sql.DB,
	log zerolog.Logger,
) {
	log = logger.WithLevel(log, cfg.LogLevel)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(log)(c.Handler(apiServer.Routes()))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: handler,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := sched.Start(); err != nil {
				return err
			}
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			sched.Stop()

			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing database connection")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
