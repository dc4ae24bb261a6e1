package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath         string
	ServerPort     string
	LogLevel       string
	JWTSecret      string
	JWTExpiry      time.Duration
	BcryptCost     int
	FrontendOrigin string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:         getEnv("DB_PATH", "battlefield.db"),
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		JWTSecret:      getEnv("JWT_SECRET", "fallback_secret_key"),
		JWTExpiry:      getDurationEnv("JWT_EXPIRES_IN", 7*24*time.Hour),
		BcryptCost:     getIntEnv("BCRYPT_COST", 10),
		FrontendOrigin: getEnv("FRONTEND_URL", "http://localhost:5173"),
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("jwt_expiry", cfg.JWTExpiry).
		Int("bcrypt_cost", cfg.BcryptCost).
		Str("frontend_origin", cfg.FrontendOrigin).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
