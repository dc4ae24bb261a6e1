package logger

import (
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger.Level(zerolog.InfoLevel)
}

// WithLevel re-levels the base logger once configuration is available.
// Unknown level strings keep the current level.
func WithLevel(logger zerolog.Logger, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return logger
	}
	return logger.Level(lvl)
}

var Module = fx.Provide(New)
