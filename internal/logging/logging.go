// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/project-planner/internal/config"
)

// Init sets the global level and output format. Unknown levels fall back to info.
func Init(cfg config.LogConfig) {
	InitTo(os.Stdout, cfg)
}

// InitTo is Init with an explicit writer.
func InitTo(w io.Writer, cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).
			With().Timestamp().Logger()
		return
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
