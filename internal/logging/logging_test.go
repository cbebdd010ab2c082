package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/project-planner/internal/config"
)

func TestInitTo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantLevel zerolog.Level
	}{
		{name: "debug", cfg: config.LogConfig{Level: "debug"}, wantLevel: zerolog.DebugLevel},
		{name: "warn", cfg: config.LogConfig{Level: "warn"}, wantLevel: zerolog.WarnLevel},
		{name: "unknown", cfg: config.LogConfig{Level: "chatty"}, wantLevel: zerolog.InfoLevel},
		{name: "empty", cfg: config.LogConfig{}, wantLevel: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitTo(&bytes.Buffer{}, tt.cfg)
			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestInitTo_JSONOutput(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	var buf bytes.Buffer

	InitTo(&buf, config.LogConfig{Level: "info"})
	log.Info().Str("user_id", "user_001").Msg("hello")

	assert.Contains(t, buf.String(), `"user_id":"user_001"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestInitTo_Pretty(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	var buf bytes.Buffer

	InitTo(&buf, config.LogConfig{Level: "info", Pretty: true})
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}
