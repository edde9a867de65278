package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, Level("warn", domain.AppEnvProduction))
	assert.Equal(t, slog.LevelInfo, Level("nonsense", domain.AppEnvProduction))
	assert.Equal(t, slog.LevelDebug, Level("error", domain.AppEnvLocal))
}

func TestNewZap(t *testing.T) {
	logger := NewZap(slog.LevelError)
	assert.False(t, logger.Core().Enabled(-1))
	assert.True(t, logger.Core().Enabled(2))
}
