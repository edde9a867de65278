package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/reshetovitsme/channel-relay/internal/modules/channel/domain"
	slogmulti "github.com/samber/slog-multi"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level maps the configured level name onto slog, lowering it to debug outside production
func Level(name string, env domain.AppEnv) slog.Level {
	if env == domain.AppEnvLocal || env == domain.AppEnvDevelopment {
		return slog.LevelDebug
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// New builds the process logger: text on stdout plus JSON errors on stderr
func New(level slog.Level) *slog.Logger {
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	return slog.New(slogmulti.Fanout(textHandler, jsonHandler))
}

// NewZap builds the logger handed to the MTProto client. It stays one level quieter than slog
// since gotd logs every RPC at debug.
func NewZap(level slog.Level) *zap.Logger {
	zapLevel := zapcore.InfoLevel
	switch {
	case level >= slog.LevelError:
		zapLevel = zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		zapLevel = zapcore.WarnLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger.Named("mtproto")
}
