package logger

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is an alias used by services for dependency injection.
type Logger = zap.Logger

// New returns a structured logger named after the service. Unknown levels fall back to info.
func New(service, level string) *Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	}
	return zap.Must(cfg.Build()).Named(service)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return zap.NewNop()
}
