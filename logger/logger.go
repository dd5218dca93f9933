package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// Init builds the process-wide JSON logger at the given level
// (debug, info, warn, error; anything else means info).
func Init(level string) error {
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(level)),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	Set(l)
	return nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Set replaces the global logger (tests use zap's observer core)
func Set(l *zap.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

// L returns the global logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// WithRequestID stores the request id used to correlate log lines
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request id stored in ctx, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns the global logger annotated with the fields carried by ctx
func FromContext(ctx context.Context) *zap.Logger {
	l := L()
	if ctx == nil {
		return l
	}
	if id := RequestID(ctx); id != "" {
		l = l.With(zap.String("request_id", id))
	}
	return l
}

// Sync flushes buffered log entries
func Sync() error {
	return L().Sync()
}
