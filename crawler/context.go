package crawler

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"go.uber.org/zap"
)

type ContextKey string

const (
	RunIDKey  ContextKey = "run_id"
	EngineKey ContextKey = "engine"
)

// RunLogger creates a logger with the run information carried by ctx
func RunLogger(ctx context.Context, baseLogger *zap.Logger) *zap.Logger {
	logger := baseLogger

	if id := GetRunID(ctx); id != "" {
		logger = logger.With(zap.String(string(RunIDKey), id))
	}
	if engine, ok := ctx.Value(EngineKey).(string); ok {
		logger = logger.With(zap.String(string(EngineKey), engine))
	}

	return logger
}

func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

func WithEngine(ctx context.Context, engine string) context.Context {
	return context.WithValue(ctx, EngineKey, engine)
}

func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(RunIDKey).(string); ok {
		return id
	}
	return ""
}

func GenerateRunID() string {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(randomBytes)
}
