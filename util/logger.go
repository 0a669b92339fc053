package util

import (
	"context"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func initLogger(level zapcore.Level) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.CallerKey = "ln"
	zapCfg.EncoderConfig.FunctionKey = ""
	zapCfg.EncoderConfig.LevelKey = "severity"
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stdout"}

	return zapCfg.Build()
}

// NewLogger builds the production logger, installs it as the zap global and
// returns a func that restores the previous global and flushes.
func NewLogger(level zapcore.Level) (*zap.Logger, func()) {
	logger, err := initLogger(level)
	if err != nil {
		log.Fatalf("fail to init logger, error: %v", err)
	}

	undo := zap.ReplaceGlobals(logger)

	return logger, func() {
		undo()
		_ = logger.Sync()
	}
}

// ZapLogger adapts a zap logger to the context-aware Logger interface used by
// msglog. Correlation and subscription IDs found in ctx are added as fields.
type ZapLogger struct {
	s *zap.SugaredLogger
}

func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{s: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *ZapLogger) Debug(ctx context.Context, msg string, kv ...any) {
	l.s.Debugw(msg, withContext(ctx, kv)...)
}

func (l *ZapLogger) Info(ctx context.Context, msg string, kv ...any) {
	l.s.Infow(msg, withContext(ctx, kv)...)
}

func (l *ZapLogger) Warn(ctx context.Context, msg string, kv ...any) {
	l.s.Warnw(msg, withContext(ctx, kv)...)
}

func (l *ZapLogger) Error(ctx context.Context, msg string, kv ...any) {
	l.s.Errorw(msg, withContext(ctx, kv)...)
}

func withContext(ctx context.Context, kv []any) []any {
	if ctx == nil {
		return kv
	}
	if id, err := CorrelationIdFromCtx(ctx); err == nil {
		kv = append(kv, "correlation_id", id)
	}
	if id, err := SubscriptionIdFromCtx(ctx); err == nil {
		kv = append(kv, "subscription_id", id)
	}
	return kv
}
