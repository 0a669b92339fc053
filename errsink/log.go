package errsink

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/infigaming-com/go-msglog/msglog"
)

// LogSink writes consumer failures to a zap logger. When a limiter is set,
// reports beyond its rate are counted and folded into the next logged entry.
type LogSink struct {
	logger     *zap.Logger
	limiter    *rate.Limiter
	suppressed atomic.Uint64
}

func NewLogSink(logger *zap.Logger, limiter *rate.Limiter) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger, limiter: limiter}
}

func (s *LogSink) Report(_ context.Context, err *msglog.ConsumerError) {
	if s.limiter != nil && !s.limiter.Allow() {
		s.suppressed.Add(1)
		return
	}
	s.logger.Error("consumer failure",
		zap.String("topic", err.Topic),
		zap.String("subscription", err.SubscriptionID),
		zap.Uint64("sequence", err.Sequence),
		zap.Uint64("suppressed", s.suppressed.Swap(0)),
		zap.Error(err.Err),
	)
}

// Suppressed returns the number of reports dropped since the last logged one.
func (s *LogSink) Suppressed() uint64 {
	return s.suppressed.Load()
}
