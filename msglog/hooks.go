package msglog

import (
	"context"
	"time"
)

type Logger interface {
	Debug(ctx context.Context, msg string, kv ...any)
	Info(ctx context.Context, msg string, kv ...any)
	Warn(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, kv ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...any) {}
func (noopLogger) Info(context.Context, string, ...any)  {}
func (noopLogger) Warn(context.Context, string, ...any)  {}
func (noopLogger) Error(context.Context, string, ...any) {}

// Hooks observe broker activity. Every field is optional. Hooks run on the
// publishing goroutine or on the subscription's worker and must not block.
type Hooks struct {
	OnPublish         func(ctx context.Context, topic string, sequence uint64)
	OnSubscribe       func(ctx context.Context, topic, subscriptionID string, offset uint64)
	OnDeliver         func(ctx context.Context, topic, subscriptionID string, sequence uint64, took time.Duration)
	OnFailure         func(ctx context.Context, err *ConsumerError)
	OnAdvanceConflict func(ctx context.Context, topic, subscriptionID string, expected uint64)
	OnStop            func(ctx context.Context, topic, subscriptionID string)
}

// ChainHooks returns Hooks that call each of hooks in order.
func ChainHooks(hooks ...Hooks) Hooks {
	return Hooks{
		OnPublish: func(ctx context.Context, topic string, sequence uint64) {
			for _, h := range hooks {
				if h.OnPublish != nil {
					h.OnPublish(ctx, topic, sequence)
				}
			}
		},
		OnSubscribe: func(ctx context.Context, topic, subscriptionID string, offset uint64) {
			for _, h := range hooks {
				if h.OnSubscribe != nil {
					h.OnSubscribe(ctx, topic, subscriptionID, offset)
				}
			}
		},
		OnDeliver: func(ctx context.Context, topic, subscriptionID string, sequence uint64, took time.Duration) {
			for _, h := range hooks {
				if h.OnDeliver != nil {
					h.OnDeliver(ctx, topic, subscriptionID, sequence, took)
				}
			}
		},
		OnFailure: func(ctx context.Context, err *ConsumerError) {
			for _, h := range hooks {
				if h.OnFailure != nil {
					h.OnFailure(ctx, err)
				}
			}
		},
		OnAdvanceConflict: func(ctx context.Context, topic, subscriptionID string, expected uint64) {
			for _, h := range hooks {
				if h.OnAdvanceConflict != nil {
					h.OnAdvanceConflict(ctx, topic, subscriptionID, expected)
				}
			}
		},
		OnStop: func(ctx context.Context, topic, subscriptionID string) {
			for _, h := range hooks {
				if h.OnStop != nil {
					h.OnStop(ctx, topic, subscriptionID)
				}
			}
		},
	}
}

// ErrorSink receives consumer failures out of band from the data path.
type ErrorSink interface {
	Report(ctx context.Context, err *ConsumerError)
}

type ErrorSinkFunc func(context.Context, *ConsumerError)

func (f ErrorSinkFunc) Report(ctx context.Context, err *ConsumerError) { f(ctx, err) }

type noopSink struct{}

func (noopSink) Report(context.Context, *ConsumerError) {}
