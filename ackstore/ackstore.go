// Package ackstore records which messages a consumer has finished, so that a
// replayed message (after Seek, or a resubscription from the earliest offset)
// is skipped instead of processed twice.
package ackstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/infigaming-com/go-msglog/msglog"
)

var ErrInvalidKey = errors.New("ackstore: key required")

type Store interface {
	Acked(ctx context.Context, key string) (bool, error)
	Ack(ctx context.Context, key string, ttl time.Duration) error
}

type options struct {
	ttl   time.Duration
	keyFn func(name string, msg msglog.Message) string
}

type Option func(*options)

// WithTTL bounds how long an acknowledgment is remembered. Zero keeps it forever.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl >= 0 {
			o.ttl = ttl
		}
	}
}

func WithKeyFunc(fn func(name string, msg msglog.Message) string) Option {
	return func(o *options) {
		if fn != nil {
			o.keyFn = fn
		}
	}
}

func defaultKey(name string, msg msglog.Message) string {
	return fmt.Sprintf("%s:%s:%d", name, msg.Topic(), msg.Sequence())
}

// Idempotent wraps next so each message is handled at most once per name.
// A message is acknowledged only after next returns nil.
func Idempotent(store Store, name string, next msglog.Consumer, opts ...Option) msglog.Consumer {
	o := options{keyFn: defaultKey}
	for _, opt := range opts {
		opt(&o)
	}
	return msglog.ConsumerFunc(func(ctx context.Context, msg msglog.Message) error {
		key := o.keyFn(name, msg)
		acked, err := store.Acked(ctx, key)
		if err != nil {
			return fmt.Errorf("ackstore: lookup %s: %w", key, err)
		}
		if acked {
			return nil
		}
		if err := next.Consume(ctx, msg); err != nil {
			return err
		}
		if err := store.Ack(ctx, key, o.ttl); err != nil {
			return fmt.Errorf("ackstore: record %s: %w", key, err)
		}
		return nil
	})
}
