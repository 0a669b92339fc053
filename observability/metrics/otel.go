package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/infigaming-com/go-msglog/msglog"
)

const (
	attrTopic        = "topic"
	attrSubscription = "subscription"
)

// NewOtelHooks returns msglog hooks that record into meter.
func NewOtelHooks(meter metric.Meter) (msglog.Hooks, error) {
	published, err := meter.Int64Counter("msglog.published",
		metric.WithDescription("Messages appended to a topic"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return msglog.Hooks{}, fmt.Errorf("failed to create counter: %w", err)
	}
	delivered, err := meter.Int64Counter("msglog.delivered",
		metric.WithDescription("Messages consumed successfully"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return msglog.Hooks{}, fmt.Errorf("failed to create counter: %w", err)
	}
	failed, err := meter.Int64Counter("msglog.consume.failures",
		metric.WithDescription("Consume calls that returned an error or panicked"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return msglog.Hooks{}, fmt.Errorf("failed to create counter: %w", err)
	}
	conflicts, err := meter.Int64Counter("msglog.cursor.conflicts",
		metric.WithDescription("Cursor advances that found the offset moved"),
	)
	if err != nil {
		return msglog.Hooks{}, fmt.Errorf("failed to create counter: %w", err)
	}
	duration, err := meter.Float64Histogram("msglog.consume.duration",
		metric.WithDescription("Time spent in successful Consume calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return msglog.Hooks{}, fmt.Errorf("failed to create histogram: %w", err)
	}
	active, err := meter.Int64UpDownCounter("msglog.subscriptions.active",
		metric.WithDescription("Running subscriptions"),
	)
	if err != nil {
		return msglog.Hooks{}, fmt.Errorf("failed to create up-down counter: %w", err)
	}

	topicAttr := func(topic string) metric.MeasurementOption {
		return metric.WithAttributes(attribute.String(attrTopic, topic))
	}
	subAttrs := func(topic, sub string) metric.MeasurementOption {
		return metric.WithAttributes(attribute.String(attrTopic, topic), attribute.String(attrSubscription, sub))
	}

	return msglog.Hooks{
		OnPublish: func(ctx context.Context, topic string, _ uint64) {
			published.Add(ctx, 1, topicAttr(topic))
		},
		OnSubscribe: func(ctx context.Context, topic, _ string, _ uint64) {
			active.Add(ctx, 1, topicAttr(topic))
		},
		OnStop: func(ctx context.Context, topic, _ string) {
			active.Add(ctx, -1, topicAttr(topic))
		},
		OnDeliver: func(ctx context.Context, topic, sub string, _ uint64, took time.Duration) {
			delivered.Add(ctx, 1, subAttrs(topic, sub))
			duration.Record(ctx, took.Seconds(), topicAttr(topic))
		},
		OnFailure: func(ctx context.Context, err *msglog.ConsumerError) {
			failed.Add(ctx, 1, subAttrs(err.Topic, err.SubscriptionID))
		},
		OnAdvanceConflict: func(ctx context.Context, topic, sub string, _ uint64) {
			conflicts.Add(ctx, 1, subAttrs(topic, sub))
		},
	}, nil
}
