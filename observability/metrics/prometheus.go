package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/infigaming-com/go-msglog/msglog"
)

// Prometheus holds the broker's Prometheus collectors.
type Prometheus struct {
	published *prometheus.CounterVec
	delivered *prometheus.CounterVec
	failures  *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	active    *prometheus.GaugeVec
}

// NewPrometheus registers the collectors with reg. Like promauto, it panics
// if they are already registered.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "msglog_published_total",
			Help: "Messages appended to a topic",
		}, []string{"topic"}),
		delivered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "msglog_delivered_total",
			Help: "Messages consumed successfully",
		}, []string{"topic"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "msglog_consume_failures_total",
			Help: "Consume calls that returned an error or panicked",
		}, []string{"topic"}),
		conflicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "msglog_cursor_conflicts_total",
			Help: "Cursor advances that found the offset moved",
		}, []string{"topic"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "msglog_consume_duration_seconds",
			Help:    "Time spent in successful Consume calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),
		active: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "msglog_subscriptions_active",
			Help: "Running subscriptions",
		}, []string{"topic"}),
	}
}

func (p *Prometheus) Hooks() msglog.Hooks {
	return msglog.Hooks{
		OnPublish: func(_ context.Context, topic string, _ uint64) {
			p.published.WithLabelValues(topic).Inc()
		},
		OnSubscribe: func(_ context.Context, topic, _ string, _ uint64) {
			p.active.WithLabelValues(topic).Inc()
		},
		OnStop: func(_ context.Context, topic, _ string) {
			p.active.WithLabelValues(topic).Dec()
		},
		OnDeliver: func(_ context.Context, topic, _ string, _ uint64, took time.Duration) {
			p.delivered.WithLabelValues(topic).Inc()
			p.duration.WithLabelValues(topic).Observe(took.Seconds())
		},
		OnFailure: func(_ context.Context, err *msglog.ConsumerError) {
			p.failures.WithLabelValues(err.Topic).Inc()
		},
		OnAdvanceConflict: func(_ context.Context, topic, _ string, _ uint64) {
			p.conflicts.WithLabelValues(topic).Inc()
		},
	}
}
