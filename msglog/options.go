package msglog

import (
	"time"

	"github.com/infigaming-com/go-msglog/uid"
)

type Option func(*options)

type SubscriptionOption func(*subscriptionOptions)

// StartPolicy selects where a new subscription's cursor begins.
type StartPolicy int

const (
	// StartEarliest replays the topic from sequence 0.
	StartEarliest StartPolicy = iota
	// StartLatest skips history and delivers only messages appended after Subscribe.
	StartLatest
)

func (p StartPolicy) String() string {
	switch p {
	case StartEarliest:
		return "earliest"
	case StartLatest:
		return "latest"
	default:
		return "unknown"
	}
}

// IDGenerator produces subscription IDs.
type IDGenerator interface {
	New() (string, error)
}

type options struct {
	logger    Logger
	hooks     Hooks
	errorSink ErrorSink
	encoder   Encoder
	decoder   Decoder
	idleMin   time.Duration
	idleMax   time.Duration
	ids       IDGenerator
	now       func() time.Time
}

type subscriptionOptions struct {
	id        string
	start     StartPolicy
	errorSink ErrorSink
	idleMin   time.Duration
	idleMax   time.Duration
}

func defaultOptions() options {
	return options{
		logger:    noopLogger{},
		errorSink: noopSink{},
		encoder:   jsonCodec{},
		decoder:   jsonCodec{},
		idleMin:   50 * time.Millisecond,
		idleMax:   5 * time.Second,
		ids:       uid.NewUUIDV7(),
		now:       time.Now,
	}
}

func defaultSubscriptionOptions(parent options) subscriptionOptions {
	return subscriptionOptions{
		start:     StartEarliest,
		errorSink: parent.errorSink,
		idleMin:   parent.idleMin,
		idleMax:   parent.idleMax,
	}
}

func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithHooks(h Hooks) Option {
	return func(o *options) {
		o.hooks = h
	}
}

// WithErrorSink sets the default sink for consumer failures of every subscription.
func WithErrorSink(sink ErrorSink) Option {
	return func(o *options) {
		if sink != nil {
			o.errorSink = sink
		}
	}
}

func WithEncoder(enc Encoder) Option {
	return func(o *options) {
		if enc != nil {
			o.encoder = enc
		}
	}
}

func WithDecoder(dec Decoder) Option {
	return func(o *options) {
		if dec != nil {
			o.decoder = dec
		}
	}
}

// WithIdleWait bounds the deadline a caught-up worker passes to WaitForNew.
// The deadline starts at min and doubles on every timeout up to max.
func WithIdleWait(min, max time.Duration) Option {
	return func(o *options) {
		if min > 0 {
			o.idleMin = min
		}
		if max >= o.idleMin {
			o.idleMax = max
		}
	}
}

func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.ids = gen
		}
	}
}

// WithNowFunc overrides the clock used for EnqueuedAt (for testing).
func WithNowFunc(fn func() time.Time) Option {
	return func(o *options) {
		if fn != nil {
			o.now = fn
		}
	}
}

func WithStartPolicy(p StartPolicy) SubscriptionOption {
	return func(o *subscriptionOptions) {
		o.start = p
	}
}

// WithSubscriptionID fixes the subscription ID instead of generating one.
// Consumers that track acknowledgments key them by this ID.
func WithSubscriptionID(id string) SubscriptionOption {
	return func(o *subscriptionOptions) {
		o.id = id
	}
}

func WithSubscriptionErrorSink(sink ErrorSink) SubscriptionOption {
	return func(o *subscriptionOptions) {
		if sink != nil {
			o.errorSink = sink
		}
	}
}

func WithSubscriptionIdleWait(min, max time.Duration) SubscriptionOption {
	return func(o *subscriptionOptions) {
		if min > 0 {
			o.idleMin = min
		}
		if max >= o.idleMin {
			o.idleMax = max
		}
	}
}
