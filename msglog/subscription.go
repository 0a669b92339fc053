package msglog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type Subscription interface {
	ID() string
	Topic() string
	// Cancel stops the worker and blocks until it has exited. No Consume call
	// starts after Cancel returns. Calling Cancel from inside Consume deadlocks;
	// return from Consume and let the subscription context end the work instead.
	Cancel()
	// Stop is Cancel bounded by ctx.
	Stop(ctx context.Context) error
	// Seek moves the cursor to offset; the next delivery is the message at offset.
	Seek(offset uint64) error
	Offset() uint64
	State() WorkerState
	Health() SubscriptionHealth
}

type SubscriptionHealth struct {
	ID           string
	Topic        string
	State        WorkerState
	Offset       uint64
	Lag          uint64
	Delivered    uint64
	Failures     uint64
	LastError    string
	LastSequence uint64
	LastActivity time.Time
}

type subscription struct {
	id       string
	broker   *Broker
	topic    *Topic
	cursor   *Cursor
	consumer Consumer
	options  subscriptionOptions
	hooks    Hooks
	logger   Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	state    atomic.Int32
	stopOnce sync.Once

	mu     sync.RWMutex
	health SubscriptionHealth
}

func newSubscription(parent context.Context, b *Broker, t *Topic, id string, consumer Consumer, opts subscriptionOptions) *subscription {
	ctx, cancel := context.WithCancel(parent)
	return &subscription{
		id:       id,
		broker:   b,
		topic:    t,
		consumer: consumer,
		options:  opts,
		hooks:    b.opts.hooks,
		logger:   b.opts.logger,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		health:   SubscriptionHealth{ID: id, Topic: t.Name()},
	}
}

func (s *subscription) ID() string { return s.id }

func (s *subscription) Topic() string { return s.topic.Name() }

func (s *subscription) Offset() uint64 { return s.cursor.Offset() }

func (s *subscription) State() WorkerState { return WorkerState(s.state.Load()) }

func (s *subscription) Cancel() {
	_ = s.Stop(context.Background())
}

func (s *subscription) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.cancel()
		s.cursor.Wake()
	})
	select {
	case <-s.done:
		s.broker.remove(s)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *subscription) Seek(offset uint64) error {
	if s.State() == WorkerStopped || s.ctx.Err() != nil {
		return ErrClosed
	}
	if err := s.cursor.Seek(offset); err != nil {
		return err
	}
	s.logger.Info(s.ctx, "subscription seek", "topic", s.Topic(), "subscription", s.id, "offset", offset)
	return nil
}

func (s *subscription) Health() SubscriptionHealth {
	s.mu.RLock()
	h := s.health
	s.mu.RUnlock()
	h.State = s.State()
	h.Offset = s.cursor.Offset()
	h.Lag = s.cursor.Lag()
	return h
}

func (s *subscription) recordHealth(sequence uint64, err error) {
	s.mu.Lock()
	if err != nil {
		s.health.Failures++
		s.health.LastError = err.Error()
	} else {
		s.health.Delivered++
	}
	s.health.LastSequence = sequence
	s.health.LastActivity = time.Now()
	s.mu.Unlock()
}
