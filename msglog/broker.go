package msglog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Broker is the registry of topics and the entry point for Publish and
// Subscribe. The topic map has its own lock, held only while a name is
// resolved; appends and deliveries use the per-topic locks.
type Broker struct {
	opts   options
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	topics map[string]*Topic
	subs   map[*subscription]struct{}
	closed bool
}

func New(opts ...Option) *Broker {
	base := defaultOptions()
	for _, opt := range opts {
		opt(&base)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		opts:   base,
		ctx:    ctx,
		cancel: cancel,
		topics: map[string]*Topic{},
		subs:   map[*subscription]struct{}{},
	}
}

// Topic returns the topic called name, creating it on first use. Concurrent
// calls with the same name return the same *Topic.
func (b *Broker) Topic(name string) (*Topic, error) {
	if name == "" {
		return nil, invalidTopic(name)
	}
	return b.resolve(name)
}

// Topics returns the names of all topics in lexical order.
func (b *Broker) Topics() []string {
	b.mu.RLock()
	names := lo.Keys(b.topics)
	b.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Subscriptions returns the live subscriptions of every topic.
func (b *Broker) Subscriptions() []Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lo.Map(lo.Keys(b.subs), func(s *subscription, _ int) Subscription { return s })
}

// Publish appends payload to topic and returns its sequence number.
func (b *Broker) Publish(ctx context.Context, topic string, payload []byte) (uint64, error) {
	if topic == "" {
		return 0, invalidTopic(topic)
	}
	t, err := b.resolve(topic)
	if err != nil {
		return 0, err
	}
	seq := t.Append(payload)
	if b.opts.hooks.OnPublish != nil {
		b.opts.hooks.OnPublish(ctx, topic, seq)
	}
	b.opts.logger.Debug(ctx, "message published", "topic", topic, "sequence", seq, "size", len(payload))
	return seq, nil
}

// PublishValue encodes v with the broker's Encoder and publishes the result.
func (b *Broker) PublishValue(ctx context.Context, topic string, v any) (uint64, error) {
	if topic == "" {
		return 0, invalidTopic(topic)
	}
	payload, err := b.opts.encoder.Encode(ctx, v)
	if err != nil {
		return 0, fmt.Errorf("msglog: encode payload for %s: %w", topic, err)
	}
	return b.Publish(ctx, topic, payload)
}

// Subscribe starts a worker that delivers topic's messages to consumer in
// append order. The subscription runs until it is cancelled or the broker closes.
func (b *Broker) Subscribe(topic string, consumer Consumer, opts ...SubscriptionOption) (Subscription, error) {
	if topic == "" {
		return nil, invalidTopic(topic)
	}
	if consumer == nil {
		return nil, nilConsumer(topic)
	}
	t, err := b.resolve(topic)
	if err != nil {
		return nil, err
	}
	sopts := defaultSubscriptionOptions(b.opts)
	for _, opt := range opts {
		opt(&sopts)
	}
	id := sopts.id
	if id == "" {
		if id, err = b.opts.ids.New(); err != nil {
			return nil, fmt.Errorf("msglog: subscription id: %w", err)
		}
	}

	sub := newSubscription(b.ctx, b, t, id, consumer, sopts)
	sub.cursor = newCursor(t, t.attach(sub, sopts.start))

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		t.detach(sub)
		sub.cancel()
		return nil, ErrClosed
	}
	b.subs[sub] = struct{}{}
	go sub.run()
	b.mu.Unlock()

	offset := sub.cursor.Offset()
	if b.opts.hooks.OnSubscribe != nil {
		b.opts.hooks.OnSubscribe(b.ctx, topic, id, offset)
	}
	b.opts.logger.Info(b.ctx, "subscribed", "topic", topic, "subscription", id, "start", sopts.start.String(), "offset", offset)
	return sub, nil
}

// Close rejects further Publish and Subscribe calls, cancels every
// subscription and waits for their workers, bounded by ctx.
func (b *Broker) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := lo.Keys(b.subs)
	b.mu.Unlock()

	var g errgroup.Group
	for _, sub := range subs {
		g.Go(func() error { return sub.Stop(ctx) })
	}
	err := g.Wait()
	b.cancel()
	b.opts.logger.Info(ctx, "broker closed", "topics", len(b.Topics()), "subscriptions", len(subs))
	return err
}

func (b *Broker) resolve(name string) (*Topic, error) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil, ErrClosed
	}
	t, ok := b.topics[name]
	b.mu.RUnlock()
	if ok {
		return t, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	if t, ok := b.topics[name]; ok {
		return t, nil
	}
	t = newTopic(name, b.opts.now, b.opts.decoder)
	b.topics[name] = t
	b.opts.logger.Info(b.ctx, "topic created", "topic", name)
	return t, nil
}

func (b *Broker) remove(sub *subscription) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}
