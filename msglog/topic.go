package msglog

import (
	"fmt"
	"sync"
	"time"
)

// Topic is an append-only log of messages for one name. Appends are
// serialized by the topic's own lock; topics never share locks.
type Topic struct {
	name    string
	now     func() time.Time
	decoder Decoder

	mu     sync.RWMutex
	log    []Message
	subs   map[*subscription]struct{}
	signal chan struct{} // closed and replaced on every append
}

func newTopic(name string, now func() time.Time, decoder Decoder) *Topic {
	return &Topic{
		name:    name,
		now:     now,
		decoder: decoder,
		subs:    map[*subscription]struct{}{},
		signal:  make(chan struct{}),
	}
}

func (t *Topic) Name() string { return t.name }

// Append stores payload as the next message and returns its sequence number.
// Every waiter blocked on the topic is woken.
func (t *Topic) Append(payload []byte) uint64 {
	data := append([]byte(nil), payload...)
	t.mu.Lock()
	seq := uint64(len(t.log))
	t.log = append(t.log, Message{
		topic:      t.name,
		sequence:   seq,
		payload:    data,
		enqueuedAt: t.now(),
		decoder:    t.decoder,
	})
	close(t.signal)
	t.signal = make(chan struct{})
	t.mu.Unlock()
	return seq
}

// Get returns the message at index without blocking.
func (t *Topic) Get(index uint64) (Message, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if index >= uint64(len(t.log)) {
		return Message{}, fmt.Errorf("%w: %s#%d", ErrNotFound, t.name, index)
	}
	return t.log[index], nil
}

func (t *Topic) Len() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return uint64(len(t.log))
}

// Subscriptions returns the number of live subscriptions on the topic.
func (t *Topic) Subscriptions() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

// changed reports whether a message exists at offset. When it does not, it
// returns the channel the next append will close. Both are read under the
// same lock so an append cannot slip between the check and the wait.
func (t *Topic) changed(offset uint64) (bool, <-chan struct{}) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if uint64(len(t.log)) > offset {
		return true, nil
	}
	return false, t.signal
}

// attach registers sub and returns its starting offset under the topic lock,
// so StartLatest cannot race with a concurrent append.
func (t *Topic) attach(sub *subscription, start StartPolicy) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs[sub] = struct{}{}
	if start == StartLatest {
		return uint64(len(t.log))
	}
	return 0
}

func (t *Topic) detach(sub *subscription) {
	t.mu.Lock()
	delete(t.subs, sub)
	t.mu.Unlock()
}
