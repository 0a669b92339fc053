package msglog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// WaitResult tells a worker why WaitForNew returned.
type WaitResult int

const (
	WaitReady WaitResult = iota
	WaitWoken
	WaitTimeout
	WaitCancelled
)

func (r WaitResult) String() string {
	switch r {
	case WaitReady:
		return "ready"
	case WaitWoken:
		return "woken"
	case WaitTimeout:
		return "timeout"
	case WaitCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Cursor tracks the next unread offset of one subscription into a topic.
type Cursor struct {
	topic *Topic
	next  atomic.Uint64
	wake  chan struct{}
}

func newCursor(topic *Topic, offset uint64) *Cursor {
	c := &Cursor{topic: topic, wake: make(chan struct{}, 1)}
	c.next.Store(offset)
	return c
}

func (c *Cursor) Offset() uint64 { return c.next.Load() }

// Lag is the number of appended messages the cursor has not passed yet.
func (c *Cursor) Lag() uint64 {
	length, offset := c.topic.Len(), c.Offset()
	if offset >= length {
		return 0
	}
	return length - offset
}

// Advance moves the cursor from expected to expected+1. It fails when the
// offset no longer equals expected or when expected is not a stored message.
func (c *Cursor) Advance(expected uint64) bool {
	if expected >= c.topic.Len() {
		return false
	}
	return c.next.CompareAndSwap(expected, expected+1)
}

// Seek repositions the cursor and wakes its worker.
func (c *Cursor) Seek(offset uint64) error {
	if length := c.topic.Len(); offset > length {
		return fmt.Errorf("%w: %d > %d", ErrOffsetOutOfRange, offset, length)
	}
	c.next.Store(offset)
	c.Wake()
	return nil
}

// Wake interrupts a pending WaitForNew. Wakes coalesce; extra ones are dropped.
func (c *Cursor) Wake() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// WaitForNew blocks until a message exists at the cursor's offset, the cursor
// is woken, the deadline passes or ctx is done. A timeout is not an error.
func (c *Cursor) WaitForNew(ctx context.Context, deadline time.Time) WaitResult {
	ready, signal := c.topic.changed(c.Offset())
	if ready {
		return WaitReady
	}
	if ctx.Err() != nil {
		return WaitCancelled
	}
	wait := time.Until(deadline)
	if wait <= 0 {
		return WaitTimeout
	}
	tmr := time.NewTimer(wait)
	defer tmr.Stop()
	select {
	case <-signal:
		return WaitReady
	case <-c.wake:
		return WaitWoken
	case <-ctx.Done():
		return WaitCancelled
	case <-tmr.C:
		return WaitTimeout
	}
}
