package msglog

import (
	"context"
	"time"

	"github.com/infigaming-com/go-msglog/msglog/internal/backoff"
)

// WorkerState is the lifecycle state of a subscription's worker.
type WorkerState int32

const (
	WorkerRunning WorkerState = iota
	WorkerBlocked
	WorkerStopped
)

func (s WorkerState) String() string {
	switch s {
	case WorkerRunning:
		return "running"
	case WorkerBlocked:
		return "blocked"
	case WorkerStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// run is the subscription's worker loop. It owns the cursor: it is the only
// goroutine that advances it.
func (s *subscription) run() {
	defer s.finish()
	idle := backoff.New(backoff.Config{Initial: s.options.idleMin, Max: s.options.idleMax})
	for s.ctx.Err() == nil {
		offset := s.cursor.Offset()
		if offset >= s.topic.Len() {
			s.state.Store(int32(WorkerBlocked))
			res := s.cursor.WaitForNew(s.ctx, time.Now().Add(idle.Next()))
			s.state.Store(int32(WorkerRunning))
			if res == WaitTimeout {
				s.logger.Debug(s.ctx, "subscription idle", "topic", s.Topic(), "subscription", s.id, "offset", offset, "wait", idle.Current())
			}
			continue
		}
		msg, err := s.topic.Get(offset)
		if err != nil {
			s.logger.Error(s.ctx, "read failed", "topic", s.Topic(), "subscription", s.id, "offset", offset, "err", err)
			continue
		}
		idle.Reset()
		s.deliver(msg)
		s.commit(offset)
	}
}

func (s *subscription) finish() {
	s.state.Store(int32(WorkerStopped))
	s.topic.detach(s)
	ctx := context.WithoutCancel(s.ctx)
	if s.hooks.OnStop != nil {
		s.hooks.OnStop(ctx, s.Topic(), s.id)
	}
	s.logger.Info(ctx, "subscription stopped", "topic", s.Topic(), "subscription", s.id, "offset", s.cursor.Offset())
	close(s.done)
}

func (s *subscription) deliver(msg Message) {
	start := time.Now()
	err := s.consume(msg)
	took := time.Since(start)
	s.recordHealth(msg.Sequence(), err)
	if err == nil {
		if s.hooks.OnDeliver != nil {
			s.hooks.OnDeliver(s.ctx, s.Topic(), s.id, msg.Sequence(), took)
		}
		return
	}
	cerr := &ConsumerError{Topic: s.Topic(), SubscriptionID: s.id, Sequence: msg.Sequence(), Err: err}
	ctx := context.WithoutCancel(s.ctx)
	s.logger.Warn(ctx, "consume failed", "topic", s.Topic(), "subscription", s.id, "sequence", msg.Sequence(), "err", err)
	s.options.errorSink.Report(ctx, cerr)
	if s.hooks.OnFailure != nil {
		s.hooks.OnFailure(ctx, cerr)
	}
}

func (s *subscription) consume(msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return s.consumer.Consume(s.ctx, msg)
}

// commit advances the cursor past offset. If the offset moved underneath the
// worker, the delivery is not repeated; the loop continues from the new offset.
func (s *subscription) commit(offset uint64) {
	for {
		if s.cursor.Advance(offset) {
			return
		}
		current := s.cursor.Offset()
		if current == offset {
			continue
		}
		if s.hooks.OnAdvanceConflict != nil {
			s.hooks.OnAdvanceConflict(s.ctx, s.Topic(), s.id, offset)
		}
		s.logger.Debug(s.ctx, "cursor moved during delivery", "topic", s.Topic(), "subscription", s.id, "expected", offset, "current", current)
		return
	}
}
