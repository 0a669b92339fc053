package msglog

import (
	stderrors "errors"
	"fmt"

	"github.com/infigaming-com/go-msglog/errors"
)

var (
	ErrInvalidArgument  = stderrors.New("msglog: invalid argument")
	ErrClosed           = stderrors.New("msglog: broker closed")
	ErrNotFound         = stderrors.New("msglog: message not found")
	ErrOffsetOutOfRange = stderrors.New("msglog: offset out of range")
)

// Error codes for configuration failures returned by Publish and Subscribe.
const (
	CodeInvalidTopic = 20000 + iota
	CodeNilConsumer
)

func invalidTopic(name string) error {
	return errors.NewError(CodeInvalidTopic, "msglog: topic name required", ErrInvalidArgument).
		WithDetails(map[string]string{"topic": name})
}

func nilConsumer(topic string) error {
	return errors.NewError(CodeNilConsumer, "msglog: consumer required", ErrInvalidArgument).
		WithDetails(map[string]string{"topic": topic})
}

// ConsumerError describes a failed Consume call. It is reported to the
// subscription's ErrorSink and never returned to publishers.
type ConsumerError struct {
	Topic          string
	SubscriptionID string
	Sequence       uint64
	Err            error
}

func (e *ConsumerError) Error() string {
	return fmt.Sprintf("msglog: consume %s#%d (subscription %s): %v", e.Topic, e.Sequence, e.SubscriptionID, e.Err)
}

func (e *ConsumerError) Unwrap() error { return e.Err }

type panicError struct{ value any }

func (p panicError) Error() string { return fmt.Sprintf("consumer panic: %v", p.value) }
