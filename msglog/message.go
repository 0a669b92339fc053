package msglog

import (
	"context"
	"encoding/json"
	"time"
)

// Message is an immutable entry of a topic log.
type Message struct {
	topic      string
	sequence   uint64
	payload    []byte
	enqueuedAt time.Time
	decoder    Decoder
}

func (m Message) Topic() string { return m.topic }

func (m Message) Sequence() uint64 { return m.sequence }

func (m Message) EnqueuedAt() time.Time { return m.enqueuedAt }

// Payload returns a copy of the message body.
func (m Message) Payload() []byte { return append([]byte(nil), m.payload...) }

func (m Message) Decode(ctx context.Context, into any) error {
	if m.decoder == nil {
		return jsonCodec{}.Decode(ctx, m.payload, into)
	}
	return m.decoder.Decode(ctx, m.payload, into)
}

// Consumer receives messages from a subscription. Consume is always called
// from the subscription's own goroutine, one message at a time.
type Consumer interface {
	Consume(ctx context.Context, msg Message) error
}

type ConsumerFunc func(context.Context, Message) error

func (f ConsumerFunc) Consume(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

type Encoder interface {
	Encode(ctx context.Context, v any) ([]byte, error)
}

type Decoder interface {
	Decode(ctx context.Context, data []byte, into any) error
}

type jsonCodec struct{}

func (jsonCodec) Encode(_ context.Context, v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Decode(_ context.Context, data []byte, into any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, into)
}
