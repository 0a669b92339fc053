package errsink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/infigaming-com/go-msglog/msglog"
)

const defaultMaxLen = 1000

// Record is the JSON form of a consumer failure stored in Redis.
type Record struct {
	Topic          string    `json:"topic"`
	SubscriptionID string    `json:"subscription_id"`
	Sequence       uint64    `json:"sequence"`
	Error          string    `json:"error"`
	ReportedAt     time.Time `json:"reported_at"`
}

// RedisSink pushes failures onto a capped Redis list, newest first.
type RedisSink struct {
	client redis.Cmdable
	key    string
	maxLen int64
	logger *zap.Logger
	now    func() time.Time
}

type RedisOption func(*RedisSink)

func WithMaxLen(n int64) RedisOption {
	return func(s *RedisSink) {
		if n > 0 {
			s.maxLen = n
		}
	}
}

func WithLogger(logger *zap.Logger) RedisOption {
	return func(s *RedisSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewRedisSink(client redis.Cmdable, key string, opts ...RedisOption) (*RedisSink, error) {
	if client == nil {
		return nil, fmt.Errorf("errsink: redis client required")
	}
	if key == "" {
		return nil, fmt.Errorf("errsink: redis key required")
	}
	s := &RedisSink{
		client: client,
		key:    key,
		maxLen: defaultMaxLen,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisSink) Report(ctx context.Context, err *msglog.ConsumerError) {
	data, mErr := json.Marshal(Record{
		Topic:          err.Topic,
		SubscriptionID: err.SubscriptionID,
		Sequence:       err.Sequence,
		Error:          err.Err.Error(),
		ReportedAt:     s.now().UTC(),
	})
	if mErr != nil {
		s.logger.Error("failed to marshal failure record", zap.Error(mErr))
		return
	}
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, data)
	pipe.LTrim(ctx, s.key, 0, s.maxLen-1)
	if _, pErr := pipe.Exec(ctx); pErr != nil {
		s.logger.Error("failed to store failure record",
			zap.String("key", s.key),
			zap.String("topic", err.Topic),
			zap.Uint64("sequence", err.Sequence),
			zap.Error(pErr),
		)
	}
}

// Recent returns up to n records, newest first.
func (s *RedisSink) Recent(ctx context.Context, n int64) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}
	values, err := s.client.LRange(ctx, s.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read failure records: %w", err)
	}
	records := make([]Record, 0, len(values))
	for _, v := range values {
		var r Record
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, fmt.Errorf("failed to decode failure record: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}
