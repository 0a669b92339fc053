package ackstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/coocood/freecache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infigaming-com/go-msglog/msglog"
)

func stores(t *testing.T) map[string]Store {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return map[string]Store{
		"freecache": NewFreeCacheStore(freecache.NewCache(1024 * 1024)),
		"redis":     NewRedisStore(client, "ack:"),
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			acked, err := store.Acked(ctx, "billing:orders:1")
			require.NoError(t, err)
			assert.False(t, acked)

			require.NoError(t, store.Ack(ctx, "billing:orders:1", time.Minute))

			acked, err = store.Acked(ctx, "billing:orders:1")
			require.NoError(t, err)
			assert.True(t, acked)

			acked, err = store.Acked(ctx, "billing:orders:2")
			require.NoError(t, err)
			assert.False(t, acked)

			_, err = store.Acked(ctx, "")
			assert.ErrorIs(t, err, ErrInvalidKey)
			assert.ErrorIs(t, store.Ack(ctx, "", 0), ErrInvalidKey)
		})
	}
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, "ack:")
	ctx := context.Background()

	require.NoError(t, store.Ack(ctx, "k", time.Minute))
	assert.True(t, mr.Exists("ack:k"))
	assert.Equal(t, time.Minute, mr.TTL("ack:k"))

	mr.FastForward(2 * time.Minute)
	acked, err := store.Acked(ctx, "k")
	require.NoError(t, err)
	assert.False(t, acked)
}

func published(t *testing.T, payloads ...string) (*msglog.Broker, *msglog.Topic) {
	b := msglog.New()
	t.Cleanup(func() { _ = b.Close(context.Background()) })
	for _, p := range payloads {
		_, err := b.Publish(context.Background(), "orders", []byte(p))
		require.NoError(t, err)
	}
	top, err := b.Topic("orders")
	require.NoError(t, err)
	return b, top
}

func TestIdempotent(t *testing.T) {
	ctx := context.Background()
	_, top := published(t, "a", "b")
	first, _ := top.Get(0)
	second, _ := top.Get(1)

	t.Run("skips acknowledged messages", func(t *testing.T) {
		store := NewFreeCacheStore(freecache.NewCache(1024 * 1024))
		var calls int
		c := Idempotent(store, "billing", msglog.ConsumerFunc(func(context.Context, msglog.Message) error {
			calls++
			return nil
		}))

		require.NoError(t, c.Consume(ctx, first))
		require.NoError(t, c.Consume(ctx, first))
		require.NoError(t, c.Consume(ctx, second))
		assert.Equal(t, 2, calls)
	})

	t.Run("failed messages are not acknowledged", func(t *testing.T) {
		store := NewFreeCacheStore(freecache.NewCache(1024 * 1024))
		errBoom := errors.New("boom")
		var calls int
		c := Idempotent(store, "billing", msglog.ConsumerFunc(func(context.Context, msglog.Message) error {
			calls++
			if calls == 1 {
				return errBoom
			}
			return nil
		}))

		assert.ErrorIs(t, c.Consume(ctx, first), errBoom)
		assert.NoError(t, c.Consume(ctx, first))
		assert.Equal(t, 2, calls)

		acked, err := store.Acked(ctx, "billing:orders:0")
		require.NoError(t, err)
		assert.True(t, acked)
	})

	t.Run("names are independent", func(t *testing.T) {
		store := NewFreeCacheStore(freecache.NewCache(1024 * 1024))
		var calls int
		count := msglog.ConsumerFunc(func(context.Context, msglog.Message) error {
			calls++
			return nil
		})
		require.NoError(t, Idempotent(store, "billing", count).Consume(ctx, first))
		require.NoError(t, Idempotent(store, "audit", count).Consume(ctx, first))
		assert.Equal(t, 2, calls)
	})

	t.Run("custom key", func(t *testing.T) {
		store := NewFreeCacheStore(freecache.NewCache(1024 * 1024))
		c := Idempotent(store, "billing", msglog.ConsumerFunc(func(context.Context, msglog.Message) error { return nil }),
			WithKeyFunc(func(_ string, msg msglog.Message) string { return string(msg.Payload()) }),
			WithTTL(time.Hour),
		)
		require.NoError(t, c.Consume(ctx, second))
		acked, err := store.Acked(ctx, "b")
		require.NoError(t, err)
		assert.True(t, acked)
	})

	t.Run("store errors are returned", func(t *testing.T) {
		broken := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
		t.Cleanup(func() { _ = broken.Close() })
		c := Idempotent(NewRedisStore(broken, ""), "billing", msglog.ConsumerFunc(func(context.Context, msglog.Message) error {
			t.Fatal("consumer must not run when the lookup fails")
			return nil
		}))
		assert.Error(t, c.Consume(ctx, first))
	})
}

func TestIdempotent_SeekReplay(t *testing.T) {
	b, _ := published(t, "a", "b", "c")
	store := NewFreeCacheStore(freecache.NewCache(1024 * 1024))

	var mu sync.Mutex
	var handled []string
	consumer := Idempotent(store, "billing", msglog.ConsumerFunc(func(_ context.Context, msg msglog.Message) error {
		mu.Lock()
		handled = append(handled, string(msg.Payload()))
		mu.Unlock()
		return nil
	}))

	sub, err := b.Subscribe("orders", consumer, msglog.WithSubscriptionID("billing"))
	require.NoError(t, err)
	defer sub.Cancel()

	require.Eventually(t, func() bool { return sub.Health().Delivered == 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, sub.Seek(0))
	require.Eventually(t, func() bool { return sub.Health().Delivered == 6 }, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, handled)
}
