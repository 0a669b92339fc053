package ackstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
)

type freeCacheStore struct {
	cache *freecache.Cache
}

// NewFreeCacheStore keeps acknowledgments in process memory.
// Recommended size: 16MB = 16 * 1024 * 1024
func NewFreeCacheStore(cache *freecache.Cache) Store {
	return &freeCacheStore{cache: cache}
}

func (s *freeCacheStore) Acked(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrInvalidKey
	}
	_, err := s.cache.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return true, nil
}

func (s *freeCacheStore) Ack(_ context.Context, key string, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	ttlSeconds := int(ttl.Seconds())
	if ttlSeconds < 0 {
		ttlSeconds = 0 // No expiry
	}
	if err := s.cache.Set([]byte(key), []byte{1}, ttlSeconds); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}
