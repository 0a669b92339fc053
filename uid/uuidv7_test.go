package uid

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDV7_New(t *testing.T) {
	gen := NewUUIDV7()

	id, err := gen.New()
	require.NoError(t, err)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	t.Run("prefix", func(t *testing.T) {
		id, err := gen.WithPrefix("sub-").New()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "sub-"))
		_, err = uuid.Parse(strings.TrimPrefix(id, "sub-"))
		assert.NoError(t, err)
	})

	t.Run("unique", func(t *testing.T) {
		seen := map[string]struct{}{}
		for i := 0; i < 1000; i++ {
			id, err := gen.New()
			require.NoError(t, err)
			_, dup := seen[id]
			require.False(t, dup, "duplicate id %s", id)
			seen[id] = struct{}{}
		}
	})
}

func TestSequence_New(t *testing.T) {
	seq := NewSequence("worker")

	var wg sync.WaitGroup
	var mu sync.Mutex
	ids := map[string]struct{}{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id, _ := seq.New()
				mu.Lock()
				ids[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 800)
	assert.Contains(t, ids, "worker-1")
	assert.Contains(t, ids, "worker-800")
}
