package msglog

import (
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTopic(name string) *Topic {
	return newTopic(name, time.Now, jsonCodec{})
}

func TestTopic_AppendIsDense(t *testing.T) {
	topic := testTopic("orders")

	const writers, perWriter = 8, 100
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seqs []uint64
	)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWriter {
				seq := topic.Append([]byte("x"))
				mu.Lock()
				seqs = append(seqs, seq)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(writers*perWriter), topic.Len())
	slices.Sort(seqs)
	for i, seq := range seqs {
		assert.Equal(t, uint64(i), seq)
		msg, err := topic.Get(uint64(i))
		require.NoError(t, err)
		assert.Equal(t, uint64(i), msg.Sequence())
		assert.Equal(t, "orders", msg.Topic())
	}
}

func TestTopic_GetOutOfRange(t *testing.T) {
	topic := testTopic("orders")
	_, err := topic.Get(0)
	assert.ErrorIs(t, err, ErrNotFound)

	topic.Append([]byte("a"))
	_, err = topic.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTopic_PayloadIsCopied(t *testing.T) {
	topic := testTopic("orders")
	in := []byte("abc")
	topic.Append(in)
	in[0] = 'z'

	msg, err := topic.Get(0)
	require.NoError(t, err)
	out := msg.Payload()
	assert.Equal(t, []byte("abc"), out)

	out[1] = 'z'
	assert.Equal(t, []byte("abc"), msg.Payload())
}

func TestTopic_EnqueuedAt(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	topic := newTopic("orders", func() time.Time { return at }, jsonCodec{})
	topic.Append(nil)

	msg, err := topic.Get(0)
	require.NoError(t, err)
	assert.Equal(t, at, msg.EnqueuedAt())
	assert.Empty(t, msg.Payload())
}

func TestTopic_AppendDoesNotWaitForOtherTopics(t *testing.T) {
	busy, free := testTopic("busy"), testTopic("free")
	busy.mu.Lock()
	defer busy.mu.Unlock()

	done := make(chan uint64)
	go func() { done <- free.Append([]byte("a")) }()

	select {
	case seq := <-done:
		assert.Equal(t, uint64(0), seq)
	case <-time.After(time.Second):
		t.Fatal("append blocked on another topic's lock")
	}
}

func TestTopic_ChangedSignal(t *testing.T) {
	topic := testTopic("orders")

	ready, signal := topic.changed(0)
	require.False(t, ready)
	require.NotNil(t, signal)

	topic.Append([]byte("a"))
	select {
	case <-signal:
	case <-time.After(time.Second):
		t.Fatal("append did not close the signal channel")
	}

	ready, _ = topic.changed(0)
	assert.True(t, ready)
	ready, _ = topic.changed(1)
	assert.False(t, ready)
}

func TestTopic_Attach(t *testing.T) {
	topic := testTopic("orders")
	topic.Append([]byte("a"))
	topic.Append([]byte("b"))

	earliest, latest := &subscription{}, &subscription{}
	assert.Equal(t, uint64(0), topic.attach(earliest, StartEarliest))
	assert.Equal(t, uint64(2), topic.attach(latest, StartLatest))
	assert.Equal(t, 2, topic.Subscriptions())

	topic.detach(earliest)
	topic.detach(latest)
	assert.Equal(t, 0, topic.Subscriptions())
}
