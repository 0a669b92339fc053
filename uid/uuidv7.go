package uid

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// UUIDV7 generates time-ordered identifiers, optionally prefixed.
type UUIDV7 struct {
	prefix string
}

func NewUUIDV7() *UUIDV7 {
	return &UUIDV7{}
}

// WithPrefix returns a generator whose IDs start with prefix.
func (u *UUIDV7) WithPrefix(prefix string) *UUIDV7 {
	return &UUIDV7{prefix: prefix}
}

// New retries v7 generation a few times and falls back to a random v4 ID.
func (u *UUIDV7) New() (string, error) {
	const maxRetry = 10
	for i := 0; i < maxRetry; i++ {
		id, err := uuid.NewV7()
		if err == nil {
			return u.prefix + id.String(), nil
		}
		if i < maxRetry-1 {
			// just over v7's 100ns precision
			time.Sleep(200 * time.Nanosecond)
		}
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("uid: generate: %w", err)
	}
	return u.prefix + id.String(), nil
}

// Sequence generates prefix-1, prefix-2, ... and is safe for concurrent use.
type Sequence struct {
	prefix string
	n      atomic.Uint64
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) New() (string, error) {
	return fmt.Sprintf("%s-%d", s.prefix, s.n.Add(1)), nil
}
