// Package errsink provides msglog.ErrorSink implementations that make
// consumer failures visible without touching the delivery path.
package errsink

import (
	"context"
	"sync"

	"github.com/infigaming-com/go-msglog/msglog"
)

// Recorder keeps every reported failure in memory.
type Recorder struct {
	mu   sync.Mutex
	errs []*msglog.ConsumerError
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Report(_ context.Context, err *msglog.ConsumerError) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

// Errors returns a snapshot of the recorded failures in report order.
func (r *Recorder) Errors() []*msglog.ConsumerError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*msglog.ConsumerError(nil), r.errs...)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

// Fanout reports to every sink in order.
func Fanout(sinks ...msglog.ErrorSink) msglog.ErrorSink {
	return msglog.ErrorSinkFunc(func(ctx context.Context, err *msglog.ConsumerError) {
		for _, s := range sinks {
			if s != nil {
				s.Report(ctx, err)
			}
		}
	})
}
