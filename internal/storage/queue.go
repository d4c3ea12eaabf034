package storage

import (
	"context"
	"errors"
	"sync"
)

var ErrQueueClosed = errors.New("write queue closed")

type queueOp struct {
	fn  func() error
	res chan error
}

// Queue runs every record mutation on one goroutine, in submission order, so
// read-modify-write cycles on the same record never interleave.
type Queue struct {
	mu     sync.RWMutex
	closed bool
	ops    chan queueOp
	done   chan struct{}
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}
	q := &Queue{
		ops:  make(chan queueOp, size),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for op := range q.ops {
		op.res <- op.fn()
	}
}

// Do schedules fn and waits for its result. Once scheduled, fn runs to
// completion even if ctx is cancelled while waiting.
func (q *Queue) Do(ctx context.Context, fn func() error) error {
	res := make(chan error, 1)

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	select {
	case q.ops <- queueOp{fn: fn, res: res}:
		q.mu.RUnlock()
	case <-ctx.Done():
		q.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits until queued operations finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	close(q.ops)
	q.mu.Unlock()
	<-q.done
}
