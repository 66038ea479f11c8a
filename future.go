package xtrace

import (
	"context"
	"sync"
)

// ReceiveFuture is a ready-made Future for adapters whose client library has
// no native future type. Completion runs callbacks in registration order on
// the completing goroutine, so the tracer's continuation (registered before
// the future leaves the wrapper) always observes the result first.
type ReceiveFuture struct {
	mu        sync.Mutex
	completed bool
	msg       *Message
	err       error
	callbacks []func(msg *Message, err error)
	done      chan struct{}
}

var _ Future = (*ReceiveFuture)(nil)

// NewReceiveFuture returns a pending future.
func NewReceiveFuture() *ReceiveFuture {
	return &ReceiveFuture{done: make(chan struct{})}
}

// OnComplete registers fn. If the future already completed, fn runs
// immediately on the calling goroutine.
func (f *ReceiveFuture) OnComplete(fn func(msg *Message, err error)) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	msg, err := f.msg, f.err
	f.mu.Unlock()
	fn(msg, err)
}

// Complete resolves the future exactly once; later calls are ignored.
func (f *ReceiveFuture) Complete(msg *Message, err error) {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return
	}
	f.completed = true
	f.msg, f.err = msg, err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn(msg, err)
	}
}

// Get blocks until the future resolves or ctx is done.
func (f *ReceiveFuture) Get(ctx context.Context) (*Message, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.msg, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
