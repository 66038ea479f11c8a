package xtrace

import (
	"context"
	"sync/atomic"
	"time"
)

// Future is the async receive result the tracer can observe. OnComplete must
// run fn on whatever goroutine completes the future, and must run callbacks
// in registration order so the tracer's continuation executes before any the
// caller registers afterward.
type Future interface {
	OnComplete(fn func(msg *Message, err error))
}

// ReceiveCall correlates the entry and exit of one in-flight receive
// invocation: the start timestamp captured before the wrapped call executes,
// and the consumer it runs on. Each invocation gets its own entry; the entry
// travels by value/closure (never goroutine-local state), so async
// completions on other goroutines read the same captured start time.
//
// The entry is consumed exactly once: entered -> completed, with completion
// on failure being terminal with no span.
type ReceiveCall struct {
	tracer   *Tracer
	consumer any
	start    time.Time
	done     atomic.Bool
}

// StartTime returns the instant captured at call entry.
func (c *ReceiveCall) StartTime() time.Time { return c.start }

// complete transitions entered -> completed. Returns the receive span's
// context, or nil when the call failed, yielded no message, the span was
// suppressed, or the entry was already consumed.
func (c *ReceiveCall) complete(parent context.Context, msg *Message, err error) context.Context {
	if c == nil || c.tracer == nil {
		return nil
	}
	if !c.done.CompareAndSwap(false, true) {
		return nil
	}
	// Failed receive means no message, so nothing to attribute.
	if err != nil || msg == nil {
		return nil
	}
	return c.tracer.StartAndEndConsumerReceive(parent, msg, c.start, c.consumer)
}
