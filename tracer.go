package xtrace

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xclock"
	"github.com/trickstertwo/xlog"
)

var _ API = (*Tracer)(nil)

// Tracer is the central facade tying the three instrumenters to the carrier
// bridge, endpoint registry and context store. Host integration code calls
// its hooks around the real client's send/receive invocations; the tracer
// introduces no goroutines of its own and never blocks on I/O.
type Tracer struct {
	send    *Instrumenter
	receive *Instrumenter
	process *Instrumenter

	bridge   Bridge
	registry *EndpointRegistry
	store    *contextStore

	clock  xclock.Clock
	logger *xlog.Logger

	metrics tracerMetrics
}

// tracerMetrics counts spans and absorbed faults with lock-free atomics.
type tracerMetrics struct {
	sendSpans    atomic.Uint64
	receiveSpans atomic.Uint64
	processSpans atomic.Uint64
	faults       atomic.Uint64
}

// Metrics is the observable telemetry of a Tracer.
type Metrics struct {
	SendSpans    uint64
	ReceiveSpans uint64
	ProcessSpans uint64
	Faults       uint64
}

// GetMetrics returns current tracer metrics.
func (t *Tracer) GetMetrics() Metrics {
	return Metrics{
		SendSpans:    t.metrics.sendSpans.Load(),
		ReceiveSpans: t.metrics.receiveSpans.Load(),
		ProcessSpans: t.metrics.processSpans.Load(),
		Faults:       t.metrics.faults.Load(),
	}
}

// RegisterConsumer records the broker URL a consumer was constructed against.
// Call from the consumer-construction hook of the integration layer.
func (t *Tracer) RegisterConsumer(consumer any, brokerURL string) {
	defer t.absorb("register_consumer")
	t.registry.Register(consumer, brokerURL)
}

// DeregisterConsumer drops the association when the consumer closes.
func (t *Tracer) DeregisterConsumer(consumer any) {
	defer t.absorb("deregister_consumer")
	t.registry.Deregister(consumer)
}

// EnterReceive marks the entry of a receive-style call, capturing the start
// timestamp before the wrapped call executes. One entry per invocation.
func (t *Tracer) EnterReceive(consumer any) *ReceiveCall {
	return &ReceiveCall{
		tracer:   t,
		consumer: consumer,
		start:    t.clock.Now(),
	}
}

// FinishInternalReceive completes the low-level receive shape, the one the
// client library drives before a user-registered listener runs. The resulting
// context is attached to the message so the subsequent process span can
// parent on it.
func (t *Tracer) FinishInternalReceive(ctx context.Context, call *ReceiveCall, msg *Message, err error) {
	defer t.absorb("internal_receive")
	if current := call.complete(ctx, msg, err); current != nil {
		t.store.attach(msg, current)
	}
}

// FinishSyncReceive completes the public blocking receive shape. The receive
// span is a leaf: no context is attached to the message.
func (t *Tracer) FinishSyncReceive(ctx context.Context, call *ReceiveCall, msg *Message, err error) {
	defer t.absorb("sync_receive")
	call.complete(ctx, msg, err)
}

// FinishBatchReceive completes the batch receive shape: one retroactive span
// per delivered message, all sharing the call's entry timestamp. The entry is
// consumed exactly once; a failed batch is terminal with no spans.
func (t *Tracer) FinishBatchReceive(ctx context.Context, call *ReceiveCall, msgs []*Message, err error) {
	defer t.absorb("batch_receive")
	if call == nil || call.tracer == nil {
		return
	}
	if !call.done.CompareAndSwap(false, true) {
		return
	}
	if err != nil {
		return
	}
	for _, msg := range msgs {
		t.StartAndEndConsumerReceive(ctx, msg, call.start, call.consumer)
	}
}

// WatchAsyncReceive completes the async receive shape. The continuation is
// registered immediately, before the future is handed back to the caller, and
// runs on whatever goroutine completes the future; the correlation entry
// rides in the closure, so overlapping async calls on the same consumer keep
// independent start times.
func (t *Tracer) WatchAsyncReceive(ctx context.Context, call *ReceiveCall, future Future) {
	defer t.absorb("async_receive")
	if future == nil {
		return
	}
	future.OnComplete(func(msg *Message, err error) {
		defer t.absorb("async_receive_complete")
		call.complete(ctx, msg, err)
	})
}

// StartAndEndConsumerReceive is the single public receive entry point for
// call-site wrappers. It resolves the consumer's broker endpoint, consults
// ShouldStart, extracts the upstream context from the message headers, and
// retroactively records the receive span over [start, now]. Returns the
// resulting context, or nil when no span was started.
func (t *Tracer) StartAndEndConsumerReceive(parent context.Context, msg *Message, start time.Time, consumer any) (current context.Context) {
	defer t.absorb("consumer_receive")
	if msg == nil {
		return nil
	}
	if parent == nil {
		parent = context.Background()
	}
	brokerURL, ok := t.registry.Lookup(consumer)
	if !ok && consumer != nil && t.logger != nil {
		t.logger.Debug().
			Err(ErrUnknownConsumer{consumer: consumer}).
			Msg("xtrace: consumer endpoint unknown, span gets no network attributes")
	}
	req := NewRequest(msg, brokerURL)
	if !t.receive.ShouldStart(parent, req) {
		return nil
	}
	// The retroactive start/end path cannot extract from the carrier itself,
	// so chain the producer context in before starting.
	parent = t.bridge.Extract(parent, req)
	t.metrics.receiveSpans.Add(1)
	return t.receive.StartAndEnd(parent, req, nil, start, t.clock.Now())
}

// AttachedContext returns the context the internal receive path attached to a
// message, without consuming it. Absent for the sync and async public shapes.
func (t *Tracer) AttachedContext(msg *Message) (context.Context, bool) {
	return t.store.peek(msg)
}

// absorb is the seam between the tracing core and the observed call: any
// failure inside a hook is swallowed here and at most logged, never allowed
// to alter the result or timing of the business call.
func (t *Tracer) absorb(hook string) {
	if r := recover(); r != nil {
		t.metrics.faults.Add(1)
		if t.logger != nil {
			t.logger.Warn().
				Str("hook", hook).
				Err(fmt.Errorf("%v", r)).
				Msg("xtrace: instrumentation fault absorbed")
		}
	}
}
