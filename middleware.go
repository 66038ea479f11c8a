package xtrace

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// WrapSend decorates a producer send. It starts a send span, injects the
// trace context into the outgoing message's headers, runs send, and ends the
// span with whatever send returned. The observed call's error passes through
// unchanged; instrumentation faults are absorbed around it.
func (t *Tracer) WrapSend(ctx context.Context, msg *Message, brokerURL string, send func(context.Context) error) error {
	sctx, span := t.startSend(ctx, msg, brokerURL)
	err := send(sctx)
	t.endSend(span, err)
	return err
}

func (t *Tracer) startSend(ctx context.Context, msg *Message, brokerURL string) (sctx context.Context, span trace.Span) {
	sctx = ctx
	defer t.absorb("send_start")
	req := NewRequest(msg, brokerURL)
	if !t.send.ShouldStart(ctx, req) {
		return ctx, nil
	}
	sctx, span = t.send.Start(ctx, req)
	t.bridge.Inject(sctx, req)
	t.metrics.sendSpans.Add(1)
	return sctx, span
}

func (t *Tracer) endSend(span trace.Span, err error) {
	defer t.absorb("send_end")
	if span == nil {
		return
	}
	// Send failures still surface as errored spans.
	t.send.End(span, err)
}

// WrapProcess decorates in-process message handling (a listener callback).
// When the low-level receive path attached a context to the message, the
// process span parents on it; otherwise the ambient ctx is the parent. The
// handler's error passes through unchanged.
func (t *Tracer) WrapProcess(ctx context.Context, msg *Message, handler Handler) error {
	pctx, span := t.startProcess(ctx, msg)
	err := handler(pctx, msg)
	t.endProcess(span, err)
	return err
}

func (t *Tracer) startProcess(ctx context.Context, msg *Message) (pctx context.Context, span trace.Span) {
	pctx = ctx
	defer t.absorb("process_start")
	if attached, ok := t.store.take(msg); ok {
		pctx = attached
	}
	req := NewRequest(msg, "")
	if !t.process.ShouldStart(pctx, req) {
		return pctx, nil
	}
	pctx, span = t.process.Start(pctx, req)
	t.metrics.processSpans.Add(1)
	return pctx, span
}

func (t *Tracer) endProcess(span trace.Span, err error) {
	defer t.absorb("process_end")
	if span == nil {
		return
	}
	t.process.End(span, err)
}
