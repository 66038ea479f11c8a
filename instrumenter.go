package xtrace

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Instrumenter decides whether to start a span for one operation kind, builds
// it with the right parent, timing and attributes, and ends it. The tracer
// facade owns three instances: send, receive and process.
type Instrumenter struct {
	tracer       trace.Tracer
	op           Operation
	system       string
	captured     []string
	network      bool
	experimental bool
}

func newInstrumenter(tracer trace.Tracer, op Operation, cfg Config) *Instrumenter {
	return &Instrumenter{
		tracer:   tracer,
		op:       op,
		system:   cfg.System,
		captured: cfg.CapturedHeaders,
		// Process spans describe in-process handling, not the network hop.
		network:      op != OpProcess,
		experimental: op == OpSend && cfg.ExperimentalProducerAttributes,
	}
}

// Operation returns the operation kind this instrumenter serves.
func (in *Instrumenter) Operation() Operation { return in.op }

// ShouldStart is the suppression gate consulted before any span is created.
// False means no span and no attribute computation.
func (in *Instrumenter) ShouldStart(ctx context.Context, req Request) bool {
	if req.Message() == nil {
		return false
	}
	return !suppressed(ctx, in.op)
}

// Start creates a span parented under ctx, named "<destination> <operation>".
// Attributes are only computed for recording spans, so a sampler that drops
// the span also drops the attribute extraction work.
func (in *Instrumenter) Start(ctx context.Context, req Request, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append(opts, trace.WithSpanKind(in.op.SpanKind()))
	sctx, span := in.tracer.Start(ctx, in.spanName(req), opts...)
	if span.IsRecording() {
		span.SetAttributes(in.attributes(req)...)
	}
	return suppress(sctx, in.op), span
}

// End closes the span. A non-nil err marks the span errored with the error
// recorded; otherwise the status is left for the backend to judge.
func (in *Instrumenter) End(span trace.Span, err error, opts ...trace.SpanEndOption) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End(opts...)
}

// StartAndEnd atomically records a span covering the explicit [start, end]
// instants. Receive spans are recorded retroactively (the wrapped call already
// completed) and must reflect the real blocking duration, not the wrapper's
// own near-zero observation. The returned context carries the finished span.
func (in *Instrumenter) StartAndEnd(ctx context.Context, req Request, err error, start, end time.Time) context.Context {
	sctx, span := in.Start(ctx, req, trace.WithTimestamp(start))
	in.End(span, err, trace.WithTimestamp(end))
	return sctx
}

func (in *Instrumenter) spanName(req Request) string {
	if dest := req.Destination(); dest != "" {
		return dest + " " + string(in.op)
	}
	return string(in.op)
}

func (in *Instrumenter) attributes(req Request) []attribute.KeyValue {
	kv := messagingAttributes(req, in.op, in.system, in.captured)
	if in.network {
		kv = append(kv, networkAttributes(req)...)
	}
	if in.experimental {
		kv = append(kv, experimentalProducerAttributes(req)...)
	}
	return kv
}

// suppressKey marks a context as already inside a span of the given operation
// kind, preventing nested same-kind instrumentation.
type suppressKey Operation

func suppressed(ctx context.Context, op Operation) bool {
	v, _ := ctx.Value(suppressKey(op)).(bool)
	return v
}

func suppress(ctx context.Context, op Operation) context.Context {
	return context.WithValue(ctx, suppressKey(op), true)
}
