package xtrace

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
)

// messageCarrier adapts a Message's property bag to the text-map carrier
// contract used by propagators.
type messageCarrier struct {
	msg *Message
}

var _ propagation.TextMapCarrier = messageCarrier{}

func (c messageCarrier) Get(key string) string {
	return c.msg.Property(key)
}

func (c messageCarrier) Set(key, value string) {
	c.msg.SetProperty(key, value)
}

func (c messageCarrier) Keys() []string {
	if c.msg == nil || len(c.msg.Properties) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.msg.Properties))
	for k := range c.msg.Properties {
		keys = append(keys, k)
	}
	return keys
}

// Bridge moves trace context between message headers and Go contexts using a
// text-map propagation protocol (W3C trace-context plus baggage by default).
type Bridge struct {
	propagator propagation.TextMapPropagator
}

// NewBridge wraps a propagator. A nil propagator selects the standard
// TraceContext+Baggage composite.
func NewBridge(p propagation.TextMapPropagator) Bridge {
	if p == nil {
		p = propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		)
	}
	return Bridge{propagator: p}
}

// Extract reads propagation headers from the request's message and returns a
// context derived from parent. When no valid trace headers are present the
// parent is returned unchanged; extraction never fails.
func (b Bridge) Extract(parent context.Context, req Request) context.Context {
	if req.Message() == nil {
		return parent
	}
	return b.propagator.Extract(parent, messageCarrier{msg: req.Message()})
}

// Inject writes the trace context carried by ctx into the outgoing message's
// properties. The message header map is the only thing mutated.
func (b Bridge) Inject(ctx context.Context, req Request) {
	if req.Message() == nil {
		return
	}
	b.propagator.Inject(ctx, messageCarrier{msg: req.Message()})
}
