package xtrace

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var (
	defaultTracer   *Tracer
	defaultTracerMu sync.Mutex
)

// Default returns the process-wide singleton Tracer, initializing it with
// defaults on first use.
func Default() *Tracer {
	defaultTracerMu.Lock()
	defer defaultTracerMu.Unlock()

	if defaultTracer != nil {
		return defaultTracer
	}
	t, err := NewTracerBuilder().Build()
	if err != nil {
		panic(fmt.Sprintf("xtrace: failed to initialize default tracer: %v", err))
	}
	defaultTracer = t
	return defaultTracer
}

// SetDefault replaces the process-wide default Tracer.
func SetDefault(t *Tracer) {
	if t == nil {
		panic("xtrace: SetDefault called with nil Tracer")
	}
	defaultTracerMu.Lock()
	defaultTracer = t
	defaultTracerMu.Unlock()
}

// RegisterConsumer is the Facade using the default tracer.
func RegisterConsumer(consumer any, brokerURL string) {
	Default().RegisterConsumer(consumer, brokerURL)
}

// DeregisterConsumer is the Facade using the default tracer.
func DeregisterConsumer(consumer any) {
	Default().DeregisterConsumer(consumer)
}

// StartAndEndConsumerReceive is the Facade using the default tracer.
func StartAndEndConsumerReceive(parent context.Context, msg *Message, start time.Time, consumer any) context.Context {
	return Default().StartAndEndConsumerReceive(parent, msg, start, consumer)
}

// WrapSend is the Facade using the default tracer.
func WrapSend(ctx context.Context, msg *Message, brokerURL string, send func(context.Context) error) error {
	return Default().WrapSend(ctx, msg, brokerURL, send)
}

// WrapProcess is the Facade using the default tracer.
func WrapProcess(ctx context.Context, msg *Message, handler Handler) error {
	return Default().WrapProcess(ctx, msg, handler)
}
