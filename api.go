package xtrace

import (
	"context"
	"time"
)

// Handler processes a single received message.
type Handler func(ctx context.Context, msg *Message) error

// API represents the complete xtrace surface the host integration layer
// programs against.
type API interface {
	// Consumer lifecycle hooks.
	RegisterConsumer(consumer any, brokerURL string)
	DeregisterConsumer(consumer any)

	// Receive-path correlation, one entry per in-flight invocation.
	EnterReceive(consumer any) *ReceiveCall
	FinishInternalReceive(ctx context.Context, call *ReceiveCall, msg *Message, err error)
	FinishSyncReceive(ctx context.Context, call *ReceiveCall, msg *Message, err error)
	FinishBatchReceive(ctx context.Context, call *ReceiveCall, msgs []*Message, err error)
	WatchAsyncReceive(ctx context.Context, call *ReceiveCall, future Future)

	// The single public receive entry point for call-site wrappers.
	StartAndEndConsumerReceive(parent context.Context, msg *Message, start time.Time, consumer any) context.Context
	AttachedContext(msg *Message) (context.Context, bool)

	// Decorators for the producer and listener seams.
	WrapSend(ctx context.Context, msg *Message, brokerURL string, send func(context.Context) error) error
	WrapProcess(ctx context.Context, msg *Message, handler Handler) error

	GetMetrics() Metrics
}
