package memory

import (
	"context"
	"errors"
	"time"

	"github.com/trickstertwo/xtrace"
)

// Consumer receives messages from one topic. Each receive method is one of
// the call shapes the tracer correlates:
//
//   - ReceiveTimeout: the internal low-level shape (attaches context to the
//     message; also drives Listen before the handler runs)
//   - Receive: the public blocking shape (leaf span)
//   - ReceiveAsync: the future shape (span recorded on the completing
//     goroutine)
type Consumer struct {
	b     *Broker
	topic string
	queue chan *xtrace.Message
}

// NewConsumer binds a consumer to a topic and records its broker endpoint
// with the tracer, mirroring the consumer-construction hook of a real client.
func (b *Broker) NewConsumer(topic string) *Consumer {
	c := &Consumer{
		b:     b,
		topic: topic,
		queue: b.queue(topic),
	}
	b.tracer.RegisterConsumer(c, Endpoint)
	return c
}

// Close deregisters the consumer.
func (c *Consumer) Close() error {
	c.b.tracer.DeregisterConsumer(c)
	return nil
}

// Receive blocks until a message arrives or ctx is done.
func (c *Consumer) Receive(ctx context.Context) (*xtrace.Message, error) {
	call := c.b.tracer.EnterReceive(c)
	msg, err := c.pop(ctx, 0)
	c.b.tracer.FinishSyncReceive(ctx, call, msg, err)
	return msg, err
}

// ReceiveTimeout blocks up to timeout. A timeout yields (nil, nil): a
// successful receive with nothing to trace.
func (c *Consumer) ReceiveTimeout(ctx context.Context, timeout time.Duration) (*xtrace.Message, error) {
	return c.internalReceive(ctx, timeout)
}

// ReceiveAsync returns a future resolved by a background pop. The tracer's
// continuation is registered before the future is returned, so it observes
// completion ahead of any caller-registered callback.
func (c *Consumer) ReceiveAsync(ctx context.Context) *xtrace.ReceiveFuture {
	call := c.b.tracer.EnterReceive(c)
	f := xtrace.NewReceiveFuture()
	c.b.tracer.WatchAsyncReceive(ctx, call, f)
	go func() {
		msg, err := c.pop(ctx, 0)
		f.Complete(msg, err)
	}()
	return f
}

// Listen drives handler for every message until ctx is done. Delivery goes
// through the internal receive shape, so each process span parents on its
// message's receive span.
func (c *Consumer) Listen(ctx context.Context, handler xtrace.Handler) error {
	for {
		msg, err := c.internalReceive(ctx, time.Second)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			continue
		}
		if msg == nil {
			continue
		}
		_ = c.b.tracer.WrapProcess(ctx, msg, handler)
	}
}

func (c *Consumer) internalReceive(ctx context.Context, timeout time.Duration) (*xtrace.Message, error) {
	call := c.b.tracer.EnterReceive(c)
	msg, err := c.pop(ctx, timeout)
	c.b.tracer.FinishInternalReceive(ctx, call, msg, err)
	return msg, err
}

// pop is the underlying blocking call the tracer observes. timeout <= 0
// blocks until delivery or ctx cancellation.
func (c *Consumer) pop(ctx context.Context, timeout time.Duration) (*xtrace.Message, error) {
	if timeout <= 0 {
		select {
		case msg := <-c.queue:
			return msg, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg := <-c.queue:
		return msg, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
