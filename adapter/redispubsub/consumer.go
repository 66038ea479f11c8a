package redispubsub

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trickstertwo/xtrace"
)

// Consumer receives messages from one topic. The three receive methods map
// onto the tracer's call shapes: ReceiveTimeout is the internal low-level
// path (context attached to the message, shared with Listen), Receive is the
// public blocking path, ReceiveAsync is the future path.
type Consumer struct {
	c     *Client
	topic string
}

// NewConsumer binds a consumer to a topic and records the client's resolved
// broker endpoint with the tracer.
func (c *Client) NewConsumer(topic string) *Consumer {
	cn := &Consumer{c: c, topic: topic}
	c.tracer.RegisterConsumer(cn, c.url)
	return cn
}

// Close deregisters the consumer from the tracer.
func (cn *Consumer) Close() error {
	cn.c.tracer.DeregisterConsumer(cn)
	return nil
}

// Receive blocks until a message arrives or ctx is done.
func (cn *Consumer) Receive(ctx context.Context) (*xtrace.Message, error) {
	call := cn.c.tracer.EnterReceive(cn)
	msg, err := cn.pop(ctx, 0)
	cn.c.tracer.FinishSyncReceive(ctx, call, msg, err)
	return msg, err
}

// ReceiveTimeout blocks up to timeout. A BLPOP timeout yields (nil, nil):
// a successful receive with nothing to trace.
func (cn *Consumer) ReceiveTimeout(ctx context.Context, timeout time.Duration) (*xtrace.Message, error) {
	return cn.internalReceive(ctx, timeout)
}

// ReceiveBatch pops up to n already-queued messages without blocking. Each
// message gets its own retroactive receive span sharing the call's entry
// timestamp.
func (cn *Consumer) ReceiveBatch(ctx context.Context, n int) ([]*xtrace.Message, error) {
	if n < 1 {
		return nil, nil
	}
	call := cn.c.tracer.EnterReceive(cn)

	vals, err := cn.c.rdb.LPopCount(ctx, queueKey(cn.topic), n).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cn.c.tracer.FinishBatchReceive(ctx, call, nil, nil)
			return nil, nil
		}
		cn.c.tracer.FinishBatchReceive(ctx, call, nil, err)
		return nil, err
	}

	msgs := make([]*xtrace.Message, 0, len(vals))
	for _, v := range vals {
		msg, derr := decodeMessage([]byte(v))
		if derr != nil {
			cn.c.logger.Warn().Err(derr).Msg("redispubsub: dropping undecodable message")
			continue
		}
		msgs = append(msgs, msg)
	}
	cn.c.tracer.FinishBatchReceive(ctx, call, msgs, nil)
	return msgs, nil
}

// ReceiveAsync returns a future resolved by a background blocking pop. The
// tracer's continuation is registered before the future is returned.
func (cn *Consumer) ReceiveAsync(ctx context.Context) *xtrace.ReceiveFuture {
	call := cn.c.tracer.EnterReceive(cn)
	f := xtrace.NewReceiveFuture()
	cn.c.tracer.WatchAsyncReceive(ctx, call, f)
	go func() {
		msg, err := cn.pop(ctx, 0)
		f.Complete(msg, err)
	}()
	return f
}

// Listen drives handler for every message until ctx is done. Delivery goes
// through the internal receive shape, so each process span parents on its
// message's receive span.
func (cn *Consumer) Listen(ctx context.Context, handler xtrace.Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := cn.internalReceive(ctx, cn.c.cfg.ListenBlock)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			cn.c.logger.Warn().Err(err).Msg("redispubsub: receive failed")
			continue
		}
		if msg == nil {
			continue
		}
		if herr := cn.c.tracer.WrapProcess(ctx, msg, handler); herr != nil {
			cn.c.logger.Warn().
				Str("topic", cn.topic).
				Str("message_id", msg.ID).
				Err(herr).
				Msg("redispubsub: handler failed")
		}
	}
}

func (cn *Consumer) internalReceive(ctx context.Context, timeout time.Duration) (*xtrace.Message, error) {
	call := cn.c.tracer.EnterReceive(cn)
	msg, err := cn.pop(ctx, timeout)
	cn.c.tracer.FinishInternalReceive(ctx, call, msg, err)
	return msg, err
}

// pop is the underlying blocking call the tracer observes. timeout <= 0
// blocks indefinitely (BLPOP 0).
func (cn *Consumer) pop(ctx context.Context, timeout time.Duration) (*xtrace.Message, error) {
	if timeout < 0 {
		timeout = 0
	}
	res, err := cn.c.rdb.BLPop(ctx, timeout, queueKey(cn.topic)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Block timeout: a successful receive with no message.
			return nil, nil
		}
		return nil, err
	}
	// BLPOP returns [key, value].
	if len(res) != 2 {
		return nil, nil
	}
	return decodeMessage([]byte(res[1]))
}
