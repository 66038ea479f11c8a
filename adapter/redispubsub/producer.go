package redispubsub

import (
	"context"
	"errors"
	"time"

	"github.com/trickstertwo/xtrace"
)

// Producer sends messages to one topic.
type Producer struct {
	c     *Client
	topic string
}

// Producer returns a producer bound to a topic.
func (c *Client) Producer(topic string) *Producer {
	return &Producer{c: c, topic: topic}
}

// Send publishes a message via RPUSH. The send span wraps the network call
// and the trace context is injected into the envelope's properties before
// encoding, so the consumer side can extract it.
func (p *Producer) Send(ctx context.Context, msg *xtrace.Message) error {
	if p.c.closed.Load() {
		return errors.New("redispubsub: client is closed")
	}
	if msg == nil {
		return errors.New("redispubsub: nil message")
	}
	msg.Topic = p.topic

	return p.c.tracer.WrapSend(ctx, msg, p.c.url, func(ctx context.Context) error {
		if msg.ID == "" {
			msg.ID = nextID()
		}
		msg.PublishedAt = time.Now()
		data, err := encodeMessage(msg)
		if err != nil {
			return err
		}
		return p.c.rdb.RPush(ctx, queueKey(p.topic), data).Err()
	})
}
