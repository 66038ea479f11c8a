package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xtrace"
)

// Endpoint is the synthetic broker URL recorded for every memory consumer.
const Endpoint = "mem://local"

// Broker is an in-process queue fabric. One bounded channel per topic,
// one-of-N delivery across that topic's consumers.
type Broker struct {
	tracer     *xtrace.Tracer
	bufferSize int

	mu     sync.Mutex
	queues map[string]chan *xtrace.Message

	closed atomic.Bool
}

// Option configures the Broker.
type Option func(*Broker)

// WithTracer injects the xtrace tracer (default: xtrace.Default()).
func WithTracer(t *xtrace.Tracer) Option {
	return func(b *Broker) { b.tracer = t }
}

// WithBufferSize sets the per-topic queue capacity (default 1024).
func WithBufferSize(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

// New creates an in-process broker.
func New(opts ...Option) *Broker {
	b := &Broker{
		bufferSize: 1024,
		queues:     make(map[string]chan *xtrace.Message),
	}
	for _, o := range opts {
		if o != nil {
			o(b)
		}
	}
	if b.tracer == nil {
		b.tracer = xtrace.Default()
	}
	return b
}

// Close drops all queues. Consumers blocked on a receive observe ctx/timeout
// semantics, not a broker error.
func (b *Broker) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.mu.Lock()
	b.queues = make(map[string]chan *xtrace.Message)
	b.mu.Unlock()
	return nil
}

func (b *Broker) queue(topic string) chan *xtrace.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[topic]
	if !ok {
		q = make(chan *xtrace.Message, b.bufferSize)
		b.queues[topic] = q
	}
	return q
}

// Producer sends messages to one topic.
type Producer struct {
	b     *Broker
	topic string
}

// Producer returns a producer bound to a topic.
func (b *Broker) Producer(topic string) *Producer {
	return &Producer{b: b, topic: topic}
}

// Send publishes a message. The send span wraps the enqueue and the trace
// context is injected into the message properties before it travels.
func (p *Producer) Send(ctx context.Context, msg *xtrace.Message) error {
	if p.b.closed.Load() {
		return errors.New("memory broker is closed")
	}
	if msg == nil {
		return errors.New("memory: nil message")
	}
	msg.Topic = p.topic

	return p.b.tracer.WrapSend(ctx, msg, Endpoint, func(ctx context.Context) error {
		if msg.ID == "" {
			msg.ID = nextID()
		}
		msg.PublishedAt = time.Now()
		// Clone so the consumer side never shares the producer's maps,
		// mimicking broker serialization.
		select {
		case p.b.queue(p.topic) <- clone(msg):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func clone(m *xtrace.Message) *xtrace.Message {
	cp := *m
	if m.Properties != nil {
		cp.Properties = make(map[string]string, len(m.Properties))
		for k, v := range m.Properties {
			cp.Properties[k] = v
		}
	}
	if m.Payload != nil {
		cp.Payload = append([]byte(nil), m.Payload...)
	}
	return &cp
}

var idSeq atomic.Uint64

func nextID() string {
	return fmt.Sprintf("mem-%d", idSeq.Add(1))
}
