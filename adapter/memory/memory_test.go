package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/trickstertwo/xtrace"
)

func newTestBroker(t *testing.T) (*Broker, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	tracer, err := xtrace.NewTracerBuilder().WithTracerProvider(tp).Build()
	require.NoError(t, err)

	b := New(WithTracer(tracer), WithBufferSize(64))
	t.Cleanup(func() { _ = b.Close() })
	return b, sr
}

func TestSyncReceive_LeafSpan(t *testing.T) {
	b, sr := newTestBroker(t)
	c := b.NewConsumer("orders")
	defer c.Close()

	require.NoError(t, b.Producer("orders").Send(context.Background(), &xtrace.Message{Payload: []byte("x")}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := c.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.NotEmpty(t, msg.ID)
	assert.NotEmpty(t, msg.Property("traceparent"), "trace context travels in the message")

	spans := sr.Ended()
	require.Len(t, spans, 2)

	// Public blocking receive is a leaf: nothing is attached for processing.
	_, attached := b.tracer.AttachedContext(msg)
	assert.False(t, attached)
}

func TestReceiveTimeout_EmptyQueue(t *testing.T) {
	b, sr := newTestBroker(t)
	c := b.NewConsumer("orders")
	defer c.Close()

	msg, err := c.ReceiveTimeout(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, msg, "timeout is a successful receive with no message")
	assert.Empty(t, sr.Ended())
}

func TestReceiveTimeout_AttachesContext(t *testing.T) {
	b, sr := newTestBroker(t)
	c := b.NewConsumer("orders")
	defer c.Close()

	require.NoError(t, b.Producer("orders").Send(context.Background(), &xtrace.Message{Payload: []byte("x")}))

	msg, err := c.ReceiveTimeout(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, msg)

	attached, ok := b.tracer.AttachedContext(msg)
	require.True(t, ok, "the low-level receive shape attaches its span context")
	assert.True(t, trace.SpanContextFromContext(attached).IsValid())
	require.Len(t, sr.Ended(), 2)
}

func TestReceiveAsync(t *testing.T) {
	b, sr := newTestBroker(t)
	c := b.NewConsumer("orders")
	defer c.Close()

	f := c.ReceiveAsync(context.Background())

	recorded := make(chan struct{})
	f.OnComplete(func(*xtrace.Message, error) { close(recorded) })

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, b.Producer("orders").Send(context.Background(), &xtrace.Message{Payload: []byte("x")}))

	select {
	case <-recorded:
	case <-time.After(2 * time.Second):
		t.Fatal("async receive never completed")
	}

	spans := sr.Ended()
	require.Len(t, spans, 2)
	for _, s := range spans {
		if s.SpanKind() != trace.SpanKindConsumer {
			continue
		}
		dur := s.EndTime().Sub(s.StartTime())
		assert.GreaterOrEqual(t, dur, 20*time.Millisecond,
			"receive span covers the wait, starting at call entry")
	}
}

func TestListen_EndToEndTrace(t *testing.T) {
	b, sr := newTestBroker(t)
	c := b.NewConsumer("orders")
	defer c.Close()

	handled := make(chan *xtrace.Message, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = c.Listen(ctx, func(ctx context.Context, msg *xtrace.Message) error {
			handled <- msg
			return nil
		})
	}()

	require.NoError(t, b.Producer("orders").Send(context.Background(), &xtrace.Message{Payload: []byte("x")}))

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatal("listener never ran")
	}
	cancel()

	require.Eventually(t, func() bool { return len(sr.Ended()) >= 3 }, 2*time.Second, 10*time.Millisecond)
	spans := sr.Ended()[:3]

	var send, receive, process sdktrace.ReadOnlySpan
	for _, s := range spans {
		switch s.Name() {
		case "orders send":
			send = s
		case "orders receive":
			receive = s
		case "orders process":
			process = s
		}
	}
	require.NotNil(t, send)
	require.NotNil(t, receive)
	require.NotNil(t, process)

	traceID := send.SpanContext().TraceID()
	assert.Equal(t, traceID, receive.SpanContext().TraceID())
	assert.Equal(t, traceID, process.SpanContext().TraceID())
	assert.Equal(t, send.SpanContext().SpanID(), receive.Parent().SpanID())
	assert.Equal(t, receive.SpanContext().SpanID(), process.Parent().SpanID())
}

func TestProducerAndConsumerDoNotShareMessage(t *testing.T) {
	b, _ := newTestBroker(t)
	c := b.NewConsumer("orders")
	defer c.Close()

	out := &xtrace.Message{Payload: []byte("orig"), Properties: map[string]string{"k": "v"}}
	require.NoError(t, b.Producer("orders").Send(context.Background(), out))

	out.Payload[0] = 'X'
	out.Properties["k"] = "mutated"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	in, err := c.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, in)
	assert.Equal(t, "orig", string(in.Payload))
	assert.Equal(t, "v", in.Property("k"))
}

func TestSendAfterClose(t *testing.T) {
	b, _ := newTestBroker(t)
	p := b.Producer("orders")
	require.NoError(t, b.Close())

	err := p.Send(context.Background(), &xtrace.Message{})
	assert.Error(t, err)
}
