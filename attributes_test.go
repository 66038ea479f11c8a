package xtrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func attrMap(kvs []attribute.KeyValue) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value.Emit()
	}
	return m
}

func TestOperation_SpanKind(t *testing.T) {
	assert.Equal(t, trace.SpanKindProducer, OpSend.SpanKind())
	assert.Equal(t, trace.SpanKindConsumer, OpReceive.SpanKind())
	assert.Equal(t, trace.SpanKindConsumer, OpProcess.SpanKind())
}

func TestMessagingAttributes(t *testing.T) {
	msg := &Message{
		ID:              "m-42",
		Topic:           "orders",
		RedeliveryCount: 3,
		Properties: map[string]string{
			"tenant": "acme",
			"secret": "hunter2",
		},
	}
	req := NewRequest(msg, "redis://b:6379")

	got := attrMap(messagingAttributes(req, OpReceive, "redis", []string{"tenant"}))

	assert.Equal(t, "redis", got["messaging.system"])
	assert.Equal(t, "receive", got["messaging.operation"])
	assert.Equal(t, "orders", got["messaging.destination.name"])
	assert.Equal(t, "m-42", got["messaging.message.id"])
	assert.Equal(t, "3", got["messaging.message.redelivery_count"])
	assert.Equal(t, "acme", got["messaging.header.tenant"])
	// Only allow-listed headers appear.
	assert.NotContains(t, got, "messaging.header.secret")
}

func TestMessagingAttributes_AbsentFieldsEmitNothing(t *testing.T) {
	req := NewRequest(&Message{Topic: "orders"}, "")

	got := attrMap(messagingAttributes(req, OpProcess, "messaging", []string{"tenant"}))

	assert.NotContains(t, got, "messaging.message.id")
	assert.NotContains(t, got, "messaging.message.redelivery_count")
	assert.NotContains(t, got, "messaging.header.tenant")
}

func TestNetworkAttributes(t *testing.T) {
	tests := []struct {
		name      string
		brokerURL string
		addr      string
		port      string
	}{
		{"scheme host port", "redis://broker:6379", "broker", "6379"},
		{"host port", "broker:6379", "broker", "6379"},
		{"bare host", "broker", "broker", ""},
		{"path stripped", "redis://broker:6379/0", "broker", "6379"},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attrMap(networkAttributes(NewRequest(testMessage("t"), tt.brokerURL)))
			if tt.addr == "" {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.addr, got["server.address"])
			if tt.port == "" {
				assert.NotContains(t, got, "server.port")
			} else {
				assert.Equal(t, tt.port, got["server.port"])
			}
		})
	}
}

func TestExperimentalProducerAttributes(t *testing.T) {
	msg := &Message{Topic: "orders", Payload: []byte("12345"), OrderingKey: "k1"}

	got := attrMap(experimentalProducerAttributes(NewRequest(msg, "")))
	assert.Equal(t, "5", got["messaging.message.payload_size_bytes"])
	assert.Equal(t, "k1", got["messaging.message.ordering_key"])

	assert.Empty(t, experimentalProducerAttributes(NewRequest(&Message{Topic: "t"}, "")))
}

func TestInstrumenterAttributes_Gating(t *testing.T) {
	cfg := Defaults()
	cfg.ExperimentalProducerAttributes = true

	msg := &Message{ID: "m", Topic: "orders", Payload: []byte("x")}
	req := NewRequest(msg, "redis://b:6379")

	send := attrMap(newInstrumenter(nil, OpSend, cfg).attributes(req))
	assert.Contains(t, send, "server.address")
	assert.Contains(t, send, "messaging.message.payload_size_bytes")

	receive := attrMap(newInstrumenter(nil, OpReceive, cfg).attributes(req))
	assert.Contains(t, receive, "server.address")
	assert.NotContains(t, receive, "messaging.message.payload_size_bytes")

	// Process spans describe in-process work: no network, no producer extras.
	process := attrMap(newInstrumenter(nil, OpProcess, cfg).attributes(req))
	assert.NotContains(t, process, "server.address")
	assert.NotContains(t, process, "messaging.message.payload_size_bytes")
}
