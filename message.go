package xtrace

import (
	"time"
)

// Message is the envelope view the tracer operates on. Adapters translate
// their client's native message into this shape once per send/receive event.
type Message struct {
	// ID is the broker-assigned message identifier (may be empty before send).
	ID string
	// Topic is the destination the message was sent to or received from.
	Topic string
	// Payload is the raw message body.
	Payload []byte
	// Properties is the header bag; trace propagation keys live here.
	Properties map[string]string
	// OrderingKey groups messages that must be delivered in order (optional).
	OrderingKey string
	// RedeliveryCount is how many times the broker redelivered this message.
	RedeliveryCount uint32
	// PublishedAt is the broker publish timestamp, when known.
	PublishedAt time.Time
}

// Property returns a header value, tolerating a nil Properties map.
func (m *Message) Property(key string) string {
	if m == nil || m.Properties == nil {
		return ""
	}
	return m.Properties[key]
}

// SetProperty writes a header value, allocating the map on first use.
// Only outgoing messages are ever mutated; received messages are read-only
// by convention.
func (m *Message) SetProperty(key, value string) {
	if m == nil {
		return
	}
	if m.Properties == nil {
		m.Properties = make(map[string]string, 4)
	}
	m.Properties[key] = value
}
