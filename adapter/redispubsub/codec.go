package redispubsub

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xtrace"
)

// envelope is the wire form of a message on the Redis list. Properties carry
// the propagation headers, so the trace context survives the hop.
type envelope struct {
	ID          string            `json:"id,omitempty"`
	Topic       string            `json:"topic"`
	Payload     []byte            `json:"payload,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
	OrderingKey string            `json:"ordering_key,omitempty"`
	PublishedAt int64             `json:"published_at,omitempty"` // unix nanos
}

func encodeMessage(m *xtrace.Message) ([]byte, error) {
	env := envelope{
		ID:          m.ID,
		Topic:       m.Topic,
		Payload:     m.Payload,
		Properties:  m.Properties,
		OrderingKey: m.OrderingKey,
	}
	if !m.PublishedAt.IsZero() {
		env.PublishedAt = m.PublishedAt.UnixNano()
	}
	return json.Marshal(env)
}

func decodeMessage(data []byte) (*xtrace.Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("redispubsub: decode message: %w", err)
	}
	msg := &xtrace.Message{
		ID:          env.ID,
		Topic:       env.Topic,
		Payload:     env.Payload,
		Properties:  env.Properties,
		OrderingKey: env.OrderingKey,
	}
	if env.PublishedAt > 0 {
		msg.PublishedAt = time.Unix(0, env.PublishedAt)
	}
	return msg, nil
}

var idSeq atomic.Uint64

func nextID() string {
	return fmt.Sprintf("rq-%d", idSeq.Add(1))
}
