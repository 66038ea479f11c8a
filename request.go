package xtrace

// Request is the immutable descriptor of one traced messaging operation:
// the message involved and the resolved broker endpoint it traveled through.
// Built once per send/receive event, never mutated afterward.
type Request struct {
	msg       *Message
	brokerURL string
}

// NewRequest pairs a message with the broker endpoint that served it.
// An empty brokerURL is valid (in-process operations have no network hop).
func NewRequest(msg *Message, brokerURL string) Request {
	return Request{msg: msg, brokerURL: brokerURL}
}

// Message returns the envelope this request describes.
func (r Request) Message() *Message { return r.msg }

// BrokerURL returns the resolved broker endpoint, or "" when unknown.
func (r Request) BrokerURL() string { return r.brokerURL }

// Destination returns the span-naming destination (the message topic).
func (r Request) Destination() string {
	if r.msg == nil {
		return ""
	}
	return r.msg.Topic
}
