package xtrace

import (
	"net"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Operation enumerates the traced messaging operation kinds.
type Operation string

const (
	OpSend    Operation = "send"
	OpReceive Operation = "receive"
	OpProcess Operation = "process"
)

// SpanKind maps the operation to its trace span kind.
func (op Operation) SpanKind() trace.SpanKind {
	switch op {
	case OpSend:
		return trace.SpanKindProducer
	default:
		return trace.SpanKindConsumer
	}
}

// Attribute keys follow the messaging.* semantic-convention scheme.
const (
	attrSystemKey        = "messaging.system"
	attrOperationKey     = "messaging.operation"
	attrDestinationKey   = "messaging.destination.name"
	attrMessageIDKey     = "messaging.message.id"
	attrPayloadSizeKey   = "messaging.message.payload_size_bytes"
	attrOrderingKeyKey   = "messaging.message.ordering_key"
	attrRedeliveryKey    = "messaging.message.redelivery_count"
	attrServerAddressKey = "server.address"
	attrServerPortKey    = "server.port"

	// capturedHeaderPrefix namespaces headers captured via the allow-list.
	capturedHeaderPrefix = "messaging.header."
)

// messagingAttributes derives the operation attributes from a request.
// Pure: the request is never mutated; absent fields emit nothing.
func messagingAttributes(req Request, op Operation, system string, capturedHeaders []string) []attribute.KeyValue {
	msg := req.Message()
	kv := make([]attribute.KeyValue, 0, 6+len(capturedHeaders))
	kv = append(kv,
		attribute.String(attrSystemKey, system),
		attribute.String(attrOperationKey, string(op)),
	)
	if dest := req.Destination(); dest != "" {
		kv = append(kv, attribute.String(attrDestinationKey, dest))
	}
	if msg == nil {
		return kv
	}
	if msg.ID != "" {
		kv = append(kv, attribute.String(attrMessageIDKey, msg.ID))
	}
	if msg.RedeliveryCount > 0 {
		kv = append(kv, attribute.Int(attrRedeliveryKey, int(msg.RedeliveryCount)))
	}
	for _, name := range capturedHeaders {
		if v := msg.Property(name); v != "" {
			kv = append(kv, attribute.String(capturedHeaderPrefix+name, v))
		}
	}
	return kv
}

// networkAttributes derives the broker endpoint attributes. Attached to send
// and receive spans only; process spans have no network hop.
func networkAttributes(req Request) []attribute.KeyValue {
	addr := req.BrokerURL()
	if addr == "" {
		return nil
	}
	host, port := splitEndpoint(addr)
	if host == "" {
		return nil
	}
	kv := []attribute.KeyValue{attribute.String(attrServerAddressKey, host)}
	if port != "" {
		kv = append(kv, attribute.String(attrServerPortKey, port))
	}
	return kv
}

// experimentalProducerAttributes adds payload size and ordering key to send
// spans; gated by Config.ExperimentalProducerAttributes.
func experimentalProducerAttributes(req Request) []attribute.KeyValue {
	msg := req.Message()
	if msg == nil {
		return nil
	}
	var kv []attribute.KeyValue
	if len(msg.Payload) > 0 {
		kv = append(kv, attribute.Int(attrPayloadSizeKey, len(msg.Payload)))
	}
	if msg.OrderingKey != "" {
		kv = append(kv, attribute.String(attrOrderingKeyKey, msg.OrderingKey))
	}
	return kv
}

// splitEndpoint tolerates "scheme://host:port", "host:port" and bare hosts.
func splitEndpoint(url string) (host, port string) {
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
	}
	if i := strings.IndexAny(url, "/?"); i >= 0 {
		url = url[:i]
	}
	if url == "" {
		return "", ""
	}
	h, p, err := net.SplitHostPort(url)
	if err != nil {
		return url, ""
	}
	return h, p
}
