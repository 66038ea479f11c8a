// Package xtrace is a messaging-operation tracing core for pub/sub clients.
//
// It decides when a trace span starts around a messaging call, what context
// the span inherits, which attributes it records, and how that context threads
// through the synchronous, blocking and asynchronous receive paths of a
// client. The package never talks to a broker itself: host integration code
// (an adapter wrapping a real client) invokes the hooks on Tracer around the
// client's own send/receive calls.
//
// Three operation kinds are instrumented:
//
//   - send:    producer publish, span injected into the outgoing message
//   - receive: consumer receive, span recorded retroactively over the actual
//     blocking duration of the wrapped call
//   - process: in-process message handling (listener callbacks), parented on
//     the receive span when the low-level receive path attached one
//
// Construction follows the builder pattern:
//
//	tracer, err := xtrace.NewTracerBuilder().
//	    WithTracerProvider(provider).
//	    WithConfig(xtrace.Config{System: "redis"}).
//	    Build()
//
// Every exported hook absorbs its own failures: a fault inside xtrace is
// logged and swallowed, never surfaced to the messaging call being observed.
package xtrace
