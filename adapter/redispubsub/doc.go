// Package redispubsub is a minimal Redis-list-backed queue client
// instrumented with xtrace. It is the concrete host-integration seam: every
// send and receive call goes through the tracer's wrappers, demonstrating
// how a real client library is wired.
//
// Topics map to Redis lists under "xtrace:queue:<topic>"; Send is RPUSH,
// receives are BLPOP. A BLPOP timeout is surfaced as a successful receive
// with no message, which the tracer treats as nothing to trace.
//
// Example:
//
//	client, err := redispubsub.New(redispubsub.Defaults(),
//	    redispubsub.WithTracer(tracer))
//	consumer := client.NewConsumer("orders")
//	msg, err := consumer.ReceiveTimeout(ctx, 5*time.Second)
package redispubsub
