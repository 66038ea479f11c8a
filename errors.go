package xtrace

import "fmt"

// ErrUnknownConsumer reports a receive on a consumer that was never
// registered with the endpoint registry. Informational only: the tracer
// degrades to spans without network attributes rather than failing.
type ErrUnknownConsumer struct{ consumer any }

func (e ErrUnknownConsumer) Error() string {
	return fmt.Sprintf("unknown consumer: %T", e.consumer)
}
