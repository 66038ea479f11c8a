package xtrace

import (
	"sync"
)

// EndpointRegistry associates a consumer handle with its resolved broker URL.
// The association is written once at consumer construction and read on every
// receive, so the backing sync.Map keeps lookups lock-free while new
// consumers register concurrently.
type EndpointRegistry struct {
	endpoints sync.Map // consumer handle -> broker URL string
}

// NewEndpointRegistry returns an empty registry.
func NewEndpointRegistry() *EndpointRegistry {
	return &EndpointRegistry{}
}

// Register records the broker URL for a consumer handle. The first write
// wins; a consumer's endpoint never changes for its lifetime.
func (r *EndpointRegistry) Register(consumer any, brokerURL string) {
	if consumer == nil || brokerURL == "" {
		return
	}
	r.endpoints.LoadOrStore(consumer, brokerURL)
}

// Lookup returns the broker URL recorded for a consumer handle.
func (r *EndpointRegistry) Lookup(consumer any) (string, bool) {
	if consumer == nil {
		return "", false
	}
	v, ok := r.endpoints.Load(consumer)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Deregister drops the association when a consumer closes, bounding the
// registry to live consumers.
func (r *EndpointRegistry) Deregister(consumer any) {
	if consumer == nil {
		return
	}
	r.endpoints.Delete(consumer)
}
