package xtrace

import (
	"context"
	"runtime"
	"sync"
	"weak"
)

// contextStore is the out-of-band association between a received message and
// the context its receive span produced. The low-level receive path attaches
// here so a later process span can parent on it; the process wrapper takes
// the entry. Keys are weak pointers, so the table never extends a message's
// lifetime: when a message is received through the low-level shape but
// dropped without being processed, its entry is removed by a GC cleanup.
type contextStore struct {
	contexts sync.Map // weak.Pointer[Message] -> context.Context
}

func newContextStore() *contextStore {
	return &contextStore{}
}

// attach binds a context to a message by identity.
func (s *contextStore) attach(msg *Message, ctx context.Context) {
	if msg == nil || ctx == nil {
		return
	}
	key := weak.Make(msg)
	if _, replaced := s.contexts.Swap(key, ctx); !replaced {
		runtime.AddCleanup(msg, func(k weak.Pointer[Message]) {
			s.contexts.Delete(k)
		}, key)
	}
}

// peek returns the attached context without consuming it.
func (s *contextStore) peek(msg *Message) (context.Context, bool) {
	if msg == nil {
		return nil, false
	}
	v, ok := s.contexts.Load(weak.Make(msg))
	if !ok {
		return nil, false
	}
	return v.(context.Context), true
}

// take returns the attached context and removes the entry.
func (s *contextStore) take(msg *Message) (context.Context, bool) {
	if msg == nil {
		return nil, false
	}
	v, ok := s.contexts.LoadAndDelete(weak.Make(msg))
	if !ok {
		return nil, false
	}
	return v.(context.Context), true
}
