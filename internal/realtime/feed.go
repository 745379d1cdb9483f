package realtime

import (
	"context"
	"sync"
)

// Feed is a change-notification channel decoupled from any transport.
// Subscribe returns a signal channel for a key plus an unsubscribe func;
// handlers must tolerate signals arriving after the subscriber's view is
// gone (ignore-if-stale), so the channel carries no payload - subscribers
// reload from the durable source.
type Feed interface {
	Publish(ctx context.Context, key string)
	Subscribe(key string) (<-chan struct{}, func())
}

// CartKey names the change surface for a cart
func CartKey(cartID string) string { return "cart:" + cartID }

// ProductKey names the change surface for a product
func ProductKey(productID string) string { return "product:" + productID }

// MemoryFeed is an in-process Feed used in tests and single-node deployments
type MemoryFeed struct {
	mu   sync.Mutex
	subs map[string]map[int]chan struct{}
	next int
}

// NewMemoryFeed creates an in-process feed
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[string]map[int]chan struct{})}
}

func (f *MemoryFeed) Publish(_ context.Context, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[key] {
		// Non-blocking: a slow subscriber just coalesces signals
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (f *MemoryFeed) Subscribe(key string) (<-chan struct{}, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subs[key] == nil {
		f.subs[key] = make(map[int]chan struct{})
	}
	id := f.next
	f.next++
	ch := make(chan struct{}, 1)
	f.subs[key][id] = ch

	unsubscribe := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if subs, ok := f.subs[key]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(f.subs, key)
			}
		}
	}

	return ch, unsubscribe
}
