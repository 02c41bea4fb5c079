package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/oksasatya/go-ddd-event-hub/internal/application/capability"
	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
)

// LRU is a per-process identity cache with a fixed size and entry TTL.
type LRU struct {
	next     Resolver
	entries  *expirable.LRU[string, capability.Identity]
	recorder metrics.Recorder

	// gen counts invalidations. A lookup that raced one is not stored.
	mu  sync.Mutex
	gen uint64
}

func NewLRU(next Resolver, size int, ttl time.Duration, recorder metrics.Recorder) *LRU {
	if size <= 0 {
		size = 1024
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &LRU{
		next:     next,
		entries:  expirable.NewLRU[string, capability.Identity](size, nil, ttl),
		recorder: recorder,
	}
}

func (c *LRU) ResolveIdentity(ctx context.Context, id string) (capability.Identity, bool, error) {
	if ident, ok := c.entries.Get(id); ok {
		c.recorder.RecordCacheLookup(true)
		return ident, true, nil
	}
	c.recorder.RecordCacheLookup(false)

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	ident, found, err := c.next.ResolveIdentity(ctx, id)
	if err != nil || !found {
		return ident, found, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.entries.Add(id, ident)
	}
	c.mu.Unlock()
	return ident, true, nil
}

func (c *LRU) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	c.gen++
	c.entries.Remove(id)
	c.mu.Unlock()
}

// Len reports the number of live entries.
func (c *LRU) Len() int {
	return c.entries.Len()
}
