// Package cache memoizes identity lookups in front of the account
// coordinator. Only found identities are cached; absence always goes to the
// source. Account writes call Invalidate so role changes apply immediately.
package cache

import (
	"context"

	"github.com/oksasatya/go-ddd-event-hub/internal/application/capability"
)

// Resolver is the lookup being cached.
type Resolver interface {
	ResolveIdentity(ctx context.Context, id string) (capability.Identity, bool, error)
}

// IdentityCache is a caching Resolver that can drop single entries.
type IdentityCache interface {
	Resolver
	Invalidate(ctx context.Context, id string)
}

// Passthrough caches nothing.
type Passthrough struct {
	Next Resolver
}

func (p Passthrough) ResolveIdentity(ctx context.Context, id string) (capability.Identity, bool, error) {
	return p.Next.ResolveIdentity(ctx, id)
}

func (Passthrough) Invalidate(context.Context, string) {}
