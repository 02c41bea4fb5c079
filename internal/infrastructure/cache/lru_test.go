package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oksasatya/go-ddd-event-hub/internal/application/capability"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
)

type countingResolver struct {
	roles map[string]entity.Role
	calls int
	err   error
}

func (r *countingResolver) ResolveIdentity(_ context.Context, id string) (capability.Identity, bool, error) {
	r.calls++
	if r.err != nil {
		return capability.Identity{}, false, r.err
	}
	role, ok := r.roles[id]
	if !ok {
		return capability.Identity{}, false, nil
	}
	return capability.Identity{SubjectID: id, Role: role}, true, nil
}

func TestLRUCachesFoundIdentities(t *testing.T) {
	src := &countingResolver{roles: map[string]entity.Role{"a": entity.RoleAdmin}}
	c := NewLRU(src, 8, time.Minute, metrics.NewCollector(prometheus.NewRegistry()))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id, found, err := c.ResolveIdentity(ctx, "a")
		if err != nil || !found || !id.IsAdmin() {
			t.Fatalf("resolve: %+v %v %v", id, found, err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("source called %d times, want 1", src.calls)
	}
}

func TestLRUDoesNotCacheAbsence(t *testing.T) {
	src := &countingResolver{roles: map[string]entity.Role{}}
	c := NewLRU(src, 8, time.Minute, nil)
	ctx := context.Background()

	c.ResolveIdentity(ctx, "later")
	src.roles["later"] = entity.RoleMember
	if _, found, _ := c.ResolveIdentity(ctx, "later"); !found {
		t.Fatal("absence was cached")
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d", c.Len())
	}
}

func TestLRUInvalidate(t *testing.T) {
	src := &countingResolver{roles: map[string]entity.Role{"m": entity.RoleMember}}
	c := NewLRU(src, 8, time.Minute, nil)
	ctx := context.Background()

	c.ResolveIdentity(ctx, "m")
	src.roles["m"] = entity.RoleAdmin
	c.Invalidate(ctx, "m")

	id, _, _ := c.ResolveIdentity(ctx, "m")
	if !id.IsAdmin() {
		t.Fatalf("stale role after invalidate: %+v", id)
	}
}

// gatedResolver reads the role, then holds the answer until released.
type gatedResolver struct {
	mu      sync.Mutex
	roles   map[string]entity.Role
	gate    chan struct{}
	entered chan struct{}
}

func newGatedResolver(roles map[string]entity.Role) *gatedResolver {
	return &gatedResolver{roles: roles, gate: make(chan struct{}), entered: make(chan struct{}, 1)}
}

func (r *gatedResolver) setRole(id string, role entity.Role) {
	r.mu.Lock()
	r.roles[id] = role
	r.mu.Unlock()
}

func (r *gatedResolver) ResolveIdentity(_ context.Context, id string) (capability.Identity, bool, error) {
	r.mu.Lock()
	role, ok := r.roles[id]
	gate := r.gate
	r.mu.Unlock()

	if gate != nil {
		r.entered <- struct{}{}
		<-gate
	}
	if !ok {
		return capability.Identity{}, false, nil
	}
	return capability.Identity{SubjectID: id, Role: role}, true, nil
}

// release lets the held lookup finish and stops gating later ones.
func (r *gatedResolver) release() {
	r.mu.Lock()
	close(r.gate)
	r.gate = nil
	r.mu.Unlock()
}

// resolveAcrossInvalidate runs a lookup that reads the old role, changes the
// role and invalidates while that lookup is still in flight, and returns
// what the next lookup sees.
func resolveAcrossInvalidate(t *testing.T, c IdentityCache, src *gatedResolver) capability.Identity {
	t.Helper()
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.ResolveIdentity(ctx, "m")
	}()
	<-src.entered

	src.setRole("m", entity.RoleAdmin)
	c.Invalidate(ctx, "m")
	src.release()
	<-done

	ident, found, err := c.ResolveIdentity(ctx, "m")
	if err != nil || !found {
		t.Fatalf("resolve: %v %v", found, err)
	}
	return ident
}

func TestLRUInvalidateDuringLookup(t *testing.T) {
	src := newGatedResolver(map[string]entity.Role{"m": entity.RoleMember})
	c := NewLRU(src, 8, time.Minute, nil)

	if ident := resolveAcrossInvalidate(t, c, src); !ident.IsAdmin() {
		t.Fatalf("stale role cached by in-flight lookup: %+v", ident)
	}
}

func TestLRUPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	c := NewLRU(&countingResolver{err: boom}, 8, time.Minute, nil)
	if _, _, err := c.ResolveIdentity(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestPassthrough(t *testing.T) {
	src := &countingResolver{roles: map[string]entity.Role{"a": entity.RoleMember}}
	p := Passthrough{Next: src}
	p.ResolveIdentity(context.Background(), "a")
	p.ResolveIdentity(context.Background(), "a")
	p.Invalidate(context.Background(), "a")
	if src.calls != 2 {
		t.Fatalf("calls = %d", src.calls)
	}
}
