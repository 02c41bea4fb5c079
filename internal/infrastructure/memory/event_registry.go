package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/repository"
)

type EventRegistry struct {
	mu   sync.RWMutex
	byID map[string]entity.Event
}

func NewEventRegistry() *EventRegistry {
	return &EventRegistry{byID: make(map[string]entity.Event)}
}

func (r *EventRegistry) Create(_ context.Context, e entity.Event) (entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[e.ID]; ok {
		return entity.Event{}, apperr.Conflictf("event %s already exists", e.ID)
	}
	r.byID[e.ID] = e
	return e, nil
}

func (r *EventRegistry) FindByID(_ context.Context, id string) (entity.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok, nil
}

// FindAll returns a snapshot ordered by start time.
func (r *EventRegistry) FindAll(_ context.Context) ([]entity.Event, error) {
	r.mu.RLock()
	out := make([]entity.Event, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out, nil
}

// Update replaces the event stored under id. If e.ID differs from id the
// record moves to the new key, provided that key is free.
func (r *EventRegistry) Update(_ context.Context, e entity.Event, id string) (entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return entity.Event{}, apperr.NotFoundf("event %s", id)
	}
	if e.ID != id {
		if _, taken := r.byID[e.ID]; taken {
			return entity.Event{}, apperr.Conflictf("event %s already exists", e.ID)
		}
		delete(r.byID, id)
	}
	r.byID[e.ID] = e
	return e, nil
}

func (r *EventRegistry) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *EventRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]entity.Event)
}

var _ repository.EventRepository = (*EventRegistry)(nil)
