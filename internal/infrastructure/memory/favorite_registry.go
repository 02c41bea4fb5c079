package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/repository"
)

// FavoriteRegistry keeps favorites by id plus a unique (account, event) index.
type FavoriteRegistry struct {
	mu     sync.RWMutex
	byID   map[string]entity.Favorite
	byPair map[entity.PairKey]string // pair -> favorite id
}

func NewFavoriteRegistry() *FavoriteRegistry {
	return &FavoriteRegistry{
		byID:   make(map[string]entity.Favorite),
		byPair: make(map[entity.PairKey]string),
	}
}

func (r *FavoriteRegistry) Create(_ context.Context, f entity.Favorite) (entity.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byPair[f.Pair()]; ok {
		return entity.Favorite{}, apperr.Conflictf("event %s already favorited by %s", f.EventID, f.AccountID)
	}
	if _, ok := r.byID[f.ID]; ok {
		return entity.Favorite{}, apperr.Conflictf("favorite %s already exists", f.ID)
	}
	r.byID[f.ID] = f
	r.byPair[f.Pair()] = f.ID
	return f, nil
}

func (r *FavoriteRegistry) FindByID(_ context.Context, id string) (entity.Favorite, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byID[id]
	return f, ok, nil
}

func (r *FavoriteRegistry) FindByPair(_ context.Context, accountID, eventID string) (entity.Favorite, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[entity.PairKey{AccountID: accountID, EventID: eventID}]
	if !ok {
		return entity.Favorite{}, false, nil
	}
	return r.byID[id], true, nil
}

func (r *FavoriteRegistry) FindByAccount(_ context.Context, accountID string) ([]entity.Favorite, error) {
	r.mu.RLock()
	out := make([]entity.Favorite, 0)
	for _, f := range r.byID {
		if f.AccountID == accountID {
			out = append(out, f)
		}
	}
	r.mu.RUnlock()
	sortFavorites(out)
	return out, nil
}

func (r *FavoriteRegistry) FindAll(_ context.Context) ([]entity.Favorite, error) {
	r.mu.RLock()
	out := make([]entity.Favorite, 0, len(r.byID))
	for _, f := range r.byID {
		out = append(out, f)
	}
	r.mu.RUnlock()
	sortFavorites(out)
	return out, nil
}

// Update replaces the favorite stored under id. Both the primary key and the
// (account, event) pair may change; each new key must be free or nothing is
// modified.
func (r *FavoriteRegistry) Update(_ context.Context, f entity.Favorite, id string) (entity.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return entity.Favorite{}, apperr.NotFoundf("favorite %s", id)
	}
	if f.ID != id {
		if _, taken := r.byID[f.ID]; taken {
			return entity.Favorite{}, apperr.Conflictf("favorite %s already exists", f.ID)
		}
	}
	if owner, taken := r.byPair[f.Pair()]; taken && owner != id {
		return entity.Favorite{}, apperr.Conflictf("event %s already favorited by %s", f.EventID, f.AccountID)
	}

	delete(r.byID, id)
	delete(r.byPair, cur.Pair())
	r.byID[f.ID] = f
	r.byPair[f.Pair()] = f.ID
	return f, nil
}

func (r *FavoriteRegistry) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	delete(r.byID, id)
	delete(r.byPair, f.Pair())
	return true, nil
}

func (r *FavoriteRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]entity.Favorite)
	r.byPair = make(map[entity.PairKey]string)
}

func sortFavorites(items []entity.Favorite) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].AccountID != items[j].AccountID {
			return items[i].AccountID < items[j].AccountID
		}
		if items[i].EventID != items[j].EventID {
			return items[i].EventID < items[j].EventID
		}
		return items[i].ID < items[j].ID
	})
}

var _ repository.FavoriteRepository = (*FavoriteRegistry)(nil)
