// Package memory holds the in-memory reference stores. Each store guards all
// of its indexes with a single mutex so no reader ever observes a half-applied
// write. Any durable backend must behave the same way.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/repository"
)

// AccountDirectory indexes accounts by id and by email.
type AccountDirectory struct {
	mu      sync.RWMutex
	byID    map[string]entity.Account
	byEmail map[string]string // email -> id
}

func NewAccountDirectory() *AccountDirectory {
	return &AccountDirectory{
		byID:    make(map[string]entity.Account),
		byEmail: make(map[string]string),
	}
}

func (d *AccountDirectory) Create(_ context.Context, a entity.Account) (entity.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byEmail[a.Email]; ok {
		return entity.Account{}, apperr.Conflictf("email %q already registered", a.Email)
	}
	if _, ok := d.byID[a.ID]; ok {
		return entity.Account{}, apperr.Conflictf("account %s already exists", a.ID)
	}
	d.byID[a.ID] = a
	d.byEmail[a.Email] = a.ID
	return a, nil
}

func (d *AccountDirectory) FindByID(_ context.Context, id string) (entity.Account, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byID[id]
	return a, ok, nil
}

func (d *AccountDirectory) FindByEmail(_ context.Context, email string) (entity.Account, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byEmail[email]
	if !ok {
		return entity.Account{}, false, nil
	}
	return d.byID[id], true, nil
}

// FindAll returns a snapshot ordered by creation time; later writes do not
// affect it.
func (d *AccountDirectory) FindAll(_ context.Context) ([]entity.Account, error) {
	d.mu.RLock()
	out := make([]entity.Account, 0, len(d.byID))
	for _, a := range d.byID {
		out = append(out, a)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update replaces the record stored under id. Account ids never change, so a
// record whose ID differs from id is rejected. When the email changes the new
// address must be free; on conflict nothing is modified.
func (d *AccountDirectory) Update(_ context.Context, a entity.Account, id string) (entity.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur, ok := d.byID[id]
	if !ok {
		return entity.Account{}, apperr.NotFoundf("account %s", id)
	}
	if a.ID != id {
		return entity.Account{}, apperr.Validationf("account id is immutable")
	}
	if a.Email != cur.Email {
		if owner, taken := d.byEmail[a.Email]; taken && owner != id {
			return entity.Account{}, apperr.Conflictf("email %q already registered", a.Email)
		}
		delete(d.byEmail, cur.Email)
		d.byEmail[a.Email] = id
	}
	d.byID[id] = a
	return a, nil
}

func (d *AccountDirectory) Delete(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.byID[id]
	if !ok {
		return false, nil
	}
	delete(d.byID, id)
	delete(d.byEmail, a.Email)
	return true, nil
}

// Reset drops every record. Only tests call it.
func (d *AccountDirectory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID = make(map[string]entity.Account)
	d.byEmail = make(map[string]string)
}

var _ repository.AccountRepository = (*AccountDirectory)(nil)
