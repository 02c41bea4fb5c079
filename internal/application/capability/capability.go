// Package capability holds the narrow views one feature exposes to another.
// The functions here only shape data; they never decide access.
package capability

import "github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"

// Identity is what other features may know about an account.
type Identity struct {
	SubjectID string      `json:"subject_id"`
	Role      entity.Role `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == entity.RoleAdmin }

// EventRef is what other features may know about an event.
type EventRef struct {
	ID       string
	AuthorID string
}

func FromAccount(a entity.Account) Identity {
	return Identity{SubjectID: a.ID, Role: a.Role}
}

func FromEvent(e entity.Event) EventRef {
	return EventRef{ID: e.ID, AuthorID: e.Author}
}
