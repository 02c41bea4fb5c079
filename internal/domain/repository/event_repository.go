package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
)

// EventRepository stores events keyed by id. Update may move a record to a
// new id; the move is all-or-nothing.
type EventRepository interface {
	Create(ctx context.Context, e entity.Event) (entity.Event, error)
	FindByID(ctx context.Context, id string) (entity.Event, bool, error)
	FindAll(ctx context.Context) ([]entity.Event, error)
	Update(ctx context.Context, e entity.Event, id string) (entity.Event, error)
	Delete(ctx context.Context, id string) (bool, error)
}
