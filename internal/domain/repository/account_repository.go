package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
)

// AccountRepository is the identity store contract. Every implementation
// (in-memory or durable) enforces unique id and unique email, reports absence
// as found=false rather than an error, and fails with apperr kinds:
// Conflict on uniqueness violations, NotFound when update targets a missing id.
type AccountRepository interface {
	Create(ctx context.Context, a entity.Account) (entity.Account, error)
	FindByID(ctx context.Context, id string) (entity.Account, bool, error)
	FindByEmail(ctx context.Context, email string) (entity.Account, bool, error)
	FindAll(ctx context.Context) ([]entity.Account, error)
	Update(ctx context.Context, a entity.Account, id string) (entity.Account, error)
	Delete(ctx context.Context, id string) (bool, error)
}
