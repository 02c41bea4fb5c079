package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
)

// FavoriteRepository stores favorites keyed by id with a secondary unique
// index over (AccountID, EventID). The pair check happens inside Create/Update,
// never as a separate read by the caller.
type FavoriteRepository interface {
	Create(ctx context.Context, f entity.Favorite) (entity.Favorite, error)
	FindByID(ctx context.Context, id string) (entity.Favorite, bool, error)
	FindByPair(ctx context.Context, accountID, eventID string) (entity.Favorite, bool, error)
	FindByAccount(ctx context.Context, accountID string) ([]entity.Favorite, error)
	FindAll(ctx context.Context) ([]entity.Favorite, error)
	Update(ctx context.Context, f entity.Favorite, id string) (entity.Favorite, error)
	Delete(ctx context.Context, id string) (bool, error)
}
