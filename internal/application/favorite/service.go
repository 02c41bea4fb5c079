// Package favorite lets authenticated accounts bookmark events.
package favorite

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-event-hub/internal/application/capability"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-event-hub/internal/domain/repository"
)

type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, id string) (capability.Identity, bool, error)
}

type EventResolver interface {
	ResolveEvent(ctx context.Context, id string) (capability.EventRef, bool, error)
}

type Service struct {
	Repo       repo.FavoriteRepository
	Identities IdentityResolver
	Events     EventResolver
	Logger     *logrus.Logger
}

func NewService(repo repo.FavoriteRepository, identities IdentityResolver, events EventResolver, logger *logrus.Logger) *Service {
	return &Service{Repo: repo, Identities: identities, Events: events, Logger: logger}
}

// AddFavorite records that accountID favors eventID. A second favorite for
// the same pair is rejected by the registry with apperr.ErrConflict.
func (s *Service) AddFavorite(ctx context.Context, accountID, eventID string) (entity.Favorite, error) {
	if err := s.requireIdentity(ctx, accountID); err != nil {
		return entity.Favorite{}, err
	}
	ref, found, err := s.Events.ResolveEvent(ctx, eventID)
	if err != nil {
		return entity.Favorite{}, apperr.Internal(err)
	}
	if !found {
		return entity.Favorite{}, apperr.NotFoundf("event %s", eventID)
	}

	fav, err := s.Repo.Create(ctx, entity.Favorite{
		ID:        uuid.NewString(),
		AccountID: accountID,
		EventID:   ref.ID,
	})
	if err != nil {
		return entity.Favorite{}, apperr.Internal(err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"account_id": accountID, "event_id": ref.ID}).Debug("favorite added")
	}
	return fav, nil
}

// ListFavorites returns the caller's favorites only.
func (s *Service) ListFavorites(ctx context.Context, accountID string) ([]entity.Favorite, error) {
	if err := s.requireIdentity(ctx, accountID); err != nil {
		return nil, err
	}
	items, err := s.Repo.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// RemoveFavorite deletes one of the caller's favorites. An unknown id reports
// false; a favorite owned by another account fails with apperr.ErrForbidden.
func (s *Service) RemoveFavorite(ctx context.Context, accountID, favoriteID string) (bool, error) {
	if err := s.requireIdentity(ctx, accountID); err != nil {
		return false, err
	}
	fav, found, err := s.Repo.FindByID(ctx, favoriteID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	if !found {
		return false, nil
	}
	if fav.AccountID != accountID {
		return false, apperr.Forbiddenf("favorite %s belongs to another account", favoriteID)
	}
	existed, err := s.Repo.Delete(ctx, favoriteID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return existed, nil
}

func (s *Service) requireIdentity(ctx context.Context, accountID string) error {
	if accountID == "" {
		return apperr.ErrUnauthenticated
	}
	_, found, err := s.Identities.ResolveIdentity(ctx, accountID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.ErrUnauthenticated
	}
	return nil
}
