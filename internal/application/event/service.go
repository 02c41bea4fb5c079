// Package event is the event coordinator. Reads are public; every write
// requires an admin identity resolved through the IdentityResolver port.
package event

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-event-hub/internal/application/capability"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-event-hub/internal/domain/repository"
)

// IdentityResolver looks up the role of an account.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, id string) (capability.Identity, bool, error)
}

// Sanitizer cleans user supplied HTML. *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(s string) string
}

// Indexer mirrors events into a full-text index. Search returns matching
// event ids, best match first.
type Indexer interface {
	Index(ctx context.Context, e entity.Event) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string, size int) ([]string, error)
}

const defaultSearchSize = 20

type Service struct {
	Repo       repo.EventRepository
	Identities IdentityResolver
	Sanitizer  Sanitizer
	Indexer    Indexer
	Logger     *logrus.Logger
}

func NewService(repo repo.EventRepository, identities IdentityResolver, logger *logrus.Logger) *Service {
	return &Service{Repo: repo, Identities: identities, Logger: logger}
}

// CreateEvent stores a new event on behalf of an admin. A missing id is
// generated, a missing status becomes entity.DefaultEventStatus and a
// missing author becomes the actor.
func (s *Service) CreateEvent(ctx context.Context, actorID string, ev entity.Event) (entity.Event, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return entity.Event{}, err
	}
	if !ev.HasValidWindow() {
		return entity.Event{}, apperr.Validationf("event must start before it ends")
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Status == "" {
		ev.Status = entity.DefaultEventStatus
	}
	if ev.Author == "" {
		ev.Author = actorID
	}
	ev.Description = s.sanitize(ev.Description)

	created, err := s.Repo.Create(ctx, ev)
	if err != nil {
		return entity.Event{}, apperr.Internal(err)
	}
	s.index(ctx, created)
	return created, nil
}

// UpdateEvent replaces the event stored under id. When ev.ID differs from id
// the event moves to the new key, or nothing changes if that key is taken.
func (s *Service) UpdateEvent(ctx context.Context, actorID, id string, ev entity.Event) (entity.Event, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return entity.Event{}, err
	}
	if !ev.HasValidWindow() {
		return entity.Event{}, apperr.Validationf("event must start before it ends")
	}
	cur, found, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return entity.Event{}, apperr.Internal(err)
	}
	if !found {
		return entity.Event{}, apperr.NotFoundf("event %s", id)
	}
	if ev.ID == "" {
		ev.ID = id
	}
	if ev.Status == "" {
		ev.Status = cur.Status
	}
	if ev.Author == "" {
		ev.Author = cur.Author
	}
	ev.Description = s.sanitize(ev.Description)

	updated, err := s.Repo.Update(ctx, ev, id)
	if err != nil {
		return entity.Event{}, apperr.Internal(err)
	}
	if updated.ID != id {
		s.unindex(ctx, id)
	}
	s.index(ctx, updated)
	return updated, nil
}

// DeleteEvent removes an event and reports whether it existed. Favorites
// pointing at it are kept.
func (s *Service) DeleteEvent(ctx context.Context, actorID, id string) (bool, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return false, err
	}
	existed, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return false, apperr.Internal(err)
	}
	if existed {
		s.unindex(ctx, id)
	}
	return existed, nil
}

func (s *Service) FindEventByID(ctx context.Context, id string) (entity.Event, bool, error) {
	e, found, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return entity.Event{}, false, apperr.Internal(err)
	}
	return e, found, nil
}

func (s *Service) FindAllEvents(ctx context.Context) ([]entity.Event, error) {
	items, err := s.Repo.FindAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// ResolveEvent exposes the {id, author} view of an event to other features.
func (s *Service) ResolveEvent(ctx context.Context, id string) (capability.EventRef, bool, error) {
	e, found, err := s.FindEventByID(ctx, id)
	if err != nil || !found {
		return capability.EventRef{}, false, err
	}
	return capability.FromEvent(e), true, nil
}

// SearchEvents looks events up by free text. Without an index, or when the
// index fails, it scans the registry for a case-insensitive substring match
// in title, description or category.
func (s *Service) SearchEvents(ctx context.Context, query string, size int) ([]entity.Event, error) {
	query = strings.TrimSpace(query)
	if size <= 0 {
		size = defaultSearchSize
	}
	if query == "" {
		return []entity.Event{}, nil
	}

	if s.Indexer != nil {
		ids, err := s.Indexer.Search(ctx, query, size)
		if err == nil {
			return s.hydrate(ctx, ids)
		}
		s.logWarn(err, "event search index unavailable, scanning registry")
	}

	all, err := s.FindAllEvents(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	out := make([]entity.Event, 0)
	for _, e := range all {
		if matches(e, needle) {
			out = append(out, e)
			if len(out) == size {
				break
			}
		}
	}
	return out, nil
}

func matches(e entity.Event, needle string) bool {
	return strings.Contains(strings.ToLower(e.Title), needle) ||
		strings.Contains(strings.ToLower(e.Description), needle) ||
		strings.Contains(strings.ToLower(e.Category), needle)
}

// hydrate loads events in index order, skipping ids the registry no longer has.
func (s *Service) hydrate(ctx context.Context, ids []string) ([]entity.Event, error) {
	out := make([]entity.Event, 0, len(ids))
	for _, id := range ids {
		e, found, err := s.FindEventByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, e)
		}
	}
	return out, nil
}

// requireAdmin fails with ErrForbidden unless actorID resolves to an admin.
func (s *Service) requireAdmin(ctx context.Context, actorID string) error {
	if actorID == "" || s.Identities == nil {
		return apperr.Forbiddenf("admin role required")
	}
	id, found, err := s.Identities.ResolveIdentity(ctx, actorID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !found || !id.IsAdmin() {
		return apperr.Forbiddenf("admin role required")
	}
	return nil
}

func (s *Service) sanitize(html string) string {
	if s.Sanitizer == nil || html == "" {
		return html
	}
	return strings.TrimSpace(s.Sanitizer.Sanitize(html))
}

func (s *Service) index(ctx context.Context, e entity.Event) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.Index(ctx, e); err != nil {
		s.logWarn(err, "index event failed", e.ID)
	}
}

func (s *Service) unindex(ctx context.Context, id string) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.Remove(ctx, id); err != nil {
		s.logWarn(err, "remove event from index failed", id)
	}
}

func (s *Service) logWarn(err error, msg string, eventID ...string) {
	if s.Logger == nil {
		return
	}
	entry := s.Logger.WithError(err)
	if len(eventID) > 0 {
		entry = entry.WithField("event_id", eventID[0])
	}
	entry.Warn(msg)
}
