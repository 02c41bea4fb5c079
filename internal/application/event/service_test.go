package event

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-event-hub/internal/application/capability"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	"github.com/oksasatya/go-ddd-event-hub/internal/infrastructure/memory"
)

type identities map[string]entity.Role

func (m identities) ResolveIdentity(_ context.Context, id string) (capability.Identity, bool, error) {
	role, ok := m[id]
	if !ok {
		return capability.Identity{}, false, nil
	}
	return capability.Identity{SubjectID: id, Role: role}, true, nil
}

type fakeIndexer struct {
	docs      map[string]entity.Event
	failIndex bool
	failQuery bool
	hits      []string
}

func newFakeIndexer() *fakeIndexer { return &fakeIndexer{docs: map[string]entity.Event{}} }

func (f *fakeIndexer) Index(_ context.Context, e entity.Event) error {
	if f.failIndex {
		return errors.New("index down")
	}
	f.docs[e.ID] = e
	return nil
}

func (f *fakeIndexer) Remove(_ context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeIndexer) Search(_ context.Context, _ string, _ int) ([]string, error) {
	if f.failQuery {
		return nil, errors.New("index down")
	}
	return f.hits, nil
}

var base = time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

func sample(title string) entity.Event {
	return entity.Event{Title: title, Description: "about " + title, StartAt: base, EndAt: base.Add(2 * time.Hour), Category: "talk"}
}

func newTestService() *Service {
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := NewService(memory.NewEventRegistry(), identities{"admin": entity.RoleAdmin, "member": entity.RoleMember}, l)
	s.Sanitizer = bluemonday.UGCPolicy()
	return s
}

func TestCreateEventAsAdmin(t *testing.T) {
	s := newTestService()
	got, err := s.CreateEvent(context.Background(), "admin", sample("Go meetup"))
	if err != nil {
		t.Fatal(err)
	}
	if got.ID == "" || got.Status != entity.DefaultEventStatus || got.Author != "admin" {
		t.Fatalf("defaults not applied: %+v", got)
	}
	stored, found, _ := s.FindEventByID(context.Background(), got.ID)
	if !found || stored != got {
		t.Fatalf("stored = %+v, found %v", stored, found)
	}

	credited := sample("Guest talk")
	credited.Author = "guest-speaker"
	got, err = s.CreateEvent(context.Background(), "admin", credited)
	if err != nil {
		t.Fatal(err)
	}
	if got.Author != "guest-speaker" {
		t.Fatalf("supplied author overwritten: %q", got.Author)
	}
}

func TestWritesRequireAdmin(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	ev, _ := s.CreateEvent(ctx, "admin", sample("keep"))

	for _, actor := range []string{"member", "ghost", ""} {
		if _, err := s.CreateEvent(ctx, actor, sample("x")); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("create as %q: %v", actor, err)
		}
		if _, err := s.UpdateEvent(ctx, actor, ev.ID, sample("x")); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("update as %q: %v", actor, err)
		}
		if _, err := s.DeleteEvent(ctx, actor, ev.ID); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("delete as %q: %v", actor, err)
		}
	}
	all, _ := s.FindAllEvents(ctx)
	if len(all) != 1 {
		t.Fatalf("registry changed: %d events", len(all))
	}
}

func TestAuthorizationPrecedesValidation(t *testing.T) {
	s := newTestService()
	bad := sample("backwards")
	bad.EndAt = bad.StartAt

	if _, err := s.CreateEvent(context.Background(), "member", bad); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("member: %v", err)
	}
	if _, err := s.CreateEvent(context.Background(), "admin", bad); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("admin: %v", err)
	}
}

func TestCreateEventDuplicateID(t *testing.T) {
	s := newTestService()
	ev := sample("a")
	ev.ID = "fixed"
	if _, err := s.CreateEvent(context.Background(), "admin", ev); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateEvent(context.Background(), "admin", ev); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestUpdateEventKeyChange(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	idx := newFakeIndexer()
	s.Indexer = idx

	a, _ := s.CreateEvent(ctx, "admin", sample("a"))
	b, _ := s.CreateEvent(ctx, "admin", sample("b"))

	moved := a
	moved.ID = b.ID
	if _, err := s.UpdateEvent(ctx, "admin", a.ID, moved); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("move onto taken key: %v", err)
	}
	if _, found, _ := s.FindEventByID(ctx, a.ID); !found {
		t.Fatal("failed move removed the original")
	}

	moved.ID = "renamed"
	got, err := s.UpdateEvent(ctx, "admin", a.ID, moved)
	if err != nil || got.ID != "renamed" {
		t.Fatalf("move: %+v %v", got, err)
	}
	if _, found, _ := s.FindEventByID(ctx, a.ID); found {
		t.Fatal("old key still present")
	}
	if _, ok := idx.docs[a.ID]; ok {
		t.Fatal("old key still indexed")
	}
	if _, ok := idx.docs["renamed"]; !ok {
		t.Fatal("new key not indexed")
	}
}

func TestUpdateEventRejectsBadWindow(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	orig, err := s.CreateEvent(ctx, "admin", sample("window"))
	if err != nil {
		t.Fatal(err)
	}

	equal := sample("changed")
	equal.EndAt = equal.StartAt
	inverted := sample("changed")
	inverted.StartAt, inverted.EndAt = inverted.EndAt, inverted.StartAt

	for name, ev := range map[string]entity.Event{"equal": equal, "inverted": inverted} {
		if _, err := s.UpdateEvent(ctx, "admin", orig.ID, ev); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("%s: err = %v, want validation", name, err)
		}
	}
	stored, found, _ := s.FindEventByID(ctx, orig.ID)
	if !found || stored.Title != orig.Title || !stored.StartAt.Equal(orig.StartAt) || !stored.EndAt.Equal(orig.EndAt) {
		t.Fatalf("stored event changed: %+v", stored)
	}
}

func TestUpdateEventUnknown(t *testing.T) {
	s := newTestService()
	if _, err := s.UpdateEvent(context.Background(), "admin", "nope", sample("x")); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeleteEvent(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	ev, _ := s.CreateEvent(ctx, "admin", sample("gone"))

	existed, err := s.DeleteEvent(ctx, "admin", ev.ID)
	if err != nil || !existed {
		t.Fatalf("delete: %v %v", existed, err)
	}
	existed, err = s.DeleteEvent(ctx, "admin", ev.ID)
	if err != nil || existed {
		t.Fatalf("second delete: %v %v", existed, err)
	}
}

func TestDescriptionIsSanitized(t *testing.T) {
	s := newTestService()
	ev := sample("xss")
	ev.Description = `<p>hello</p><script>alert(1)</script>`
	got, err := s.CreateEvent(context.Background(), "admin", ev)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got.Description, "script") || !strings.Contains(got.Description, "<p>hello</p>") {
		t.Fatalf("description = %q", got.Description)
	}
}

func TestIndexFailureDoesNotFailWrite(t *testing.T) {
	s := newTestService()
	s.Indexer = &fakeIndexer{docs: map[string]entity.Event{}, failIndex: true}
	if _, err := s.CreateEvent(context.Background(), "admin", sample("ok")); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestSearchEventsFallsBackToScan(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	s.CreateEvent(ctx, "admin", sample("Gophercon"))
	s.CreateEvent(ctx, "admin", sample("Rust night"))

	got, err := s.SearchEvents(ctx, "GOPHER", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Title != "Gophercon" {
		t.Fatalf("search = %+v", got)
	}

	s.Indexer = &fakeIndexer{failQuery: true}
	if got, _ = s.SearchEvents(ctx, "rust", 10); len(got) != 1 {
		t.Fatalf("fallback on index error = %+v", got)
	}

	if got, _ = s.SearchEvents(ctx, "  ", 10); len(got) != 0 {
		t.Fatalf("blank query = %+v", got)
	}
}

func TestSearchEventsHydratesIndexHits(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	a, _ := s.CreateEvent(ctx, "admin", sample("a"))
	b, _ := s.CreateEvent(ctx, "admin", sample("b"))
	s.Indexer = &fakeIndexer{hits: []string{b.ID, "stale", a.ID}}

	got, err := s.SearchEvents(ctx, "anything", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
		t.Fatalf("hydrated = %+v", got)
	}
}

func TestResolveEvent(t *testing.T) {
	s := newTestService()
	ev, _ := s.CreateEvent(context.Background(), "admin", sample("ref"))
	ref, found, err := s.ResolveEvent(context.Background(), ev.ID)
	if err != nil || !found || ref.ID != ev.ID || ref.AuthorID != "admin" {
		t.Fatalf("ref = %+v found=%v err=%v", ref, found, err)
	}
	if _, found, _ := s.ResolveEvent(context.Background(), "missing"); found {
		t.Fatal("missing event resolved")
	}
}
