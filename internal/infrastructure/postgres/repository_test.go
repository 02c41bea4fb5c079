package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
)

var (
	sharedOnce sync.Once
	sharedPool *pgxpool.Pool
	sharedErr  error
)

// setupTestDB starts one PostgreSQL container per test binary, migrates it,
// and truncates every table before each test.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()
	sharedOnce.Do(func() {
		container, err := tcpostgres.Run(ctx,
			"docker.io/postgres:17-alpine",
			tcpostgres.WithDatabase("eventhub_test"),
			tcpostgres.WithUsername("eventhub"),
			tcpostgres.WithPassword("test-password"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		if err != nil {
			sharedErr = err
			return
		}
		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedErr = err
			return
		}
		if err := RunMigrations(dsn, nil); err != nil {
			sharedErr = err
			return
		}
		sharedPool, sharedErr = NewPool(ctx, dsn, 4, 0, 0)
	})
	if sharedErr != nil {
		t.Fatalf("postgres container: %v", sharedErr)
	}
	if _, err := sharedPool.Exec(ctx, `TRUNCATE accounts, events, favorites`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return sharedPool
}

func TestAccountRepository(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewAccountRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	a := entity.Account{ID: "a1", Email: "a@example.com", Username: "a", Role: entity.RoleMember, PasswordHash: "h", CreatedAt: now}
	created, err := repo.Create(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != a.ID || created.Role != a.Role || !created.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("created = %+v", created)
	}

	dup := a
	dup.ID = "a2"
	if _, err := repo.Create(ctx, dup); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate email: %v", err)
	}

	if _, found, err := repo.FindByEmail(ctx, "nobody@example.com"); err != nil || found {
		t.Fatalf("absent email: %v %v", found, err)
	}
	got, found, err := repo.FindByEmail(ctx, "a@example.com")
	if err != nil || !found || got.ID != "a1" {
		t.Fatalf("by email: %+v %v %v", got, found, err)
	}

	b := entity.Account{ID: "b1", Email: "b@example.com", Role: entity.RoleAdmin, PasswordHash: "h", CreatedAt: now.Add(time.Second)}
	if _, err := repo.Create(ctx, b); err != nil {
		t.Fatal(err)
	}
	b.Email = "a@example.com"
	if _, err := repo.Update(ctx, b, "b1"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("update onto taken email: %v", err)
	}
	b.Email = "b2@example.com"
	if updated, err := repo.Update(ctx, b, "b1"); err != nil || updated.Email != "b2@example.com" {
		t.Fatalf("update: %+v %v", updated, err)
	}
	if _, err := repo.Update(ctx, b, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("mismatch on unknown id: %v", err)
	}
	if _, err := repo.Update(ctx, b, "a1"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("id mismatch: %v", err)
	}

	all, err := repo.FindAll(ctx)
	if err != nil || len(all) != 2 || all[0].ID != "a1" {
		t.Fatalf("all = %+v %v", all, err)
	}

	if existed, err := repo.Delete(ctx, "a1"); err != nil || !existed {
		t.Fatalf("delete: %v %v", existed, err)
	}
	if existed, err := repo.Delete(ctx, "a1"); err != nil || existed {
		t.Fatalf("delete again: %v %v", existed, err)
	}
}

func TestEventRepository(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewEventRepository(pool)
	ctx := context.Background()
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	e := entity.Event{ID: "e1", Title: "Talk", Status: entity.DefaultEventStatus, StartAt: start, EndAt: start.Add(time.Hour), Author: "a1"}
	if _, err := repo.Create(ctx, e); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(ctx, e); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate id: %v", err)
	}

	backwards := e
	backwards.ID = "e-bad"
	backwards.EndAt = backwards.StartAt
	if _, err := repo.Create(ctx, backwards); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("window check: %v", err)
	}

	other := e
	other.ID = "e2"
	repo.Create(ctx, other)

	moved := e
	moved.ID = "e2"
	if _, err := repo.Update(ctx, moved, "e1"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("move onto taken key: %v", err)
	}
	moved.ID = "e3"
	moved.Title = "Renamed"
	if got, err := repo.Update(ctx, moved, "e1"); err != nil || got.ID != "e3" {
		t.Fatalf("move: %+v %v", got, err)
	}
	if _, found, _ := repo.FindByID(ctx, "e1"); found {
		t.Fatal("old key still present")
	}
	if _, err := repo.Update(ctx, moved, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
}

func TestFavoriteRepository(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewFavoriteRepository(pool)
	ctx := context.Background()

	f := entity.Favorite{ID: "f1", AccountID: "a1", EventID: "e1"}
	if _, err := repo.Create(ctx, f); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(ctx, entity.Favorite{ID: "f2", AccountID: "a1", EventID: "e1"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate pair: %v", err)
	}
	if _, err := repo.Create(ctx, entity.Favorite{ID: "f2", AccountID: "a1", EventID: "e2"}); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Update(ctx, entity.Favorite{ID: "f2", AccountID: "a1", EventID: "e1"}, "f2"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("update onto taken pair: %v", err)
	}

	mine, err := repo.FindByAccount(ctx, "a1")
	if err != nil || len(mine) != 2 {
		t.Fatalf("by account: %+v %v", mine, err)
	}
	if got, found, _ := repo.FindByPair(ctx, "a1", "e2"); !found || got.ID != "f2" {
		t.Fatalf("by pair: %+v %v", got, found)
	}

	repo.Delete(ctx, "f1")
	if _, err := repo.Create(ctx, entity.Favorite{ID: "f3", AccountID: "a1", EventID: "e1"}); err != nil {
		t.Fatalf("pair freed after delete: %v", err)
	}
}
