package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-event-hub/config"
	"github.com/oksasatya/go-ddd-event-hub/internal/application/account"
	"github.com/oksasatya/go-ddd-event-hub/internal/container"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	"github.com/oksasatya/go-ddd-event-hub/pkg/helpers"
)

const (
	demoAdminEmail    = "admin@eventhub.local"
	demoAdminPassword = "password123"
	demoMemberEmail   = "member@eventhub.local"
)

// demoEvents start relative to now so the seed always yields upcoming events.
func demoEvents(now time.Time) []entity.Event {
	day := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	return []entity.Event{
		{
			ID:           "demo-keynote",
			Title:        "Opening keynote",
			Description:  "<p>Welcome session and <strong>roadmap</strong>.</p>",
			StreamingURL: "https://stream.eventhub.local/keynote",
			StartAt:      day.Add(9 * time.Hour),
			EndAt:        day.Add(10 * time.Hour),
			Category:     "conference",
		},
		{
			ID:           "demo-jazz",
			Title:        "Late night jazz",
			Description:  "Live quartet from the main hall.",
			StreamingURL: "https://stream.eventhub.local/jazz",
			StartAt:      day.Add(21 * time.Hour),
			EndAt:        day.Add(23 * time.Hour),
			Category:     "music",
		},
		{
			ID:           "demo-workshop",
			Title:        "Go concurrency workshop",
			Description:  "Hands-on channels and context.",
			Status:       "Draft",
			StreamingURL: "https://stream.eventhub.local/workshop",
			StartAt:      day.Add(48*time.Hour + 14*time.Hour),
			EndAt:        day.Add(48*time.Hour + 17*time.Hour),
			Category:     "workshop",
		},
	}
}

// ensureAccount creates the account or returns the existing one with that email.
func ensureAccount(ctx context.Context, svc *account.Service, in account.NewAccount) (entity.Account, error) {
	a, err := svc.CreateAccount(ctx, in)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, apperr.ErrConflict) {
		return entity.Account{}, err
	}
	all, err := svc.ListAccounts(ctx)
	if err != nil {
		return entity.Account{}, err
	}
	for _, a := range all {
		if a.Email == in.Email {
			return a, nil
		}
	}
	return entity.Account{}, fmt.Errorf("account %s reported as existing but not found", in.Email)
}

func seed(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
	admin, err := ensureAccount(ctx, c.Accounts, account.NewAccount{
		Email: demoAdminEmail, Username: "demoAdmin", Password: demoAdminPassword, Role: entity.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	member, err := ensureAccount(ctx, c.Accounts, account.NewAccount{
		Email: demoMemberEmail, Username: "demoMember", Password: demoAdminPassword, Role: entity.RoleMember,
	})
	if err != nil {
		return fmt.Errorf("seed member: %w", err)
	}

	for _, ev := range demoEvents(time.Now().UTC()) {
		_, found, err := c.Events.FindEventByID(ctx, ev.ID)
		if err != nil {
			return err
		}
		if found {
			continue
		}
		if _, err := c.Events.CreateEvent(ctx, admin.ID, ev); err != nil {
			return fmt.Errorf("seed event %s: %w", ev.ID, err)
		}
		logger.WithField("event_id", ev.ID).Info("seeded event")
	}

	if _, err := c.Favorites.AddFavorite(ctx, member.ID, "demo-jazz"); err != nil && !errors.Is(err, apperr.ErrConflict) {
		return fmt.Errorf("seed favorite: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"admin":    admin.Email,
		"member":   member.Email,
		"password": demoAdminPassword,
	}).Info("seed complete")
	return nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx := context.Background()
	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to build application")
	}
	defer c.Close()

	if cfg.StoreBackend == config.StoreMemory {
		logger.Warn("STORE_BACKEND=memory: seeded data is lost when this process exits")
	}
	if err := seed(ctx, c, logger); err != nil {
		c.Close()
		logger.WithError(err).Fatal("seed failed")
	}
}
