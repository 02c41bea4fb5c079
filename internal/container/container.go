// Package container is the composition root. Build constructs every store,
// adapter and coordinator once; callers pass the resulting Container down
// instead of reaching for package level singletons.
package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-event-hub/config"
	"github.com/oksasatya/go-ddd-event-hub/internal/application/account"
	"github.com/oksasatya/go-ddd-event-hub/internal/application/event"
	"github.com/oksasatya/go-ddd-event-hub/internal/application/favorite"
	"github.com/oksasatya/go-ddd-event-hub/internal/auth"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-event-hub/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-event-hub/internal/domain/repository"
	"github.com/oksasatya/go-ddd-event-hub/internal/infrastructure/cache"
	"github.com/oksasatya/go-ddd-event-hub/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-event-hub/internal/infrastructure/notify"
	pginfra "github.com/oksasatya/go-ddd-event-hub/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-event-hub/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
	"github.com/oksasatya/go-ddd-event-hub/pkg/helpers"
	"github.com/oksasatya/go-ddd-event-hub/pkg/mailer"
)

type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
	Metrics  metrics.Recorder

	Tokens     *auth.TokenService
	Gate       *auth.Gate
	Identities cache.IdentityCache

	Accounts  *account.Service
	Events    *event.Service
	Favorites *favorite.Service

	closers []func()
}

type stores struct {
	accounts  repo.AccountRepository
	events    repo.EventRepository
	favorites repo.FavoriteRepository
}

// Build wires the application from cfg. On error everything opened so far
// is closed again.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, Logger: logger, Metrics: metrics.Nop{}}
	if err := c.wire(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) wire(ctx context.Context) (err error) {
	cfg, logger := c.Config, c.Logger

	if cfg.MetricsEnabled {
		c.Registry = prometheus.NewRegistry()
		c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		c.Metrics = metrics.NewCollector(c.Registry)
	}

	c.Tokens, err = auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}
	c.Gate = auth.NewGate(c.Tokens)

	st, err := c.buildStores(ctx)
	if err != nil {
		return err
	}
	notifier, err := c.buildNotifier()
	if err != nil {
		return err
	}

	c.Accounts = account.NewService(st.accounts, c.Tokens, notifier, logger, cfg.BcryptCost)
	c.Identities = c.buildIdentityCache(c.Accounts)
	c.Accounts.Cache = c.Identities

	c.Events = event.NewService(st.events, c.Identities, logger)
	c.Events.Sanitizer = bluemonday.UGCPolicy()
	if idx := c.buildEventIndex(ctx); idx != nil {
		c.Events.Indexer = idx
	}

	c.Favorites = favorite.NewService(st.favorites, c.Identities, c.Events, logger)

	if err := c.bootstrapAdmin(ctx); err != nil {
		return err
	}
	return nil
}

func (c *Container) buildStores(ctx context.Context) (stores, error) {
	cfg := c.Config
	if cfg.StoreBackend != config.StorePostgres {
		return stores{
			accounts:  memory.NewAccountDirectory(),
			events:    memory.NewEventRegistry(),
			favorites: memory.NewFavoriteRegistry(),
		}, nil
	}

	if cfg.DBAutoMigrate {
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), c.Logger); err != nil {
			return stores{}, fmt.Errorf("migrate: %w", err)
		}
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return stores{}, fmt.Errorf("connect postgres: %w", err)
	}
	c.closers = append(c.closers, pool.Close)
	return stores{
		accounts:  pginfra.NewAccountRepository(pool),
		events:    pginfra.NewEventRepository(pool),
		favorites: pginfra.NewFavoriteRepository(pool),
	}, nil
}

func (c *Container) buildNotifier() (account.Notifier, error) {
	cfg := c.Config
	switch cfg.Notifier {
	case config.NotifierRabbitMQ:
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		c.closers = append(c.closers, pub.Close)
		return notify.Rabbit{Publisher: pub}, nil
	case config.NotifierMailgun:
		return notify.Mailgun{Sender: mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)}, nil
	default:
		return notify.Log{Logger: c.Logger}, nil
	}
}

func (c *Container) buildIdentityCache(next cache.Resolver) cache.IdentityCache {
	cfg := c.Config
	switch cfg.CacheBackend {
	case config.CacheLRU:
		return cache.NewLRU(next, cfg.CacheSize, cfg.CacheTTL, c.Metrics)
	case config.CacheRedis:
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		return cache.NewRedis(next, rdb, cfg.CacheTTL, c.Logger, c.Metrics)
	default:
		return cache.Passthrough{Next: next}
	}
}

// buildEventIndex returns nil when search is not configured. An unreachable
// cluster only costs a warning: searches fall back to scanning the store.
func (c *Container) buildEventIndex(ctx context.Context) event.Indexer {
	addrs := c.Config.ESAddrs()
	if len(addrs) == 0 {
		return nil
	}
	es, err := helpers.NewESClient(addrs, c.Config.ElasticsearchUser, c.Config.ElasticsearchPass)
	if err != nil {
		c.Logger.WithError(err).Warn("elasticsearch client init failed, search index disabled")
		return nil
	}
	idx := search.NewEventIndex(es, c.Config.ESEventsIndex)
	if err := idx.EnsureIndex(ctx); err != nil {
		c.Logger.WithError(err).WithField("index", c.Config.ESEventsIndex).Warn("ensure events index failed")
	}
	return idx
}

func (c *Container) bootstrapAdmin(ctx context.Context) error {
	cfg := c.Config
	if cfg.AdminEmail == "" {
		return nil
	}
	_, err := c.Accounts.CreateAccount(ctx, account.NewAccount{
		Email:    cfg.AdminEmail,
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Role:     entity.RoleAdmin,
	})
	if err == nil {
		c.Logger.WithField("email", cfg.AdminEmail).Info("bootstrap admin created")
		return nil
	}
	if errors.Is(err, apperr.ErrConflict) {
		return nil
	}
	return fmt.Errorf("bootstrap admin: %w", err)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
