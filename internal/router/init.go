package router

import (
	"github.com/oksasatya/go-ddd-event-hub/internal/container"
	handlers "github.com/oksasatya/go-ddd-event-hub/internal/interface/http"
	"github.com/oksasatya/go-ddd-event-hub/internal/router/modules"
)

// InitModules builds the feature handlers from c and registers them with r.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	r.Add(modules.NewAccountModule(
		handlers.NewAccountHandler(c.Accounts, c.Logger, c.Metrics),
		c.Gate, c.Metrics,
	))
	r.Add(modules.NewEventModule(
		handlers.NewEventHandler(c.Events, c.Logger, c.Metrics),
		c.Gate, c.Metrics,
	))
	r.Add(modules.NewFavoriteModule(
		handlers.NewFavoriteHandler(c.Favorites, c.Logger, c.Metrics),
		c.Gate, c.Metrics,
	))

	if c.Registry != nil {
		r.AddRoot(modules.NewMetricsModule(c.Registry))
	}
}
