package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-event-hub/internal/auth"
	handlers "github.com/oksasatya/go-ddd-event-hub/internal/interface/http"
	"github.com/oksasatya/go-ddd-event-hub/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
)

// EventModule wires event routes. Reads are public; writes need a token and
// the coordinator checks for the admin role.
type EventModule struct {
	Handler *handlers.EventHandler
	Gate    *auth.Gate
	Metrics metrics.Recorder
}

func NewEventModule(h *handlers.EventHandler, gate *auth.Gate, rec metrics.Recorder) *EventModule {
	return &EventModule{Handler: h, Gate: gate, Metrics: rec}
}

func (m *EventModule) Register(rg *gin.RouterGroup) {
	events := rg.Group("/events")

	events.GET("", m.Handler.List)
	events.GET("/search", m.Handler.Search)
	events.GET("/:id", m.Handler.Get)

	requireAuth := middleware.RequireAuth(m.Gate, m.Metrics)
	events.POST("", requireAuth, m.Handler.Create)
	events.PUT("/:id", requireAuth, m.Handler.Update)
	events.DELETE("/:id", requireAuth, m.Handler.Delete)
}
