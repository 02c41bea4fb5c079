package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-event-hub/internal/auth"
	handlers "github.com/oksasatya/go-ddd-event-hub/internal/interface/http"
	"github.com/oksasatya/go-ddd-event-hub/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
)

// FavoriteModule wires the caller's favorites. Every route is protected.
type FavoriteModule struct {
	Handler *handlers.FavoriteHandler
	Gate    *auth.Gate
	Metrics metrics.Recorder
}

func NewFavoriteModule(h *handlers.FavoriteHandler, gate *auth.Gate, rec metrics.Recorder) *FavoriteModule {
	return &FavoriteModule{Handler: h, Gate: gate, Metrics: rec}
}

func (m *FavoriteModule) Register(rg *gin.RouterGroup) {
	favs := rg.Group("/favorites")
	favs.Use(middleware.RequireAuth(m.Gate, m.Metrics))
	{
		favs.GET("", m.Handler.List)
		favs.POST("/:eventId", m.Handler.Add)
		favs.DELETE("/:favoriteId", m.Handler.Remove)
	}
}
