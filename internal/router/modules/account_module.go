package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-event-hub/internal/auth"
	handlers "github.com/oksasatya/go-ddd-event-hub/internal/interface/http"
	"github.com/oksasatya/go-ddd-event-hub/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
)

// AccountModule wires account routes:
// Public: POST /api/accounts (optional auth), POST /api/accounts/login
// Protected: GET /api/accounts, GET|PUT|DELETE /api/accounts/:id
type AccountModule struct {
	Handler *handlers.AccountHandler
	Gate    *auth.Gate
	Metrics metrics.Recorder
}

func NewAccountModule(h *handlers.AccountHandler, gate *auth.Gate, rec metrics.Recorder) *AccountModule {
	return &AccountModule{Handler: h, Gate: gate, Metrics: rec}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")

	accounts.POST("", middleware.OptionalAuth(m.Gate), m.Handler.Register)
	accounts.POST("/login", m.Handler.Login)

	protected := accounts.Group("")
	protected.Use(middleware.RequireAuth(m.Gate, m.Metrics))
	{
		protected.GET("", m.Handler.List)
		protected.GET("/:id", m.Handler.Get)
		protected.PUT("/:id", m.Handler.Update)
		protected.DELETE("/:id", m.Handler.Delete)
	}
}
