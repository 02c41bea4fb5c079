package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oksasatya/go-ddd-event-hub/internal/metrics"
)

// MetricsModule exposes the Prometheus registry on the engine root, outside
// /api and its middleware.
type MetricsModule struct {
	Gatherer prometheus.Gatherer
}

func NewMetricsModule(g prometheus.Gatherer) *MetricsModule {
	return &MetricsModule{Gatherer: g}
}

func (m *MetricsModule) Mount(e *gin.Engine) {
	e.GET("/metrics", gin.WrapH(metrics.Handler(m.Gatherer)))
}
