package router

import "github.com/gin-gonic/gin"

// Module describes a feature module that registers its routes under /api.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// RootModule is mounted on the engine itself, outside /api and its
// middleware. Operational endpoints such as /metrics use it.
type RootModule interface {
	Mount(e *gin.Engine)
}
