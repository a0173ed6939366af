// Package http holds the contract between the router and the feature modules.
package http

import (
	"corralon_backend/platform/config"
	"corralon_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a feature package that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is what the router hands every module.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is /api/v1 without authentication; webhooks verify their own signature.
	V1 *gin.RouterGroup
	// Admin is /api/v1/admin behind the bearer token check.
	Admin           *gin.RouterGroup
	Config          config.JWTConfig
	AuthRateLimiter *httpkit.KeyedRateLimiter
}
