package catalog

import (
	apphttp "corralon_backend/internal/http"
)

// Module wires the admin catalog routes.
type Module struct {
	handler *Handler
}

// NewModule creates the module. enqueuer may be nil.
func NewModule(cache *Cache, enqueuer RefreshEnqueuer) *Module {
	return &Module{handler: NewHandler(cache, enqueuer)}
}

func (m *Module) Name() string {
	return "catalog"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/catalog")
	group.GET("", m.handler.Status)
	group.POST("/refresh", m.handler.Refresh)
}

var _ apphttp.Module = (*Module)(nil)
