// Package quotes stores finalized quotes and serves them to the back office.
package quotes

import (
	"corralon_backend/internal/adapters/storage"
	"corralon_backend/internal/events"
	apphttp "corralon_backend/internal/http"
	"corralon_backend/internal/quotes/handler"
	"corralon_backend/internal/quotes/repository"
	"corralon_backend/internal/quotes/service"
	"corralon_backend/platform/logger"
	"corralon_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quotes module with all dependencies wired.
// pool and store may be nil when the database or object storage is not configured.
func NewModule(pool *pgxpool.Pool, store storage.DocumentStore, eventBus events.Bus, settings service.Settings, val *validator.Validator, log *logger.Logger) *Module {
	var repo service.Repository
	if pool != nil {
		repo = repository.New(pool)
	}
	svc := service.New(repo, store, eventBus, settings, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/quotes"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
