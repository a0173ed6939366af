package inbound

import (
	apphttp "corralon_backend/internal/http"
	"corralon_backend/platform/logger"
	"corralon_backend/platform/validator"
)

// Module is the inbound bounded context module implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
	secret  string
}

// NewModule wires the service and the webhook handler.
func NewModule(deps Deps, webhookSecret string, val *validator.Validator, log *logger.Logger) *Module {
	service := New(deps, log)
	return &Module{
		service: service,
		handler: NewHandler(service, val),
		secret:  webhookSecret,
	}
}

// Service returns the inbound service.
func (m *Module) Service() *Service {
	return m.service
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "inbound"
}

// RegisterRoutes mounts the gateway webhook.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	hooks := ctx.V1.Group("/webhooks")
	hooks.Use(SignatureMiddleware(m.secret))
	hooks.POST("/whatsapp", m.handler.HandleWhatsApp)
}

var _ apphttp.Module = (*Module)(nil)
