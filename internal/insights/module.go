package insights

import (
	apphttp "corralon_backend/internal/http"
	"corralon_backend/platform/validator"
)

// Module wires the admin insight routes.
type Module struct {
	handler *Handler
}

func NewModule(rec *Recorder, cat CatalogSource, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(rec, cat, val)}
}

func (m *Module) Name() string {
	return "insights"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/insights")
	group.GET("/unknown", m.handler.ListUnknown)
	group.GET("/unknown/tally", m.handler.TallyUnknown)
	group.GET("/not-found", m.handler.ListNotFound)
	group.GET("/not-found/tally", m.handler.TallyNotFound)
	group.GET("/suggestions", m.handler.Suggestions)
	group.POST("/cleanup", m.handler.Cleanup)
	group.DELETE("", m.handler.Clear)
}

var _ apphttp.Module = (*Module)(nil)
