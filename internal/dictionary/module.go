package dictionary

import (
	apphttp "corralon_backend/internal/http"
	"corralon_backend/platform/validator"
)

// Module wires the admin dictionary routes.
type Module struct {
	handler *Handler
}

func NewModule(store *Store, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(store, val)}
}

func (m *Module) Name() string {
	return "dictionary"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/dictionary")
	group.GET("", m.handler.List)
	group.PUT("/synonyms", m.handler.PutSynonym)
	group.DELETE("/synonyms/:from", m.handler.DeleteSynonym)
	group.PUT("/phrases", m.handler.PutPhrase)
	group.DELETE("/phrases/:phrase", m.handler.DeletePhrase)
	group.POST("/reload", m.handler.Reload)
}

var _ apphttp.Module = (*Module)(nil)
