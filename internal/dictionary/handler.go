package dictionary

import (
	"net/http"

	"corralon_backend/internal/intent"
	"corralon_backend/platform/httpkit"
	"corralon_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// SynonymRequest rewrites From into To during normalization.
type SynonymRequest struct {
	From string `json:"from" validate:"required,max=100"`
	To   string `json:"to" validate:"required,max=100"`
}

// PhraseRequest attaches Phrase to a navigation intent.
type PhraseRequest struct {
	Intent string `json:"intent" validate:"required,max=32"`
	Phrase string `json:"phrase" validate:"required,max=200"`
}

// Handler exposes the admin dictionary endpoints. Edits take effect after
// a reload.
type Handler struct {
	store *Store
	val   *validator.Validator
}

func NewHandler(store *Store, val *validator.Validator) *Handler {
	return &Handler{store: store, val: val}
}

// List handles GET /api/v1/admin/dictionary
func (h *Handler) List(c *gin.Context) {
	entries, err := h.store.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"entries": entries, "loadedVersion": h.store.Version()})
}

// PutSynonym handles PUT /api/v1/admin/dictionary/synonyms
func (h *Handler) PutSynonym(c *gin.Context) {
	var req SynonymRequest
	if !h.bind(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.store.PutSynonym(c.Request.Context(), req.From, req.To)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteSynonym handles DELETE /api/v1/admin/dictionary/synonyms/:from
func (h *Handler) DeleteSynonym(c *gin.Context) {
	if httpkit.HandleError(c, h.store.DeleteSynonym(c.Request.Context(), c.Param("from"))) {
		return
	}
	c.Status(http.StatusNoContent)
}

// PutPhrase handles PUT /api/v1/admin/dictionary/phrases
func (h *Handler) PutPhrase(c *gin.Context) {
	var req PhraseRequest
	if !h.bind(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.store.PutPhrase(c.Request.Context(), intent.Kind(req.Intent), req.Phrase)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// DeletePhrase handles DELETE /api/v1/admin/dictionary/phrases/:phrase
func (h *Handler) DeletePhrase(c *gin.Context) {
	if httpkit.HandleError(c, h.store.DeletePhrase(c.Request.Context(), c.Param("phrase"))) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Reload handles POST /api/v1/admin/dictionary/reload
func (h *Handler) Reload(c *gin.Context) {
	if httpkit.HandleError(c, h.store.Reload(c.Request.Context())) {
		return
	}
	httpkit.OK(c, gin.H{"version": h.store.Version()})
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}
