package insights

import (
	"context"
	"net/http"
	"time"

	"corralon_backend/internal/catalog"
	"corralon_backend/platform/httpkit"
	"corralon_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	defaultListLimit = 200
	msgInvalidQuery  = "invalid query"
)

// CatalogSource supplies the titles suggestions are ranked against.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
}

// ListRequest bounds a listing.
type ListRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=2000"`
}

// CleanupRequest drops entries older than OlderThanDays.
type CleanupRequest struct {
	OlderThanDays int `json:"olderThanDays" validate:"required,min=1,max=3650"`
}

// Handler exposes the admin insight endpoints.
type Handler struct {
	rec     *Recorder
	catalog CatalogSource
	val     *validator.Validator
}

func NewHandler(rec *Recorder, cat CatalogSource, val *validator.Validator) *Handler {
	return &Handler{rec: rec, catalog: cat, val: val}
}

func (h *Handler) limit(c *gin.Context) (int, bool) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidQuery, nil)
		return 0, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidQuery, err.Error())
		return 0, false
	}
	if req.Limit == 0 {
		req.Limit = defaultListLimit
	}
	return req.Limit, true
}

// ListUnknown handles GET /api/v1/admin/insights/unknown
func (h *Handler) ListUnknown(c *gin.Context) {
	limit, ok := h.limit(c)
	if !ok {
		return
	}
	rows, err := h.rec.Unknowns(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": rows})
}

// ListNotFound handles GET /api/v1/admin/insights/not-found
func (h *Handler) ListNotFound(c *gin.Context) {
	limit, ok := h.limit(c)
	if !ok {
		return
	}
	rows, err := h.rec.NotFounds(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": rows})
}

// TallyUnknown handles GET /api/v1/admin/insights/unknown/tally
func (h *Handler) TallyUnknown(c *gin.Context) {
	limit, ok := h.limit(c)
	if !ok {
		return
	}
	rows, err := h.rec.UnknownTally(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": rows})
}

// TallyNotFound handles GET /api/v1/admin/insights/not-found/tally
func (h *Handler) TallyNotFound(c *gin.Context) {
	limit, ok := h.limit(c)
	if !ok {
		return
	}
	rows, err := h.rec.NotFoundTally(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": rows})
}

// Suggestions handles GET /api/v1/admin/insights/suggestions
func (h *Handler) Suggestions(c *gin.Context) {
	ctx := c.Request.Context()
	unknown, err := h.rec.Unknowns(ctx, MaxEntries)
	if httpkit.HandleError(c, err) {
		return
	}
	notFound, err := h.rec.NotFounds(ctx, MaxEntries)
	if httpkit.HandleError(c, err) {
		return
	}
	snap, err := h.catalog.Snapshot(ctx)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, Suggest(unknown, notFound, snap))
}

// Cleanup handles POST /api/v1/admin/insights/cleanup
func (h *Handler) Cleanup(c *gin.Context) {
	var req CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	removed, err := h.rec.CleanupOlderThan(c.Request.Context(), time.Duration(req.OlderThanDays)*24*time.Hour)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, removed)
}

// Clear handles DELETE /api/v1/admin/insights
func (h *Handler) Clear(c *gin.Context) {
	if httpkit.HandleError(c, h.rec.Clear(c.Request.Context())) {
		return
	}
	c.Status(http.StatusNoContent)
}
