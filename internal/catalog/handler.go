package catalog

import (
	"context"
	"net/http"
	"time"

	"corralon_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// RefreshEnqueuer hands a refresh to the background worker.
type RefreshEnqueuer interface {
	EnqueueCatalogRefresh(ctx context.Context, reason string) error
}

// StatusResponse describes the snapshot currently served.
type StatusResponse struct {
	Items     int       `json:"items"`
	Variants  int       `json:"variants"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Handler exposes the admin catalog endpoints.
type Handler struct {
	cache    *Cache
	enqueuer RefreshEnqueuer
}

func NewHandler(cache *Cache, enqueuer RefreshEnqueuer) *Handler {
	return &Handler{cache: cache, enqueuer: enqueuer}
}

// Status handles GET /api/v1/admin/catalog
func (h *Handler) Status(c *gin.Context) {
	snap, err := h.cache.Snapshot(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, statusOf(snap))
}

// Refresh handles POST /api/v1/admin/catalog/refresh. With a worker
// available the refresh is queued; otherwise it runs inline.
func (h *Handler) Refresh(c *gin.Context) {
	if h.enqueuer != nil {
		if err := h.enqueuer.EnqueueCatalogRefresh(c.Request.Context(), "admin"); err != nil {
			httpkit.Error(c, http.StatusBadGateway, "failed to queue catalog refresh", nil)
			return
		}
		httpkit.JSON(c, http.StatusAccepted, gin.H{"status": "queued"})
		return
	}

	snap, err := h.cache.Refresh(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, statusOf(snap))
}

func statusOf(snap *Snapshot) StatusResponse {
	resp := StatusResponse{Items: snap.Len()}
	if snap == nil {
		return resp
	}
	resp.FetchedAt = snap.FetchedAt
	for _, it := range snap.Items {
		resp.Variants += len(it.Variants)
	}
	return resp
}
