package handler

import (
	"net/http"

	"corralon_backend/internal/quotes/service"
	"corralon_backend/internal/quotes/transport"
	"corralon_backend/platform/httpkit"
	"corralon_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles admin HTTP requests for stored quotes
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new quotes handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the quote routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:number", h.GetByNumber)
	rg.GET("/:number/pdf", h.DownloadPDF)
}

// List returns stored quotes, newest first
func (h *Handler) List(c *gin.Context) {
	var req transport.ListQuotesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByNumber returns one quote with its lines and a presigned download URL
func (h *Handler) GetByNumber(c *gin.Context) {
	result, err := h.svc.GetByNumber(c.Request.Context(), c.Param("number"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DownloadPDF redirects to the stored document
func (h *Handler) DownloadPDF(c *gin.Context) {
	result, err := h.svc.GetByNumber(c.Request.Context(), c.Param("number"))
	if httpkit.HandleError(c, err) {
		return
	}
	if result.DownloadURL == "" {
		httpkit.Error(c, http.StatusNotFound, "document not stored", nil)
		return
	}
	c.Redirect(http.StatusFound, result.DownloadURL)
}
