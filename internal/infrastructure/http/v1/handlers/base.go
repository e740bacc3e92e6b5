// Package handlers maps the v1 routes onto the domain services. Handlers
// never render errors themselves: they hand them to middleware.ErrorHandler.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
	"smeerp/internal/infrastructure/metrics"
)

// BaseHandler is embedded by every handler. metrics may be nil.
type BaseHandler struct {
	metrics *metrics.Metrics
}

func NewBaseHandler(m *metrics.Metrics) *BaseHandler {
	return &BaseHandler{metrics: m}
}

// BindJSON binds the body and runs its binding tags; false means the
// request was already answered with a 400.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// ParseID reads the :id path parameter.
func (h *BaseHandler) ParseID(c *gin.Context) (id.ID, bool) {
	raw := c.Param("id")
	parsed, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("id", raw))
		return id.ID{}, false
	}
	return parsed, true
}

// LimitQuery reads ?limit=, defaulting to def and capped at maxLimit.
func (h *BaseHandler) LimitQuery(c *gin.Context, def, maxLimit int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		h.Error(c, apperror.NewValidation("limit must be a positive integer").WithDetail("limit", raw))
		return 0, false
	}
	return min(n, maxLimit), true
}

// Error records err for ErrorHandler and aborts the chain.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Transitioned counts a successful document action, then sends data.
func (h *BaseHandler) Transitioned(c *gin.Context, document, action string, data any) {
	if h.metrics != nil {
		h.metrics.DocumentTransitions.WithLabelValues(document, action).Inc()
	}
	h.OK(c, data)
}
