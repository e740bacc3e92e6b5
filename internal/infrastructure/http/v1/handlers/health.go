package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smeerp/internal/infrastructure/storage/postgres"
	"smeerp/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger checks database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the probes outside /api. Nothing here needs a token.
type HealthHandler struct {
	db      Pinger
	pool    *postgres.Pool
	version string
}

func NewHealthHandler(pool *postgres.Pool, version string) *HealthHandler {
	h := &HealthHandler{pool: pool, version: version}
	if pool != nil {
		h.db = pool
	}
	return h
}

// Live answers as long as the process serves HTTP.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings the database. The driver error is logged, not returned.
func (h *HealthHandler) Ready(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			logger.Warn(c.Request.Context(), "readiness check failed", "check", "database", "error", err)
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
	}

	overall := "ok"
	if code != http.StatusOK {
		overall = "error"
	}
	c.JSON(code, gin.H{"status": overall, "checks": gin.H{"database": status}})
}

// Info reports the build version and connection pool usage.
func (h *HealthHandler) Info(c *gin.Context) {
	info := gin.H{"app": "smeerp", "version": h.version}
	if h.pool != nil {
		s := h.pool.Stats()
		info["database"] = gin.H{
			"total_conns":    s.TotalConns,
			"acquired_conns": s.AcquiredConns,
			"idle_conns":     s.IdleConns,
			"max_conns":      s.MaxConns,
			"acquire_count":  s.AcquireCount,
		}
	}
	c.JSON(http.StatusOK, info)
}
