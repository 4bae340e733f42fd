// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"quickinvoice/internal/infrastructure/storage/postgres"
)

// Database is the readiness view of the connection pool. Satisfied by *postgres.Pool.
type Database interface {
	Ping(ctx context.Context) error
	Stats() postgres.PoolStats
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	driver  string
	version string
	db      Database
}

// NewHealthHandler creates a health handler. db is nil for the memory driver.
func NewHealthHandler(driver, version string, db Database) *HealthHandler {
	return &HealthHandler{driver: driver, version: version, db: db}
}

// Live reports whether the process is up.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready reports whether the service can accept traffic.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"checks": map[string]string{"storage": h.driver},
		})
		return
	}

	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"database": "unhealthy: " + err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"database": "healthy",
		},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	body := gin.H{
		"app":     "quickinvoice",
		"version": h.version,
		"storage": h.driver,
	}
	if h.db != nil {
		body["database"] = h.db.Stats()
	}
	c.JSON(http.StatusOK, body)
}
