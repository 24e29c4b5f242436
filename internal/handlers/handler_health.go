package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_service/internal/core/ports/services"
	"github.com/SscSPs/ledger_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// registerHealthRoutes registers the liveness and readiness probes.
func registerHealthRoutes(r *gin.Engine, readiness portssvc.ReadinessSvc) {
	r.GET("/health", getHealth)
	r.GET("/ready", func(c *gin.Context) { getReady(c, readiness) })
}

// getHealth godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getReady godoc
// @Summary Readiness probe
// @Description Reports whether the ledger storage is reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /ready [get]
func getReady(c *gin.Context, readiness portssvc.ReadinessSvc) {
	if err := readiness.Ready(c.Request.Context()); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Readiness check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
