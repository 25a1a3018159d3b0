package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapsrun/invoker"
	"github.com/use-agent/mapsrun/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Status is "degraded" until the scraper binary exists and is executable;
// a running action does not degrade it.
func Health(iv *invoker.Invoker, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := iv.Stats()

		status := "healthy"
		if !stats.BinaryExists || !stats.Executable {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:      status,
			Uptime:      time.Since(startTime).Round(time.Second).String(),
			InvokerStat: stats,
			Version:     Version,
		})
	}
}
