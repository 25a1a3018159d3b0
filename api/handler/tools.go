package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/mapsrun/models"
	"github.com/use-agent/mapsrun/runner"
)

// Build returns a handler for POST /api/v1/build.
func Build(rn *runner.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := rn.Build(c.Request.Context())
		c.JSON(toolStatus(resp), resp)
	}
}

// MakeExecutable returns a handler for POST /api/v1/make-executable.
func MakeExecutable(rn *runner.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := rn.MakeExecutable(c.Request.Context())
		c.JSON(toolStatus(resp), resp)
	}
}

func toolStatus(resp *models.ToolResponse) int {
	if resp.Success || resp.Error == nil {
		return http.StatusOK
	}
	return mapErrorToStatus(resp.Error.Code)
}
