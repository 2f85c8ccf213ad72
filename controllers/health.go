package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthController represents a controller for health check endpoints
type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

// Health handles the health check endpoint and returns a 200 OK response
// indicating the service is up
func (ctrl HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
