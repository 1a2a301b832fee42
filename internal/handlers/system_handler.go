package handlers

import (
	"net/http"

	"archive-twin/internal/services"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	healthService services.IHealthService
}

func NewSystemHandler(healthService services.IHealthService) *SystemHandler {
	return &SystemHandler{healthService: healthService}
}

// RegisterRoutes wires the health probe behind the same API key check
// as every other route.
func (h *SystemHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	router.GET("/system/health/", auth, h.GetSystemHealth)
}

func (h *SystemHandler) GetSystemHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.healthService.GetSystemHealth(c.Request.Context()))
}
