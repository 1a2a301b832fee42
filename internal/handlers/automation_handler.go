package handlers

import (
	"errors"
	"net/http"

	"archive-twin/internal/models"
	"archive-twin/internal/services"
	"archive-twin/utils"

	"github.com/gin-gonic/gin"
)

type AutomationHandler struct {
	automationService services.IAutomationService
}

func NewAutomationHandler(automationService services.IAutomationService) *AutomationHandler {
	return &AutomationHandler{automationService: automationService}
}

func (h *AutomationHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	automation := router.Group("/automation", auth)
	automation.GET("/settings", h.GetSettings)
	automation.PUT("/settings", h.UpdateSettings)
}

func (h *AutomationHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(h.automationService.Get()))
}

func (h *AutomationHandler) UpdateSettings(c *gin.Context) {
	var settings models.AutomationSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		badRequest(c, "invalid settings payload: "+err.Error())
		return
	}

	updated, err := h.automationService.Update(c.Request.Context(), settings)
	if err != nil {
		if errors.Is(err, models.ErrInvalidSettings) {
			badRequest(c, err.Error())
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(updated))
}
