package handlers

import (
	"net/http"

	"archive-twin/internal/services"
	"archive-twin/utils"

	"github.com/gin-gonic/gin"
)

type InsightHandler struct {
	insightService services.IInsightService
}

func NewInsightHandler(insightService services.IInsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

func (h *InsightHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	insights := router.Group("/insights", auth)
	insights.GET("/climate-analysis", h.GetClimateAnalysis)
	insights.GET("/preservation-risk", h.GetPreservationRisk)
	insights.GET("/recommendations", h.GetActionableRecommendations)
}

func (h *InsightHandler) GetClimateAnalysis(c *gin.Context) {
	result, err := h.insightService.GetClimateInsights(
		c.Request.Context(),
		c.DefaultQuery("parameter", "temperature"),
		c.DefaultQuery("period", "day"),
		c.DefaultQuery("location", "all"),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
}

func (h *InsightHandler) GetPreservationRisk(c *gin.Context) {
	result, err := h.insightService.GetPreservationRisk(c.Request.Context(), c.DefaultQuery("location", "all"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
}

func (h *InsightHandler) GetActionableRecommendations(c *gin.Context) {
	result, err := h.insightService.GetActionableRecommendations(
		c.Request.Context(),
		c.DefaultQuery("parameter", "temperature"),
		c.DefaultQuery("location", "all"),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
}
