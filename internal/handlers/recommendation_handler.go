package handlers

import (
	"net/http"

	"archive-twin/internal/services"
	"archive-twin/utils"

	"github.com/gin-gonic/gin"
)

type RecommendationHandler struct {
	recommendationService services.IRecommendationService
}

func NewRecommendationHandler(recommendationService services.IRecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

func (h *RecommendationHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	recommendations := router.Group("/recommendations", auth)
	recommendations.GET("/proactive", h.GetProactiveRecommendations)
	recommendations.GET("/:room_id", h.GetRoomRecommendations)
}

func (h *RecommendationHandler) GetProactiveRecommendations(c *gin.Context) {
	result, err := h.recommendationService.GetProactiveRecommendations(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
}

func (h *RecommendationHandler) GetRoomRecommendations(c *gin.Context) {
	result, err := h.recommendationService.GetRoomRecommendations(c.Request.Context(), c.Param("room_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
}
