package handlers

import (
	"net/http"

	"archive-twin/internal/services"
	"archive-twin/utils"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService services.IStatsService
}

func NewStatsHandler(statsService services.IStatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	stats := router.Group("/stats", auth)
	stats.GET("/temperature/", h.fieldStats("temperature"))
	stats.GET("/humidity/", h.fieldStats("humidity"))
	stats.GET("/environmental/", h.GetEnvironmentalStats)

	stats.GET("/temperature/last-hour/", h.lastHourAverage("temperature"))
	stats.GET("/temperature/last-hour/min/", h.lastHourMin("temperature"))
	stats.GET("/temperature/last-hour/max/", h.lastHourMax("temperature"))
	stats.GET("/temperature/last-hour/stats/", h.lastHourStats("temperature"))

	stats.GET("/humidity/last-hour/", h.lastHourAverage("humidity"))
	stats.GET("/humidity/last-hour/min/", h.lastHourMin("humidity"))
	stats.GET("/humidity/last-hour/max/", h.lastHourMax("humidity"))
	stats.GET("/humidity/last-hour/stats/", h.lastHourStats("humidity"))
}

func (h *StatsHandler) fieldStats(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, ok := queryTime(c, "start_time")
		if !ok {
			return
		}
		end, ok := queryTime(c, "end_time")
		if !ok {
			return
		}
		locations := c.QueryArray("locations")

		stats, err := h.statsService.GetFieldStats(c.Request.Context(), field, start, end, locations)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, utils.CreateSuccessResponse(stats))
	}
}

func (h *StatsHandler) GetEnvironmentalStats(c *gin.Context) {
	start, ok := queryTime(c, "start_time")
	if !ok {
		return
	}
	end, ok := queryTime(c, "end_time")
	if !ok {
		return
	}

	stats, err := h.statsService.GetEnvironmentalStats(c.Request.Context(), start, end, c.QueryArray("locations"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(stats))
}

func (h *StatsHandler) lastHourAverage(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.statsService.GetAverageLastHour(c.Request.Context(), field)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
	}
}

func (h *StatsHandler) lastHourMin(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.statsService.GetMinLastHour(c.Request.Context(), field)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
	}
}

func (h *StatsHandler) lastHourMax(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.statsService.GetMaxLastHour(c.Request.Context(), field)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
	}
}

func (h *StatsHandler) lastHourStats(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.statsService.GetStatsLastHour(c.Request.Context(), field)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
	}
}
