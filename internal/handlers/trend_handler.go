package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"archive-twin/internal/services"
	"archive-twin/utils"

	"github.com/gin-gonic/gin"
)

type TrendHandler struct {
	trendService services.ITrendService
}

func NewTrendHandler(trendService services.ITrendService) *TrendHandler {
	return &TrendHandler{trendService: trendService}
}

func (h *TrendHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	trends := router.Group("/data/trends", auth)
	trends.GET("", h.GetTrends)
	trends.GET("/hourly", h.GetHourlyTrend)
	trends.GET("/daily", h.GetDailyTrend)
	trends.GET("/monthly", h.GetMonthlyTrend)
	trends.GET("/compare", h.GetComparativeTrend)
	trends.GET("/summary", h.GetTrendSummary)
}

// GetTrends is the period-driven entry point: day maps to hourly
// analysis, week and month to daily analysis over longer windows.
func (h *TrendHandler) GetTrends(c *gin.Context) {
	parameter, ok := queryParameter(c)
	if !ok {
		return
	}
	location := c.DefaultQuery("location", "all")

	var (
		resp services.TrendResponse
		err  error
	)
	switch c.DefaultQuery("period", "day") {
	case "day":
		resp, err = h.trendService.GetHourlyTrend(c.Request.Context(), parameter, location, 24)
	case "week":
		resp, err = h.trendService.GetDailyTrend(c.Request.Context(), parameter, location, 7)
	case "month":
		resp, err = h.trendService.GetMonthlyTrend(c.Request.Context(), parameter, location, 30)
	default:
		badRequest(c, "period must be 'day', 'week' or 'month'")
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(resp))
}

func (h *TrendHandler) GetHourlyTrend(c *gin.Context) {
	parameter, ok := queryParameter(c)
	if !ok {
		return
	}
	hours, ok := queryInt(c, "hours", 24, 1, 168)
	if !ok {
		return
	}

	resp, err := h.trendService.GetHourlyTrend(c.Request.Context(), parameter, c.DefaultQuery("location", "all"), hours)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(resp))
}

func (h *TrendHandler) GetDailyTrend(c *gin.Context) {
	parameter, ok := queryParameter(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", 7, 1, 90)
	if !ok {
		return
	}

	resp, err := h.trendService.GetDailyTrend(c.Request.Context(), parameter, c.DefaultQuery("location", "all"), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(resp))
}

func (h *TrendHandler) GetMonthlyTrend(c *gin.Context) {
	parameter, ok := queryParameter(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", 30, 7, 365)
	if !ok {
		return
	}

	resp, err := h.trendService.GetMonthlyTrend(c.Request.Context(), parameter, c.DefaultQuery("location", "all"), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(resp))
}

func (h *TrendHandler) GetComparativeTrend(c *gin.Context) {
	parameter, ok := queryParameter(c)
	if !ok {
		return
	}
	days, err := parsePeriodDays(c.DefaultQuery("current_period", "7d"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.trendService.GetComparativeTrend(c.Request.Context(), parameter, c.DefaultQuery("location", "all"), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(resp))
}

// parsePeriodDays reads "7d"-style window sizes.
func parsePeriodDays(period string) (int, error) {
	raw := strings.TrimSuffix(period, "d")
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > 90 {
		return 0, fmt.Errorf("current_period must be between 1d and 90d, got %q", period)
	}
	return days, nil
}

func (h *TrendHandler) GetTrendSummary(c *gin.Context) {
	summary, err := h.trendService.GetTrendSummary(c.Request.Context(), c.DefaultQuery("location", "all"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(summary))
}
