package handlers

import (
	"net/http"

	"archive-twin/internal/services"
	"archive-twin/utils"

	"github.com/gin-gonic/gin"
)

type DataHandler struct {
	dataService   services.IDataService
	healthService services.IHealthService
}

func NewDataHandler(dataService services.IDataService, healthService services.IHealthService) *DataHandler {
	return &DataHandler{dataService: dataService, healthService: healthService}
}

func (h *DataHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	router.GET("/data/", auth, h.GetSensorData)

	devices := router.Group("/devices", auth)
	devices.GET("/", h.GetDevices)
	devices.GET("/status/", h.GetDeviceStatuses)
	devices.GET("/:device_id/history/", h.GetDeviceHistory)

	router.GET("/external/bmkg/latest", auth, h.GetLatestForecast)
}

func (h *DataHandler) GetSensorData(c *gin.Context) {
	start, ok := queryTime(c, "start_time")
	if !ok {
		return
	}
	end, ok := queryTime(c, "end_time")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 100, 1, 1000)
	if !ok {
		return
	}

	query := services.SensorDataQuery{
		Start:             start,
		End:               end,
		DeviceIDs:         c.QueryArray("device_ids"),
		Locations:         c.QueryArray("locations"),
		Fields:            c.QueryArray("fields"),
		Limit:             limit,
		Measurement:       c.DefaultQuery("measurement_name", "sensor_reading"),
		AggregateWindow:   c.Query("aggregate_window"),
		AggregateFunction: c.Query("aggregate_function"),
	}

	records, err := h.dataService.GetSensorData(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(records))
}

func (h *DataHandler) GetDevices(c *gin.Context) {
	devices, err := h.dataService.GetUniqueDevices(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(devices))
}

func (h *DataHandler) GetDeviceStatuses(c *gin.Context) {
	statuses, err := h.healthService.GetDeviceStatuses(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(statuses))
}

func (h *DataHandler) GetDeviceHistory(c *gin.Context) {
	hours, ok := queryInt(c, "hours", 24, 1, 168)
	if !ok {
		return
	}

	history, err := h.dataService.GetDeviceHistory(c.Request.Context(), c.Param("device_id"), hours)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(history))
}

func (h *DataHandler) GetLatestForecast(c *gin.Context) {
	points, err := h.dataService.GetLatestForecast(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(points))
}
