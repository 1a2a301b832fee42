package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"archive-twin/internal/database/influxdb"
	"archive-twin/internal/services"
	"archive-twin/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps service failures onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, influxdb.ErrNotReady):
		c.JSON(http.StatusServiceUnavailable,
			utils.CreateErrorResponse(utils.CodeServiceUnavailable, "Time-series database is not reachable"))
	case errors.Is(err, services.ErrRoomNotFound):
		c.JSON(http.StatusNotFound,
			utils.CreateErrorResponse(utils.CodeNotFound, err.Error()))
	case errors.Is(err, services.ErrInvalidInsightParameter),
		errors.Is(err, services.ErrInvalidInsightPeriod),
		errors.Is(err, services.ErrInvalidAggregation):
		c.JSON(http.StatusBadRequest,
			utils.CreateErrorResponse(utils.CodeBadRequest, err.Error()))
	default:
		// Store and upstream failures carry hosts and tokens; keep
		// them in the log, not the response body.
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError,
			utils.CreateErrorResponse(utils.CodeInternalError, "An unexpected error occurred"))
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, utils.CreateErrorResponse(utils.CodeBadRequest, message))
}

// queryTime parses an optional RFC3339 query value.
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		badRequest(c, name+" must be RFC3339 formatted")
		return nil, false
	}
	return &t, true
}

// queryInt parses an optional integer query value within [min, max].
func queryInt(c *gin.Context, name string, def, min, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		badRequest(c, name+" must be an integer between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
		return 0, false
	}
	return n, true
}

// queryParameter validates the climate parameter query value.
func queryParameter(c *gin.Context) (string, bool) {
	parameter := c.DefaultQuery("parameter", "temperature")
	if parameter != "temperature" && parameter != "humidity" {
		badRequest(c, "parameter must be 'temperature' or 'humidity'")
		return "", false
	}
	return parameter, true
}
