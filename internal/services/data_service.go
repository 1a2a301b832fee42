package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"archive-twin/internal/fluxqueries"
	"archive-twin/internal/models"
)

// ErrInvalidAggregation marks caller mistakes in the aggregation
// options. The HTTP layer maps it to 400.
var ErrInvalidAggregation = errors.New("invalid aggregation options")

const (
	defaultDataLimit = 100
	maxDataLimit     = 1000
)

// SensorDataQuery carries the /data query options after HTTP binding.
type SensorDataQuery struct {
	Start             *time.Time
	End               *time.Time
	DeviceIDs         []string
	Locations         []string
	Fields            []string
	Limit             int
	Measurement       string
	AggregateWindow   string
	AggregateFunction string
}

// DeviceInfo identifies one logger that reported recently.
type DeviceInfo struct {
	DeviceID string `json:"device_id"`
	Location string `json:"location"`
}

// DeviceHistoryPoint is one hourly sample of a logger's history.
type DeviceHistoryPoint struct {
	Time  time.Time `json:"time"`
	Field string    `json:"field"`
	Value float64   `json:"value"`
}

type DeviceHistoryResponse struct {
	DeviceID   string               `json:"device_id"`
	Period     string               `json:"period"`
	History    []DeviceHistoryPoint `json:"history"`
	DataPoints int                  `json:"data_points"`
}

type IDataService interface {
	GetSensorData(ctx context.Context, q SensorDataQuery) ([]map[string]interface{}, error)
	GetUniqueDevices(ctx context.Context) ([]DeviceInfo, error)
	GetDeviceHistory(ctx context.Context, deviceID string, hours int) (DeviceHistoryResponse, error)
	GetLatestForecast(ctx context.Context) ([]models.ForecastPoint, error)
}

type dataService struct {
	db           Database
	sensorBucket string
	bmkgBucket   string
	kodeWilayah  string
}

func NewDataService(db Database, sensorBucket, bmkgBucket, kodeWilayah string) IDataService {
	return &dataService{
		db:           db,
		sensorBucket: sensorBucket,
		bmkgBucket:   bmkgBucket,
		kodeWilayah:  kodeWilayah,
	}
}

func (s *dataService) GetSensorData(ctx context.Context, q SensorDataQuery) ([]map[string]interface{}, error) {
	if q.Limit <= 0 {
		q.Limit = defaultDataLimit
	}
	if q.Limit > maxDataLimit {
		q.Limit = maxDataLimit
	}
	if q.Measurement == "" {
		q.Measurement = "sensor_reading"
	}

	aggregation, err := fluxqueries.AggregationClause(q.AggregateWindow, q.AggregateFunction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAggregation, err)
	}

	flux := fluxqueries.SensorData(
		s.sensorBucket,
		fluxqueries.RangeFilter(q.Start, q.End),
		buildFilterExpression(q),
		aggregation,
		q.Limit,
	)
	records, err := s.db.QueryRecords(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("query sensor data: %w", err)
	}
	if records == nil {
		records = []map[string]interface{}{}
	}
	return records, nil
}

// buildFilterExpression renders the Flux predicate from the requested
// measurement, devices, locations and fields. Without explicit fields
// only the two climate fields are returned.
func buildFilterExpression(q SensorDataQuery) string {
	filters := []string{fmt.Sprintf(`r._measurement == "%s"`, fluxqueries.Escape(q.Measurement))}

	if len(q.DeviceIDs) > 0 {
		parts := make([]string, 0, len(q.DeviceIDs))
		for _, id := range q.DeviceIDs {
			parts = append(parts, fmt.Sprintf(`r.device_id == "%s"`, fluxqueries.Escape(id)))
		}
		filters = append(filters, "("+strings.Join(parts, " or ")+")")
	}
	if len(q.Locations) > 0 {
		parts := make([]string, 0, len(q.Locations))
		for _, loc := range q.Locations {
			parts = append(parts, fmt.Sprintf(`r.location == "%s"`, fluxqueries.Escape(loc)))
		}
		filters = append(filters, "("+strings.Join(parts, " or ")+")")
	}
	if len(q.Fields) > 0 {
		parts := make([]string, 0, len(q.Fields))
		for _, field := range q.Fields {
			parts = append(parts, fmt.Sprintf(`r._field == "%s"`, fluxqueries.Escape(field)))
		}
		filters = append(filters, "("+strings.Join(parts, " or ")+")")
	} else {
		filters = append(filters, `(r._field == "temperature" or r._field == "humidity")`)
	}

	return strings.Join(filters, " and ")
}

func (s *dataService) GetUniqueDevices(ctx context.Context) ([]DeviceInfo, error) {
	records, err := s.db.QueryRecords(ctx, fluxqueries.UniqueDevices(s.sensorBucket, "-24h"))
	if err != nil {
		return nil, fmt.Errorf("query unique devices: %w", err)
	}

	seen := map[string]bool{}
	devices := []DeviceInfo{}
	for _, record := range records {
		id := recordString(record, "device_id")
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		devices = append(devices, DeviceInfo{
			DeviceID: id,
			Location: recordString(record, "location"),
		})
	}
	return devices, nil
}

func (s *dataService) GetDeviceHistory(ctx context.Context, deviceID string, hours int) (DeviceHistoryResponse, error) {
	if hours <= 0 {
		hours = 24
	}
	period := fmt.Sprintf("-%dh", hours)

	history := []DeviceHistoryPoint{}
	for _, field := range []string{"temperature", "humidity"} {
		records, err := s.db.QueryRecords(ctx, fluxqueries.DeviceHistory(s.sensorBucket, deviceID, period, field))
		if err != nil {
			return DeviceHistoryResponse{}, fmt.Errorf("query history of %s: %w", deviceID, err)
		}
		for _, record := range records {
			ts, ok := recordTime(record, "_time")
			if !ok {
				continue
			}
			v, ok := recordFloat(record, "_value")
			if !ok {
				continue
			}
			history = append(history, DeviceHistoryPoint{Time: ts, Field: field, Value: round1(v)})
		}
	}

	return DeviceHistoryResponse{
		DeviceID:   deviceID,
		Period:     fmt.Sprintf("%dh", hours),
		History:    history,
		DataPoints: len(history),
	}, nil
}

func (s *dataService) GetLatestForecast(ctx context.Context) ([]models.ForecastPoint, error) {
	records, err := s.db.QueryRecords(ctx, fluxqueries.LatestForecast(s.bmkgBucket, s.kodeWilayah, "-24h"))
	if err != nil {
		return nil, fmt.Errorf("query latest forecast: %w", err)
	}

	points := []models.ForecastPoint{}
	for _, record := range records {
		ts, ok := recordTime(record, "_time")
		if !ok {
			continue
		}
		point := models.ForecastPoint{
			Time:          ts,
			LocalDatetime: recordString(record, "local_datetime"),
			WeatherDesc:   recordString(record, "weather_desc"),
			WeatherDescEN: recordString(record, "weather_desc_en"),
			WindDirection: recordString(record, "wd"),
		}
		point.Temperature, _ = recordFloat(record, "temperature")
		point.Humidity, _ = recordFloat(record, "humidity")
		point.TemperaturePrediction, _ = recordFloat(record, "temperature_prediction")
		point.CloudCover, _ = recordFloat(record, "tcc")
		point.WindSpeed, _ = recordFloat(record, "wind_speed")
		point.WindDirectionDegree, _ = recordFloat(record, "wind_direction_degree")
		point.VisibilityKM, _ = recordFloat(record, "visibility_km")
		points = append(points, point)
	}
	return points, nil
}
