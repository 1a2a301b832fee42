package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsServiceRoundsPerField(t *testing.T) {
	db := fixedRecords([]map[string]interface{}{
		{"avg": 21.55, "min": 20.04, "max": 23.06, "sample_count": 4.0},
	})
	svc := NewStatsService(db, "sensor_data_primary")

	temp, err := svc.GetStatsLastHour(context.Background(), "temperature")
	assert.NoError(t, err)
	if assert.NotNil(t, temp.Avg) {
		assert.Equal(t, 21.6, *temp.Avg)
	}
	if assert.NotNil(t, temp.Min) {
		assert.Equal(t, 20.0, *temp.Min)
	}
	if assert.NotNil(t, temp.Max) {
		assert.Equal(t, 23.1, *temp.Max)
	}
	assert.Equal(t, 4, temp.SampleCount)

	hum, err := svc.GetStatsLastHour(context.Background(), "humidity")
	assert.NoError(t, err)
	if assert.NotNil(t, hum.Avg) {
		assert.Equal(t, 22.0, *hum.Avg)
	}
}

func TestStatsServiceEmptyWindow(t *testing.T) {
	svc := NewStatsService(fixedRecords(nil), "sensor_data_primary")

	stats, err := svc.GetStatsLastHour(context.Background(), "temperature")
	assert.NoError(t, err)
	assert.Nil(t, stats.Avg)
	assert.Nil(t, stats.Min)
	assert.Nil(t, stats.Max)
	assert.Equal(t, 0, stats.SampleCount)
}

func TestStatsServiceZeroSampleCount(t *testing.T) {
	db := fixedRecords([]map[string]interface{}{
		{"avg": 0.0, "min": 0.0, "max": 0.0, "sample_count": 0.0},
	})
	svc := NewStatsService(db, "sensor_data_primary")

	stats, err := svc.GetStatsLastHour(context.Background(), "humidity")
	assert.NoError(t, err)
	assert.Nil(t, stats.Avg)
	assert.Equal(t, 0, stats.SampleCount)
}

func TestStatsServiceQueryError(t *testing.T) {
	db := &stubDB{fn: func(string) ([]map[string]interface{}, error) {
		return nil, errors.New("influx unavailable")
	}}
	svc := NewStatsService(db, "sensor_data_primary")

	_, err := svc.GetFieldStats(context.Background(), "temperature", nil, nil, nil)
	assert.Error(t, err)
}

func TestStatsServiceEnvironmentalSplitsFields(t *testing.T) {
	db := fixedRecords([]map[string]interface{}{
		{"_measurement": "temperature", "avg": 21.0, "min": 19.5, "max": 22.5, "sample_count": 3.0},
		{"_measurement": "humidity", "avg": 55.4, "min": 50.0, "max": 61.0, "sample_count": 3.0},
	})
	svc := NewStatsService(db, "sensor_data_primary")

	stats, err := svc.GetEnvironmentalStats(context.Background(), nil, nil, nil)
	assert.NoError(t, err)
	if assert.NotNil(t, stats.Temperature.Avg) {
		assert.Equal(t, 21.0, *stats.Temperature.Avg)
	}
	if assert.NotNil(t, stats.Humidity.Avg) {
		assert.Equal(t, 55.0, *stats.Humidity.Avg)
	}
}

func TestStatsServiceSingleValue(t *testing.T) {
	db := fixedRecords([]map[string]interface{}{{"_value": 21.87}})
	svc := NewStatsService(db, "sensor_data_primary")

	result, err := svc.GetAverageLastHour(context.Background(), "temperature")
	assert.NoError(t, err)
	if assert.NotNil(t, result.Value) {
		assert.Equal(t, 21.9, *result.Value)
	}

	empty, err := NewStatsService(fixedRecords(nil), "b").GetMinLastHour(context.Background(), "temperature")
	assert.NoError(t, err)
	assert.Nil(t, empty.Value)
}
