// Package services holds the domain logic between the HTTP handlers and
// the time-series gateway.
package services

import (
	"context"
	"math"
	"time"
)

// Database is the slice of the InfluxDB gateway the services consume.
type Database interface {
	QueryRecords(ctx context.Context, flux string) ([]map[string]interface{}, error)
	Ping(ctx context.Context) error
	Ready() bool
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round0(v float64) float64 {
	return math.Round(v)
}

func floatPtr(v float64) *float64 {
	return &v
}

// recordFloat pulls a numeric column out of a Flux record, tolerating
// the integer types the client can hand back.
func recordFloat(record map[string]interface{}, key string) (float64, bool) {
	raw, ok := record[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func recordString(record map[string]interface{}, key string) string {
	if raw, ok := record[key]; ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}

func recordTime(record map[string]interface{}, key string) (time.Time, bool) {
	if raw, ok := record[key]; ok {
		if t, ok := raw.(time.Time); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
