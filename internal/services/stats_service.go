package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"archive-twin/internal/fluxqueries"
)

// FieldStatsResult holds avg/min/max for one parameter. Nil values mean
// the window held no samples; a result is never partially filled.
type FieldStatsResult struct {
	Avg         *float64 `json:"avg"`
	Min         *float64 `json:"min"`
	Max         *float64 `json:"max"`
	SampleCount int      `json:"sample_count"`
}

// EnvironmentalStatsResult pairs temperature and humidity statistics.
type EnvironmentalStatsResult struct {
	Temperature FieldStatsResult `json:"temperature"`
	Humidity    FieldStatsResult `json:"humidity"`
	Timestamp   time.Time        `json:"timestamp"`
}

// SingleValueResult is one rounded figure plus the time it was computed.
type SingleValueResult struct {
	Value     *float64  `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

type IStatsService interface {
	GetFieldStats(ctx context.Context, field string, start, end *time.Time, locations []string) (FieldStatsResult, error)
	GetEnvironmentalStats(ctx context.Context, start, end *time.Time, locations []string) (EnvironmentalStatsResult, error)
	GetAverageLastHour(ctx context.Context, field string) (SingleValueResult, error)
	GetMinLastHour(ctx context.Context, field string) (SingleValueResult, error)
	GetMaxLastHour(ctx context.Context, field string) (SingleValueResult, error)
	GetStatsLastHour(ctx context.Context, field string) (FieldStatsResult, error)
}

type statsService struct {
	db     Database
	bucket string
}

func NewStatsService(db Database, bucket string) IStatsService {
	return &statsService{db: db, bucket: bucket}
}

// roundField applies the reporting convention: temperature to one
// decimal, humidity to whole percent.
func roundField(field string, v float64) float64 {
	if field == "humidity" {
		return round0(v)
	}
	return round1(v)
}

func (s *statsService) GetFieldStats(ctx context.Context, field string, start, end *time.Time, locations []string) (FieldStatsResult, error) {
	flux := fluxqueries.FieldStats(s.bucket, fluxqueries.RangeFilter(start, end), fluxqueries.LocationFilter(locations), field)
	records, err := s.db.QueryRecords(ctx, flux)
	if err != nil {
		return FieldStatsResult{}, fmt.Errorf("query %s stats: %w", field, err)
	}
	return s.statsFromRecords(field, records), nil
}

func (s *statsService) GetStatsLastHour(ctx context.Context, field string) (FieldStatsResult, error) {
	records, err := s.db.QueryRecords(ctx, fluxqueries.StatsLastHour(s.bucket, field))
	if err != nil {
		return FieldStatsResult{}, fmt.Errorf("query %s last-hour stats: %w", field, err)
	}
	return s.statsFromRecords(field, records), nil
}

func (s *statsService) statsFromRecords(field string, records []map[string]interface{}) FieldStatsResult {
	if len(records) == 0 {
		return FieldStatsResult{}
	}
	record := records[0]
	count, _ := recordFloat(record, "sample_count")
	if count == 0 {
		log.Printf("No %s samples in window", field)
		return FieldStatsResult{}
	}
	out := FieldStatsResult{SampleCount: int(count)}
	if avg, ok := recordFloat(record, "avg"); ok {
		out.Avg = floatPtr(roundField(field, avg))
	}
	if min, ok := recordFloat(record, "min"); ok {
		out.Min = floatPtr(roundField(field, min))
	}
	if max, ok := recordFloat(record, "max"); ok {
		out.Max = floatPtr(roundField(field, max))
	}
	return out
}

func (s *statsService) GetEnvironmentalStats(ctx context.Context, start, end *time.Time, locations []string) (EnvironmentalStatsResult, error) {
	flux := fluxqueries.EnvironmentalStats(s.bucket, fluxqueries.RangeFilter(start, end), fluxqueries.LocationFilter(locations))
	records, err := s.db.QueryRecords(ctx, flux)
	if err != nil {
		return EnvironmentalStatsResult{}, fmt.Errorf("query environmental stats: %w", err)
	}

	out := EnvironmentalStatsResult{Timestamp: time.Now()}
	for _, record := range records {
		field := recordString(record, "_measurement")
		if field != "temperature" && field != "humidity" {
			continue
		}
		stats := s.statsFromRecords(field, []map[string]interface{}{record})
		if field == "temperature" {
			out.Temperature = stats
		} else {
			out.Humidity = stats
		}
	}
	return out, nil
}

func (s *statsService) GetAverageLastHour(ctx context.Context, field string) (SingleValueResult, error) {
	return s.singleValue(ctx, field, fluxqueries.AverageLastHour(s.bucket, field))
}

func (s *statsService) GetMinLastHour(ctx context.Context, field string) (SingleValueResult, error) {
	return s.singleValue(ctx, field, fluxqueries.MinLastHour(s.bucket, field))
}

func (s *statsService) GetMaxLastHour(ctx context.Context, field string) (SingleValueResult, error) {
	return s.singleValue(ctx, field, fluxqueries.MaxLastHour(s.bucket, field))
}

func (s *statsService) singleValue(ctx context.Context, field, flux string) (SingleValueResult, error) {
	out := SingleValueResult{Timestamp: time.Now()}
	records, err := s.db.QueryRecords(ctx, flux)
	if err != nil {
		return out, fmt.Errorf("query %s: %w", field, err)
	}
	if len(records) == 0 {
		return out, nil
	}
	if v, ok := recordFloat(records[0], "_value"); ok {
		out.Value = floatPtr(roundField(field, v))
	}
	return out, nil
}
