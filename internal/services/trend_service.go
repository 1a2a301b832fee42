package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"archive-twin/internal/fluxqueries"
	"archive-twin/internal/models"
)

// TrendResponse is the payload for one analyzed series.
type TrendResponse struct {
	Period      string               `json:"period"`
	Parameter   string               `json:"parameter"`
	Location    string               `json:"location"`
	Timestamps  []string             `json:"timestamps"`
	Values      []float64            `json:"values"`
	Analysis    models.TrendAnalysis `json:"analysis"`
	DataPoints  int                  `json:"data_points"`
	LastUpdated time.Time            `json:"last_updated"`
	Message     string               `json:"message,omitempty"`
}

// ComparativeTrendResponse contrasts the current window with the one
// before it.
type ComparativeTrendResponse struct {
	Parameter        string                  `json:"parameter"`
	Location         string                  `json:"location"`
	CurrentPeriod    PeriodAnalysis          `json:"current_period"`
	ComparisonPeriod PeriodAnalysis          `json:"comparison_period"`
	Comparison       models.PeriodComparison `json:"comparison"`
	LastUpdated      time.Time               `json:"last_updated"`
}

type PeriodAnalysis struct {
	Period     string               `json:"period"`
	DataPoints int                  `json:"data_points"`
	Analysis   models.TrendAnalysis `json:"analysis"`
}

// TrendSummary condenses both parameters into one dashboard payload.
type TrendSummary struct {
	Location    string              `json:"location"`
	Temperature ParameterTrendBrief `json:"temperature"`
	Humidity    ParameterTrendBrief `json:"humidity"`
	LastUpdated time.Time           `json:"last_updated"`
}

type ParameterTrendBrief struct {
	TrendDirection string                  `json:"trend_direction"`
	Slope          float64                 `json:"slope"`
	Volatility     float64                 `json:"volatility"`
	DataPoints     int                     `json:"data_points"`
	Statistics     *models.TrendStatistics `json:"statistics,omitempty"`
}

type ITrendService interface {
	GetHourlyTrend(ctx context.Context, parameter, location string, hours int) (TrendResponse, error)
	GetDailyTrend(ctx context.Context, parameter, location string, days int) (TrendResponse, error)
	GetMonthlyTrend(ctx context.Context, parameter, location string, days int) (TrendResponse, error)
	GetComparativeTrend(ctx context.Context, parameter, location string, periodDays int) (ComparativeTrendResponse, error)
	GetTrendSummary(ctx context.Context, location string) (TrendSummary, error)
}

type trendService struct {
	db     Database
	bucket string
}

func NewTrendService(db Database, bucket string) ITrendService {
	return &trendService{db: db, bucket: bucket}
}

func trendLocationFilter(location string) string {
	if location == "" || location == "all" {
		return ""
	}
	return fluxqueries.LocationFilter([]string{location})
}

func normalizeLocation(location string) string {
	if location == "" {
		return "all"
	}
	return location
}

func (s *trendService) GetHourlyTrend(ctx context.Context, parameter, location string, hours int) (TrendResponse, error) {
	flux := fluxqueries.HourlyAggregated(s.bucket, parameter, trendLocationFilter(location), hours)
	return s.trendFromQuery(ctx, flux, "hourly", parameter, location, "15:04")
}

func (s *trendService) GetDailyTrend(ctx context.Context, parameter, location string, days int) (TrendResponse, error) {
	flux := fluxqueries.DailyAggregated(s.bucket, parameter, trendLocationFilter(location), days)
	return s.trendFromQuery(ctx, flux, "daily", parameter, location, "2006-01-02")
}

// GetMonthlyTrend reuses the daily aggregation over a longer window.
func (s *trendService) GetMonthlyTrend(ctx context.Context, parameter, location string, days int) (TrendResponse, error) {
	flux := fluxqueries.DailyAggregated(s.bucket, parameter, trendLocationFilter(location), days)
	return s.trendFromQuery(ctx, flux, "monthly", parameter, location, "01-02")
}

func (s *trendService) trendFromQuery(ctx context.Context, flux, period, parameter, location, timeLayout string) (TrendResponse, error) {
	records, err := s.db.QueryRecords(ctx, flux)
	if err != nil {
		return TrendResponse{}, fmt.Errorf("query %s trend: %w", period, err)
	}

	type sample struct {
		ts    time.Time
		value float64
	}
	samples := make([]sample, 0, len(records))
	for _, record := range records {
		ts, ok := recordTime(record, "_time")
		if !ok {
			continue
		}
		v, ok := recordFloat(record, "_value")
		if !ok {
			continue
		}
		samples = append(samples, sample{ts: ts, value: v})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].ts.Before(samples[j].ts) })

	resp := TrendResponse{
		Period:      period,
		Parameter:   parameter,
		Location:    normalizeLocation(location),
		Timestamps:  []string{},
		Values:      []float64{},
		DataPoints:  len(samples),
		LastUpdated: time.Now(),
	}
	if len(samples) == 0 {
		resp.Analysis = models.TrendAnalysis{
			TrendDirection: "no_data",
			MovingAverages: []float64{},
			Anomalies:      []models.Anomaly{},
		}
		resp.Message = "No data available for the specified parameters"
		return resp, nil
	}

	values := make([]float64, len(samples))
	for i, sm := range samples {
		resp.Timestamps = append(resp.Timestamps, sm.ts.Format(timeLayout))
		values[i] = sm.value
		resp.Values = append(resp.Values, round1(sm.value))
	}
	resp.Analysis = CalculateTrendAnalysis(values, period)
	return resp, nil
}

func (s *trendService) GetComparativeTrend(ctx context.Context, parameter, location string, periodDays int) (ComparativeTrendResponse, error) {
	flux := fluxqueries.ComparativePeriod(s.bucket, parameter, trendLocationFilter(location), periodDays)
	records, err := s.db.QueryRecords(ctx, flux)
	if err != nil {
		return ComparativeTrendResponse{}, fmt.Errorf("query comparative trend: %w", err)
	}

	var current, previous []float64
	for _, record := range records {
		v, ok := recordFloat(record, "_value")
		if !ok {
			continue
		}
		switch recordString(record, "result") {
		case "current_period":
			current = append(current, v)
		case "previous_period":
			previous = append(previous, v)
		}
	}

	period := fmt.Sprintf("%dd", periodDays)
	return ComparativeTrendResponse{
		Parameter: parameter,
		Location:  normalizeLocation(location),
		CurrentPeriod: PeriodAnalysis{
			Period:     period,
			DataPoints: len(current),
			Analysis:   CalculateTrendAnalysis(current, "daily"),
		},
		ComparisonPeriod: PeriodAnalysis{
			Period:     period,
			DataPoints: len(previous),
			Analysis:   CalculateTrendAnalysis(previous, "daily"),
		},
		Comparison:  ComparePeriods(current, previous),
		LastUpdated: time.Now(),
	}, nil
}

func (s *trendService) GetTrendSummary(ctx context.Context, location string) (TrendSummary, error) {
	summary := TrendSummary{
		Location:    normalizeLocation(location),
		LastUpdated: time.Now(),
	}

	for _, parameter := range []string{"temperature", "humidity"} {
		resp, err := s.GetHourlyTrend(ctx, parameter, location, 24)
		if err != nil {
			return TrendSummary{}, err
		}
		brief := ParameterTrendBrief{
			TrendDirection: resp.Analysis.TrendDirection,
			Slope:          resp.Analysis.Slope,
			Volatility:     resp.Analysis.Volatility,
			DataPoints:     resp.DataPoints,
			Statistics:     resp.Analysis.Statistics,
		}
		if parameter == "temperature" {
			summary.Temperature = brief
		} else {
			summary.Humidity = brief
		}
	}
	return summary, nil
}
