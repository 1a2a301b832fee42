package services

import (
	"context"
	"fmt"
	"testing"

	"archive-twin/internal/models"

	"github.com/stretchr/testify/assert"
)

type stubRooms struct {
	conditions map[string]models.RoomConditions
}

func (s *stubRooms) ListRooms() []models.Room {
	rooms := make([]models.Room, 0, len(s.conditions))
	for _, id := range []string{"F2", "F3", "F4", "G2"} {
		if _, ok := s.conditions[id]; ok {
			rooms = append(rooms, models.Room{ID: id, Name: "Ruang " + id})
		}
	}
	return rooms
}

func (s *stubRooms) CurrentConditions(_ context.Context, roomID string) (models.RoomConditions, error) {
	conditions, ok := s.conditions[roomID]
	if !ok {
		return models.RoomConditions{}, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	return conditions, nil
}

func (s *stubRooms) GetRoomDetails(context.Context, string) (models.RoomDetails, error) {
	return models.RoomDetails{}, nil
}

type stubTrends struct {
	response TrendResponse
	err      error
}

func (s *stubTrends) GetHourlyTrend(context.Context, string, string, int) (TrendResponse, error) {
	return s.response, s.err
}

func (s *stubTrends) GetDailyTrend(context.Context, string, string, int) (TrendResponse, error) {
	return s.response, s.err
}

func (s *stubTrends) GetMonthlyTrend(context.Context, string, string, int) (TrendResponse, error) {
	return s.response, s.err
}

func (s *stubTrends) GetComparativeTrend(context.Context, string, string, int) (ComparativeTrendResponse, error) {
	return ComparativeTrendResponse{}, s.err
}

func (s *stubTrends) GetTrendSummary(context.Context, string) (TrendSummary, error) {
	return TrendSummary{}, s.err
}

func conditions(temp, humidity float64) models.RoomConditions {
	return models.RoomConditions{Temperature: floatPtr(temp), Humidity: floatPtr(humidity)}
}

func newTestRecommendationService(rooms map[string]models.RoomConditions) IRecommendationService {
	trends := &stubTrends{response: TrendResponse{
		Analysis: models.TrendAnalysis{TrendDirection: "increasing"},
	}}
	automation := NewAutomationService(context.Background(), nil)
	return NewRecommendationService(&stubRooms{conditions: rooms}, trends, automation)
}

func TestProactiveRecommendationsCriticalTemperature(t *testing.T) {
	svc := newTestRecommendationService(map[string]models.RoomConditions{
		"F2": conditions(28.5, 60),
		"F3": conditions(24, 58),
	})

	result, err := svc.GetProactiveRecommendations(context.Background())
	assert.NoError(t, err)

	assert.NotEmpty(t, result.AnalysisID)
	assert.Equal(t, 1, result.CriticalAlerts)
	assert.Equal(t, "needs_attention", result.SystemHealth.OverallStatus)

	if assert.NotEmpty(t, result.PriorityRecommendations) {
		first := result.PriorityRecommendations[0]
		assert.Equal(t, "temp_critical_F2", first.ID)
		assert.Equal(t, "critical", first.Priority)
		assert.Equal(t, "emergency_cooling", first.Action)
		assert.Equal(t, "rule_based", first.DataSource)
	}
	assert.Equal(t, 2, result.Statistics.TotalRoomsMonitored)
	assert.Equal(t, 1, result.Statistics.RoomsOptimal)
}

func TestProactiveRecommendationsAllOptimal(t *testing.T) {
	svc := newTestRecommendationService(map[string]models.RoomConditions{
		"F2": conditions(24, 60),
		"F3": conditions(23.5, 55),
		"F4": conditions(24.5, 62),
	})

	result, err := svc.GetProactiveRecommendations(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, 0, result.CriticalAlerts)
	assert.Equal(t, "optimal", result.SystemHealth.OverallStatus)
	assert.Equal(t, "excellent", result.SystemHealth.PreservationQuality)

	if assert.NotEmpty(t, result.PriorityRecommendations) {
		assert.Equal(t, "status_excellent", result.PriorityRecommendations[0].ID)
		assert.Equal(t, "info", result.PriorityRecommendations[0].Priority)
	}

	assert.Equal(t, 100.0, result.BuildingInsights.PerformanceScore)
	assert.Equal(t, "excellent", result.BuildingInsights.PerformanceRating)
	assert.False(t, result.BuildingInsights.EnergyReviewRecommended)
}

func TestProactiveRecommendationsPrioritySort(t *testing.T) {
	svc := newTestRecommendationService(map[string]models.RoomConditions{
		"F2": conditions(21.0, 60), // temp below band: medium
		"F3": conditions(26.5, 60), // temp above band: high
		"F4": conditions(24, 78),   // humidity critical
	})

	result, err := svc.GetProactiveRecommendations(context.Background())
	assert.NoError(t, err)

	priorities := make([]string, 0, len(result.PriorityRecommendations))
	for _, rec := range result.PriorityRecommendations {
		priorities = append(priorities, rec.Priority)
	}
	assert.Equal(t, []string{"critical", "high", "medium"}, priorities)
	assert.Equal(t, "humidity_critical_F4", result.PriorityRecommendations[0].ID)
}

func TestProactiveRecommendationsGeneralAlwaysPresent(t *testing.T) {
	svc := newTestRecommendationService(map[string]models.RoomConditions{
		"F2": conditions(24, 60),
	})

	result, err := svc.GetProactiveRecommendations(context.Background())
	assert.NoError(t, err)

	ids := make([]string, 0, len(result.GeneralRecommendations))
	for _, rec := range result.GeneralRecommendations {
		ids = append(ids, rec.ID)
		assert.NotEmpty(t, rec.NextDue)
	}
	assert.Equal(t, []string{"maintenance_schedule", "parameter_review", "staff_training"}, ids)
	assert.Equal(t, len(result.PriorityRecommendations)+len(result.GeneralRecommendations), result.TotalRecommendations)
}

func TestBuildingInsightsEnergyReview(t *testing.T) {
	svc := newTestRecommendationService(map[string]models.RoomConditions{
		"F2": conditions(30, 60), // 4°C beyond tolerance: 12% potential
	})

	result, err := svc.GetProactiveRecommendations(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, 12.0, result.BuildingInsights.EnergyOptimizationPct)
	assert.True(t, result.BuildingInsights.EnergyReviewRecommended)
	assert.Equal(t, []string{"F2"}, result.BuildingInsights.CriticalRooms)
	assert.Equal(t, "review_recommended", result.SystemHealth.EnergyEfficiency)
}

func TestRoomRecommendationsOptimalFallback(t *testing.T) {
	svc := newTestRecommendationService(map[string]models.RoomConditions{
		"F2": conditions(24, 60),
	})

	result, err := svc.GetRoomRecommendations(context.Background(), "F2")
	assert.NoError(t, err)

	assert.Equal(t, "optimal", result.RoomStatus)
	if assert.Len(t, result.Recommendations, 1) {
		assert.Equal(t, "status_optimal_F2", result.Recommendations[0].ID)
	}
}

func TestRoomRecommendationsWithoutReadings(t *testing.T) {
	svc := newTestRecommendationService(map[string]models.RoomConditions{
		"F3": {},
	})

	result, err := svc.GetRoomRecommendations(context.Background(), "F3")
	assert.NoError(t, err)

	assert.Equal(t, "no_data", result.RoomStatus)
	if assert.Len(t, result.Recommendations, 1) {
		rec := result.Recommendations[0]
		assert.Equal(t, "no_data_F3", rec.ID)
		assert.Equal(t, "info", rec.Priority)
		assert.Equal(t, "fallback", rec.DataSource)
		assert.NotContains(t, rec.Title, "Optimal")
	}
}

func TestRoomRecommendationsNeedsAttention(t *testing.T) {
	svc := newTestRecommendationService(map[string]models.RoomConditions{
		"F4": conditions(26.5, 72),
	})

	result, err := svc.GetRoomRecommendations(context.Background(), "F4")
	assert.NoError(t, err)

	assert.Equal(t, "needs_attention", result.RoomStatus)
	assert.Equal(t, 2, result.TotalRecommendations)
	assert.Equal(t, "temp_high_F4", result.Recommendations[0].ID)
	assert.Equal(t, "humidity_high_F4", result.Recommendations[1].ID)
	assert.Contains(t, result.Recommendations[0].TrendInfo, "increasing")
}

func TestRoomRecommendationsUnknownRoom(t *testing.T) {
	svc := newTestRecommendationService(map[string]models.RoomConditions{})

	_, err := svc.GetRoomRecommendations(context.Background(), "Z9")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
