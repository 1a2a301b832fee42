package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"archive-twin/internal/models"

	"github.com/google/uuid"
)

const (
	dataSourceRuleBased = "rule_based"
	dataSourceNoData    = "fallback"

	maintenanceDueDays     = 14
	staffTrainingDueDays   = 30
	parameterReviewDueDays = 90

	// Every degree outside the operator band costs roughly 3% extra
	// HVAC energy. Above 10% total we flag an efficiency review.
	energyPercentPerDegree = 3.0
	energyReviewThreshold  = 10.0
)

// roomSnapshot is the per-room input of the rule engine.
type roomSnapshot struct {
	ID          string
	Name        string
	Temperature float64
	Humidity    float64
	Trend       string
}

// RecommendationStatistics summarizes the analyzed building for the
// dashboard header.
type RecommendationStatistics struct {
	TotalRoomsMonitored int      `json:"total_rooms_monitored"`
	RoomsOptimal        int      `json:"rooms_optimal"`
	RoomsCritical       int      `json:"rooms_critical"`
	AvgTemperature      *float64 `json:"avg_temperature"`
	AvgHumidity         *float64 `json:"avg_humidity"`
}

// SystemHealth is the coarse health verdict shown next to the
// recommendation list.
type SystemHealth struct {
	OverallStatus       string `json:"overall_status"`
	PreservationQuality string `json:"preservation_quality"`
	EnergyEfficiency    string `json:"energy_efficiency"`
}

// BuildingInsights aggregates room compliance into one building score.
type BuildingInsights struct {
	PerformanceScore        float64  `json:"performance_score"`
	PerformanceRating       string   `json:"performance_rating"`
	RoomsAnalyzed           int      `json:"rooms_analyzed"`
	CriticalRooms           []string `json:"critical_rooms"`
	EnergyOptimizationPct   float64  `json:"energy_optimization_potential_percent"`
	EnergyReviewRecommended bool     `json:"energy_review_recommended"`
}

// ProactiveRecommendations is the full payload of the building-wide
// analysis.
type ProactiveRecommendations struct {
	AnalysisID              string                    `json:"analysis_id"`
	PriorityRecommendations []models.Recommendation   `json:"priority_recommendations"`
	GeneralRecommendations  []models.Recommendation   `json:"general_recommendations"`
	BuildingInsights        BuildingInsights          `json:"building_insights"`
	Statistics              RecommendationStatistics  `json:"statistics"`
	TotalRecommendations    int                       `json:"total_recommendations"`
	CriticalAlerts          int                       `json:"critical_alerts"`
	LastUpdated             time.Time                 `json:"last_updated"`
	AnalysisPeriod          string                    `json:"analysis_period"`
	AutomationParameters    models.AutomationSettings `json:"automation_parameters"`
	SystemHealth            SystemHealth              `json:"system_health"`
}

// RoomRecommendations is the payload of the single-room analysis.
type RoomRecommendations struct {
	RoomID               string                  `json:"room_id"`
	RoomName             string                  `json:"room_name"`
	CurrentConditions    models.RoomConditions   `json:"current_conditions"`
	Recommendations      []models.Recommendation `json:"recommendations"`
	TotalRecommendations int                     `json:"total_recommendations"`
	RoomStatus           string                  `json:"room_status"`
	LastUpdated          time.Time               `json:"last_updated"`
}

type IRecommendationService interface {
	GetProactiveRecommendations(ctx context.Context) (ProactiveRecommendations, error)
	GetRoomRecommendations(ctx context.Context, roomID string) (RoomRecommendations, error)
}

type recommendationService struct {
	rooms      IRoomService
	trends     ITrendService
	automation IAutomationService
}

func NewRecommendationService(rooms IRoomService, trends ITrendService, automation IAutomationService) IRecommendationService {
	return &recommendationService{rooms: rooms, trends: trends, automation: automation}
}

func (s *recommendationService) GetProactiveRecommendations(ctx context.Context) (ProactiveRecommendations, error) {
	settings := s.automation.Get()
	snapshots := s.collectSnapshots(ctx)
	now := time.Now()

	priority := []models.Recommendation{}
	for _, snap := range snapshots {
		priority = append(priority, analyzeRoomCondition(snap, settings, now)...)
	}
	sort.SliceStable(priority, func(i, j int) bool {
		return priorityRank(priority[i].Priority) < priorityRank(priority[j].Priority)
	})

	criticalHigh := 0
	critical := 0
	for _, rec := range priority {
		switch rec.Priority {
		case "critical":
			critical++
			criticalHigh++
		case "high":
			criticalHigh++
		}
	}

	if criticalHigh == 0 {
		priority = append([]models.Recommendation{statusExcellent(settings, now)}, priority...)
	}

	general := generalRecommendations(settings, now)
	stats := buildingStatistics(snapshots, priority, settings)
	insights := buildingInsights(snapshots, settings)

	health := SystemHealth{
		OverallStatus:       "optimal",
		PreservationQuality: "good",
		EnergyEfficiency:    "good",
	}
	if criticalHigh > 0 {
		health.OverallStatus = "needs_attention"
	}
	if stats.TotalRoomsMonitored > 0 &&
		float64(stats.RoomsOptimal)/float64(stats.TotalRoomsMonitored) > 0.8 {
		health.PreservationQuality = "excellent"
	}
	if insights.EnergyReviewRecommended {
		health.EnergyEfficiency = "review_recommended"
	}

	return ProactiveRecommendations{
		AnalysisID:              uuid.NewString(),
		PriorityRecommendations: priority,
		GeneralRecommendations:  general,
		BuildingInsights:        insights,
		Statistics:              stats,
		TotalRecommendations:    len(priority) + len(general),
		CriticalAlerts:          critical,
		LastUpdated:             now,
		AnalysisPeriod:          "real_time",
		AutomationParameters:    settings,
		SystemHealth:            health,
	}, nil
}

func (s *recommendationService) GetRoomRecommendations(ctx context.Context, roomID string) (RoomRecommendations, error) {
	conditions, err := s.rooms.CurrentConditions(ctx, roomID)
	if err != nil {
		return RoomRecommendations{}, err
	}

	settings := s.automation.Get()
	now := time.Now()
	name := "Ruang " + roomID

	hasReadings := conditions.Temperature != nil && conditions.Humidity != nil

	recs := []models.Recommendation{}
	if hasReadings {
		snap := roomSnapshot{
			ID:          roomID,
			Name:        name,
			Temperature: *conditions.Temperature,
			Humidity:    *conditions.Humidity,
			Trend:       s.roomTrend(ctx, roomID),
		}
		recs = analyzeRoomCondition(snap, settings, now)
	}

	status := "optimal"
	for _, rec := range recs {
		if rec.Priority == "critical" || rec.Priority == "high" {
			status = "needs_attention"
			break
		}
	}

	if len(recs) == 0 {
		// A room without readings gets a data-gap notice, never an
		// optimal verdict.
		if !hasReadings {
			status = "no_data"
			recs = append(recs, models.Recommendation{
				ID:          "no_data_" + roomID,
				Priority:    "info",
				Category:    "status",
				Title:       fmt.Sprintf("ℹ️ Data Sensor %s Belum Tersedia", name),
				Description: fmt.Sprintf("Belum ada pembacaan suhu dan kelembapan dari %s. Periksa konektivitas sensor sebelum menilai kondisi ruangan.", name),
				Room:        roomID,
				DataSource:  dataSourceNoData,
				CreatedAt:   now,
			})
		} else {
			recs = append(recs, models.Recommendation{
				ID:          "status_optimal_" + roomID,
				Priority:    "info",
				Category:    "status",
				Title:       fmt.Sprintf("✅ %s dalam Kondisi Optimal", name),
				Description: fmt.Sprintf("Kondisi lingkungan %s berada dalam rentang optimal untuk preservasi arsip.", name),
				Room:        roomID,
				DataSource:  dataSourceRuleBased,
				CreatedAt:   now,
			})
		}
	}

	return RoomRecommendations{
		RoomID:               roomID,
		RoomName:             name,
		CurrentConditions:    conditions,
		Recommendations:      recs,
		TotalRecommendations: len(recs),
		RoomStatus:           status,
		LastUpdated:          now,
	}, nil
}

// collectSnapshots gathers the latest conditions of every room that has
// both readings. Rooms without data are left out of the analysis.
func (s *recommendationService) collectSnapshots(ctx context.Context) []roomSnapshot {
	var snapshots []roomSnapshot
	for _, room := range s.rooms.ListRooms() {
		conditions, err := s.rooms.CurrentConditions(ctx, room.ID)
		if err != nil {
			log.Printf("Skipping room %s in recommendation analysis: %v", room.ID, err)
			continue
		}
		if conditions.Temperature == nil || conditions.Humidity == nil {
			continue
		}
		snapshots = append(snapshots, roomSnapshot{
			ID:          room.ID,
			Name:        room.Name,
			Temperature: *conditions.Temperature,
			Humidity:    *conditions.Humidity,
			Trend:       s.roomTrend(ctx, room.ID),
		})
	}
	return snapshots
}

func (s *recommendationService) roomTrend(ctx context.Context, roomID string) string {
	resp, err := s.trends.GetHourlyTrend(ctx, "temperature", roomID, 24)
	if err != nil || resp.Analysis.TrendDirection == "" || resp.Analysis.TrendDirection == "no_data" {
		return "stable"
	}
	return resp.Analysis.TrendDirection
}

func priorityRank(priority string) int {
	if rank, ok := models.PriorityOrder[priority]; ok {
		return rank
	}
	return models.PriorityOrder["low"]
}

// analyzeRoomCondition applies the temperature and humidity rules of
// one room against the operator bands.
func analyzeRoomCondition(snap roomSnapshot, settings models.AutomationSettings, now time.Time) []models.Recommendation {
	var recs []models.Recommendation

	tempMin := settings.TargetTemperature - settings.TemperatureTolerance
	tempMax := settings.TargetTemperature + settings.TemperatureTolerance

	switch {
	case snap.Temperature > settings.AlertThresholdTemp:
		recs = append(recs, models.Recommendation{
			ID:       "temp_critical_" + snap.ID,
			Priority: "critical",
			Category: "temperature_control",
			Title:    fmt.Sprintf("🚨 CRITICAL: Suhu %s Berbahaya", snap.Name),
			Description: fmt.Sprintf("Suhu %s°C di %s melebihi ambang kritis %s°C. TINDAKAN SEGERA diperlukan untuk mencegah kerusakan arsip!",
				formatValue(snap.Temperature), snap.Name, formatValue(settings.AlertThresholdTemp)),
			Action:           "emergency_cooling",
			Room:             snap.ID,
			Severity:         "critical",
			EstimatedImpact:  "Penurunan suhu ke level aman dalam 10-15 menit",
			PreservationRisk: "TINGGI - Potensi kerusakan arsip dalam 30 menit",
			SpecificActions: []string{
				fmt.Sprintf("Segera turunkan setpoint AC %s ke 22°C", snap.Name),
				"Aktifkan mode cooling maksimal",
				"Monitor setiap 5 menit sampai mencapai target",
			},
			DataSource: dataSourceRuleBased,
			CreatedAt:  now,
		})
	case snap.Temperature > tempMax:
		recs = append(recs, models.Recommendation{
			ID:       "temp_high_" + snap.ID,
			Priority: "high",
			Category: "temperature_control",
			Title:    fmt.Sprintf("⚠️ Suhu %s Di Atas Optimal", snap.Name),
			Description: fmt.Sprintf("Suhu %s°C di %s melebihi rentang optimal %s-%s°C. Penyesuaian diperlukan untuk mencapai target %s°C.",
				formatValue(snap.Temperature), snap.Name, formatValue(tempMin), formatValue(tempMax), formatValue(settings.TargetTemperature)),
			Action:           "adjust_cooling",
			Room:             snap.ID,
			Severity:         "medium",
			EstimatedImpact:  fmt.Sprintf("Penurunan %.1f°C dalam 20-30 menit", snap.Temperature-settings.TargetTemperature),
			PreservationRisk: "SEDANG - Kondisi belum optimal untuk preservasi",
			SpecificActions: []string{
				fmt.Sprintf("Turunkan setpoint AC %s sebesar 1-2°C", snap.Name),
				"Pastikan sirkulasi udara lancar",
				"Monitor progress selama 30 menit",
			},
			TrendInfo:  "Tren: " + snap.Trend,
			DataSource: dataSourceRuleBased,
			CreatedAt:  now,
		})
	case snap.Temperature < tempMin:
		recs = append(recs, models.Recommendation{
			ID:       "temp_low_" + snap.ID,
			Priority: "medium",
			Category: "temperature_control",
			Title:    fmt.Sprintf("❄️ Suhu %s Di Bawah Optimal", snap.Name),
			Description: fmt.Sprintf("Suhu %s°C di %s berada di bawah rentang optimal %s-%s°C. Penyesuaian diperlukan untuk mencapai target %s°C.",
				formatValue(snap.Temperature), snap.Name, formatValue(tempMin), formatValue(tempMax), formatValue(settings.TargetTemperature)),
			Action:           "reduce_cooling",
			Room:             snap.ID,
			Severity:         "low",
			EstimatedImpact:  fmt.Sprintf("Peningkatan %.1f°C dalam 15-25 menit", settings.TargetTemperature-snap.Temperature),
			PreservationRisk: "RENDAH - Masih dalam batas aman",
			SpecificActions: []string{
				fmt.Sprintf("Naikkan setpoint AC %s sebesar 1°C", snap.Name),
				"Atau kurangi intensitas pendinginan",
			},
			TrendInfo:  "Tren: " + snap.Trend,
			DataSource: dataSourceRuleBased,
			CreatedAt:  now,
		})
	}

	humidityMin := settings.TargetHumidity - settings.HumidityTolerance
	humidityMax := settings.TargetHumidity + settings.HumidityTolerance

	switch {
	case snap.Humidity > settings.AlertThresholdHumidity:
		recs = append(recs, models.Recommendation{
			ID:       "humidity_critical_" + snap.ID,
			Priority: "critical",
			Category: "humidity_control",
			Title:    fmt.Sprintf("🚨 CRITICAL: Kelembapan %s Berbahaya", snap.Name),
			Description: fmt.Sprintf("Kelembapan %s%% di %s melebihi ambang kritis %s%%. Risiko jamur dan kerusakan arsip sangat tinggi!",
				formatValue(snap.Humidity), snap.Name, formatValue(settings.AlertThresholdHumidity)),
			Action:           "emergency_dehumidification",
			Room:             snap.ID,
			Severity:         "critical",
			EstimatedImpact:  fmt.Sprintf("Penurunan kelembapan ke %s%% dalam 45-60 menit", formatValue(settings.TargetHumidity)),
			PreservationRisk: "SANGAT TINGGI - Jamur dapat tumbuh dalam 24-48 jam",
			SpecificActions: []string{
				fmt.Sprintf("Aktifkan dehumidifier %s ke mode maksimal", snap.Name),
				"Tingkatkan sirkulasi udara",
				"Monitor setiap 15 menit",
			},
			DataSource: dataSourceRuleBased,
			CreatedAt:  now,
		})
	case snap.Humidity > humidityMax:
		recs = append(recs, models.Recommendation{
			ID:       "humidity_high_" + snap.ID,
			Priority: "high",
			Category: "humidity_control",
			Title:    fmt.Sprintf("💧 Kelembapan %s Di Atas Optimal", snap.Name),
			Description: fmt.Sprintf("Kelembapan %s%% di %s melebihi rentang optimal %s-%s%%. Penyesuaian diperlukan untuk mencapai target %s%%.",
				formatValue(snap.Humidity), snap.Name, formatValue(humidityMin), formatValue(humidityMax), formatValue(settings.TargetHumidity)),
			Action:           "increase_dehumidification",
			Room:             snap.ID,
			Severity:         "medium",
			EstimatedImpact:  fmt.Sprintf("Penurunan %.0f%% dalam 30-45 menit", snap.Humidity-settings.TargetHumidity),
			PreservationRisk: "SEDANG - Perlu perhatian untuk mencegah kondisi memburuk",
			SpecificActions: []string{
				fmt.Sprintf("Tingkatkan setting dehumidifier %s", snap.Name),
				"Pastikan drainase berfungsi baik",
			},
			TrendInfo:  "Tren: " + snap.Trend,
			DataSource: dataSourceRuleBased,
			CreatedAt:  now,
		})
	case snap.Humidity < humidityMin:
		recs = append(recs, models.Recommendation{
			ID:       "humidity_low_" + snap.ID,
			Priority: "medium",
			Category: "humidity_control",
			Title:    fmt.Sprintf("🏜️ Kelembapan %s Di Bawah Optimal", snap.Name),
			Description: fmt.Sprintf("Kelembapan %s%% di %s berada di bawah rentang optimal %s-%s%%. Udara terlalu kering dapat merusak material arsip.",
				formatValue(snap.Humidity), snap.Name, formatValue(humidityMin), formatValue(humidityMax)),
			Action:           "reduce_dehumidification",
			Room:             snap.ID,
			Severity:         "medium",
			EstimatedImpact:  fmt.Sprintf("Peningkatan %.0f%% dalam 20-30 menit", settings.TargetHumidity-snap.Humidity),
			PreservationRisk: "SEDANG - Material kertas dapat menjadi rapuh",
			SpecificActions: []string{
				fmt.Sprintf("Kurangi setting dehumidifier %s", snap.Name),
				"Atau aktifkan humidifier jika tersedia",
				"Monitor untuk mencegah over-humidification",
			},
			TrendInfo:  "Tren: " + snap.Trend,
			DataSource: dataSourceRuleBased,
			CreatedAt:  now,
		})
	}

	return recs
}

func statusExcellent(settings models.AutomationSettings, now time.Time) models.Recommendation {
	return models.Recommendation{
		ID:       "status_excellent",
		Priority: "info",
		Category: "status",
		Title:    "✅ Sistem Berfungsi Optimal",
		Description: fmt.Sprintf("Semua ruangan berada dalam kondisi yang baik untuk preservasi arsip. Target parameter: suhu %s°C (±%s°C), kelembapan %s%% (±%s%%).",
			formatValue(settings.TargetTemperature), formatValue(settings.TemperatureTolerance),
			formatValue(settings.TargetHumidity), formatValue(settings.HumidityTolerance)),
		Action:           "maintain_current",
		Room:             "Seluruh gedung",
		EstimatedImpact:  "Preservasi arsip terjaga dengan optimal",
		PreservationRisk: "MINIMAL - Kondisi ideal untuk preservasi jangka panjang",
		SpecificActions: []string{
			"Lanjutkan monitoring rutin",
			"Pertahankan setting saat ini",
			"Monitor trend untuk early detection",
		},
		DataSource: dataSourceRuleBased,
		CreatedAt:  now,
	}
}

func generalRecommendations(settings models.AutomationSettings, now time.Time) []models.Recommendation {
	return []models.Recommendation{
		{
			ID:          "maintenance_schedule",
			Priority:    "low",
			Category:    "maintenance",
			Title:       "📅 Jadwal Maintenance Preventif",
			Description: "Lakukan maintenance preventif sistem HVAC, sensor, dan peralatan monitoring untuk memastikan performa optimal.",
			Action:      "schedule_maintenance",
			SpecificActions: []string{
				"Kalibrasi sensor suhu dan kelembapan (bulanan)",
				"Pembersihan filter AC (2 minggu sekali)",
				"Pemeriksaan sistem dehumidifier (bulanan)",
				"Backup data monitoring (harian)",
			},
			NextDue:    now.AddDate(0, 0, maintenanceDueDays).Format("2006-01-02"),
			DataSource: dataSourceRuleBased,
			CreatedAt:  now,
		},
		{
			ID:       "parameter_review",
			Priority: "low",
			Category: "optimization",
			Title:    "🔧 Review Parameter Otomasi",
			Description: fmt.Sprintf("Parameter saat ini optimal untuk preservasi arsip. Target suhu: %s°C, kelembapan: %s%%. Review berkala disarankan sesuai perubahan musim.",
				formatValue(settings.TargetTemperature), formatValue(settings.TargetHumidity)),
			Action: "quarterly_review",
			SpecificActions: []string{
				"Analisis trend bulanan suhu dan kelembapan",
				"Evaluasi efektivitas parameter saat ini",
				"Penyesuaian seasonal jika diperlukan",
			},
			NextDue:    now.AddDate(0, 0, parameterReviewDueDays).Format("2006-01-02"),
			DataSource: dataSourceRuleBased,
			CreatedAt:  now,
		},
		{
			ID:          "staff_training",
			Priority:    "low",
			Category:    "training",
			Title:       "👥 Pelatihan Staff Monitoring",
			Description: "Lakukan refresher training untuk staff mengenai prosedur monitoring mikroklimat dan respon terhadap alert preservasi.",
			Action:      "schedule_training",
			SpecificActions: []string{
				"Review prosedur respon alert kritis",
				"Simulasi penanganan kondisi darurat",
				"Update dokumentasi prosedur operasional",
			},
			NextDue:    now.AddDate(0, 0, staffTrainingDueDays).Format("2006-01-02"),
			DataSource: dataSourceRuleBased,
			CreatedAt:  now,
		},
	}
}

func buildingStatistics(snapshots []roomSnapshot, priority []models.Recommendation, settings models.AutomationSettings) RecommendationStatistics {
	stats := RecommendationStatistics{
		TotalRoomsMonitored: len(snapshots),
	}
	for _, rec := range priority {
		if rec.Priority == "critical" {
			stats.RoomsCritical++
		}
	}
	if len(snapshots) == 0 {
		return stats
	}

	var tempSum, humSum float64
	for _, snap := range snapshots {
		tempSum += snap.Temperature
		humSum += snap.Humidity
		if roomOptimal(snap, settings) {
			stats.RoomsOptimal++
		}
	}
	stats.AvgTemperature = floatPtr(round1(tempSum / float64(len(snapshots))))
	stats.AvgHumidity = floatPtr(round1(humSum / float64(len(snapshots))))
	return stats
}

func roomOptimal(snap roomSnapshot, settings models.AutomationSettings) bool {
	tempOK := snap.Temperature >= settings.TargetTemperature-settings.TemperatureTolerance &&
		snap.Temperature <= settings.TargetTemperature+settings.TemperatureTolerance
	humOK := snap.Humidity >= settings.TargetHumidity-settings.HumidityTolerance &&
		snap.Humidity <= settings.TargetHumidity+settings.HumidityTolerance
	return tempOK && humOK
}

// buildingInsights scores the building from per-room band compliance
// and estimates how much HVAC energy the deviations cost.
func buildingInsights(snapshots []roomSnapshot, settings models.AutomationSettings) BuildingInsights {
	insights := BuildingInsights{
		RoomsAnalyzed: len(snapshots),
		CriticalRooms: []string{},
	}
	if len(snapshots) == 0 {
		insights.PerformanceRating = "no_data"
		return insights
	}

	var tempInBand, humInBand int
	var energyPct float64
	for _, snap := range snapshots {
		tempLo := settings.TargetTemperature - settings.TemperatureTolerance
		tempHi := settings.TargetTemperature + settings.TemperatureTolerance
		if snap.Temperature >= tempLo && snap.Temperature <= tempHi {
			tempInBand++
		}
		humLo := settings.TargetHumidity - settings.HumidityTolerance
		humHi := settings.TargetHumidity + settings.HumidityTolerance
		if snap.Humidity >= humLo && snap.Humidity <= humHi {
			humInBand++
		}
		if snap.Temperature > settings.AlertThresholdTemp || snap.Humidity > settings.AlertThresholdHumidity {
			insights.CriticalRooms = append(insights.CriticalRooms, snap.ID)
		}

		deviation := snap.Temperature - settings.TargetTemperature
		if deviation < 0 {
			deviation = -deviation
		}
		if excess := deviation - settings.TemperatureTolerance; excess > 0 {
			energyPct += excess * energyPercentPerDegree
		}
	}

	n := float64(len(snapshots))
	tempFraction := float64(tempInBand) / n
	humFraction := float64(humInBand) / n
	insights.PerformanceScore = round1((tempFraction + humFraction) / 2 * 100)

	switch {
	case insights.PerformanceScore >= 90:
		insights.PerformanceRating = "excellent"
	case insights.PerformanceScore >= 75:
		insights.PerformanceRating = "good"
	case insights.PerformanceScore >= 50:
		insights.PerformanceRating = "fair"
	default:
		insights.PerformanceRating = "poor"
	}

	insights.EnergyOptimizationPct = round1(energyPct)
	insights.EnergyReviewRecommended = insights.EnergyOptimizationPct > energyReviewThreshold
	return insights
}

// formatValue prints a float the way operators read it: no trailing
// zeros, full precision otherwise.
func formatValue(v float64) string {
	return fmt.Sprintf("%g", v)
}
