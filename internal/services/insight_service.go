package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	ErrInvalidInsightParameter = errors.New("parameter must be 'temperature' or 'humidity'")
	ErrInvalidInsightPeriod    = errors.New("period must be 'day', 'week' or 'month'")
)

const (
	dataSourceGemini   = "gemini_ai"
	dataSourceFallback = "rule_based_fallback"
	analysisVersion    = "1.0"
)

// InsightGenerator is the AI slice the service consumes. The Gemini
// client satisfies it; nil means the rule-based fallback runs.
type InsightGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (map[string]any, error)
}

// Insight is the structured analysis of one parameter. Field names
// follow the operator-facing wire format.
type Insight struct {
	StatusKondisi               string    `json:"status_kondisi"`
	TingkatRisiko               string    `json:"tingkat_risiko"`
	RingkasanKondisi            string    `json:"ringkasan_kondisi"`
	DampakPreservasi            string    `json:"dampak_preservasi"`
	TrenPrediksi                string    `json:"tren_prediksi"`
	RekomendasiAksi             []string  `json:"rekomendasi_aksi"`
	PrioritasTindakan           string    `json:"prioritas_tindakan"`
	EstimasiDampakJangkaPanjang string    `json:"estimasi_dampak_jangka_panjang"`
	ConfidenceLevel             string    `json:"confidence_level"`
	GeneratedAt                 time.Time `json:"generated_at"`
	DataSource                  string    `json:"data_source"`
	ParameterAnalyzed           string    `json:"parameter_analyzed"`
	DataPointsAnalyzed          int       `json:"data_points_analyzed"`
	AnalysisVersion             string    `json:"analysis_version"`
}

// TrendSummaryBlock echoes the analyzed trend next to the insight.
type TrendSummaryBlock struct {
	DataPoints     int    `json:"data_points"`
	Analysis       any    `json:"analysis"`
	PeriodAnalyzed string `json:"period_analyzed"`
}

type ClimateInsightsResponse struct {
	Parameter    string            `json:"parameter"`
	Period       string            `json:"period"`
	Location     string            `json:"location"`
	TrendSummary TrendSummaryBlock `json:"trend_summary"`
	Insights     Insight           `json:"insights"`
	AIConfidence string            `json:"ai_confidence"`
	GeneratedAt  time.Time         `json:"generated_at"`
	DataSource   string            `json:"data_source"`
}

type ContributingFactors struct {
	TemperatureRisk  string `json:"temperature_risk"`
	HumidityRisk     string `json:"humidity_risk"`
	TemperatureScore int    `json:"temperature_score"`
	HumidityScore    int    `json:"humidity_score"`
}

type CombinedRisk struct {
	OverallRiskLevel    string              `json:"overall_risk_level"`
	RiskScore           float64             `json:"risk_score"`
	SeverityDescription string              `json:"severity_description"`
	PrimaryConcern      string              `json:"primary_concern"`
	ContributingFactors ContributingFactors `json:"contributing_factors"`
}

type OverallRecommendation struct {
	Urgency        string `json:"urgency"`
	ActionRequired string `json:"action_required"`
	FocusArea      string `json:"focus_area"`
	Timeline       string `json:"timeline"`
	Escalation     string `json:"escalation"`
}

type PreservationRiskResponse struct {
	Location               string                `json:"location"`
	AnalysisPeriod         string                `json:"analysis_period"`
	TemperatureAnalysis    Insight               `json:"temperature_analysis"`
	HumidityAnalysis       Insight               `json:"humidity_analysis"`
	CombinedRiskAssessment CombinedRisk          `json:"combined_risk_assessment"`
	OverallRecommendation  OverallRecommendation `json:"overall_recommendation"`
	GeneratedAt            time.Time             `json:"generated_at"`
}

type ActionBuckets struct {
	ImmediateActions  []string `json:"immediate_actions"`
	ShortTermActions  []string `json:"short_term_actions"`
	LongTermActions   []string `json:"long_term_actions"`
	MonitoringActions []string `json:"monitoring_actions"`
}

type ActionableRecommendationsResponse struct {
	Parameter        string        `json:"parameter"`
	Location         string        `json:"location"`
	RiskLevel        string        `json:"risk_level"`
	PriorityLevel    string        `json:"priority_level"`
	Status           string        `json:"status"`
	Recommendations  ActionBuckets `json:"recommendations"`
	ImpactAssessment string        `json:"impact_assessment"`
	Confidence       string        `json:"confidence"`
	GeneratedAt      time.Time     `json:"generated_at"`
}

type IInsightService interface {
	GetClimateInsights(ctx context.Context, parameter, period, location string) (ClimateInsightsResponse, error)
	GetPreservationRisk(ctx context.Context, location string) (PreservationRiskResponse, error)
	GetActionableRecommendations(ctx context.Context, parameter, location string) (ActionableRecommendationsResponse, error)
}

type insightService struct {
	trends ITrendService
	ai     InsightGenerator
}

func NewInsightService(trends ITrendService, ai InsightGenerator) IInsightService {
	if ai == nil {
		log.Println("No AI client configured, insights will use the rule-based fallback")
	}
	return &insightService{trends: trends, ai: ai}
}

// parameterDomain holds the archival preservation bands of one
// parameter, per ISO 11799 and ASHRAE guidance.
type parameterDomain struct {
	Unit          string
	OptimalRange  string
	CriticalLow   string
	CriticalHigh  string
	ArchiveImpact string

	optLo, optHi   float64
	critLo, critHi float64
}

var parameterDomains = map[string]parameterDomain{
	"temperature": {
		Unit:          "°C",
		OptimalRange:  "18-22°C",
		CriticalLow:   "15°C",
		CriticalHigh:  "25°C",
		ArchiveImpact: "suhu tinggi mempercepat deteriorasi, suhu rendah dapat menyebabkan kondensasi",
		optLo:         18, optHi: 22, critLo: 15, critHi: 25,
	},
	"humidity": {
		Unit:          "%",
		OptimalRange:  "45-55%",
		CriticalLow:   "35%",
		CriticalHigh:  "65%",
		ArchiveImpact: "kelembapan tinggi menyebabkan jamur dan bakteri, kelembapan rendah membuat dokumen rapuh",
		optLo:         45, optHi: 55, critLo: 35, critHi: 65,
	},
}

var riskScores = map[string]int{"rendah": 1, "sedang": 2, "tinggi": 3, "kritis": 4}

func validInsightParameter(parameter string) bool {
	_, ok := parameterDomains[parameter]
	return ok
}

func (s *insightService) trendForPeriod(ctx context.Context, parameter, period, location string) (TrendResponse, error) {
	switch period {
	case "day":
		return s.trends.GetHourlyTrend(ctx, parameter, location, 24)
	case "week":
		return s.trends.GetDailyTrend(ctx, parameter, location, 7)
	case "month":
		return s.trends.GetMonthlyTrend(ctx, parameter, location, 30)
	}
	return TrendResponse{}, ErrInvalidInsightPeriod
}

func (s *insightService) GetClimateInsights(ctx context.Context, parameter, period, location string) (ClimateInsightsResponse, error) {
	if !validInsightParameter(parameter) {
		return ClimateInsightsResponse{}, ErrInvalidInsightParameter
	}
	trend, err := s.trendForPeriod(ctx, parameter, period, location)
	if err != nil {
		return ClimateInsightsResponse{}, err
	}

	insight := s.generateInsight(ctx, trend, parameter)
	return ClimateInsightsResponse{
		Parameter: parameter,
		Period:    period,
		Location:  normalizeLocation(location),
		TrendSummary: TrendSummaryBlock{
			DataPoints:     trend.DataPoints,
			Analysis:       trend.Analysis,
			PeriodAnalyzed: trend.Period,
		},
		Insights:     insight,
		AIConfidence: insight.ConfidenceLevel,
		GeneratedAt:  insight.GeneratedAt,
		DataSource:   insight.DataSource,
	}, nil
}

func (s *insightService) GetPreservationRisk(ctx context.Context, location string) (PreservationRiskResponse, error) {
	tempTrend, err := s.trends.GetDailyTrend(ctx, "temperature", location, 7)
	if err != nil {
		return PreservationRiskResponse{}, err
	}
	humidityTrend, err := s.trends.GetDailyTrend(ctx, "humidity", location, 7)
	if err != nil {
		return PreservationRiskResponse{}, err
	}

	tempInsight := s.generateInsight(ctx, tempTrend, "temperature")
	humidityInsight := s.generateInsight(ctx, humidityTrend, "humidity")
	combined := combinePreservationRisk(tempInsight, humidityInsight)

	return PreservationRiskResponse{
		Location:               normalizeLocation(location),
		AnalysisPeriod:         "7_days",
		TemperatureAnalysis:    tempInsight,
		HumidityAnalysis:       humidityInsight,
		CombinedRiskAssessment: combined,
		OverallRecommendation:  overallRecommendation(combined),
		GeneratedAt:            tempInsight.GeneratedAt,
	}, nil
}

func (s *insightService) GetActionableRecommendations(ctx context.Context, parameter, location string) (ActionableRecommendationsResponse, error) {
	if !validInsightParameter(parameter) {
		return ActionableRecommendationsResponse{}, ErrInvalidInsightParameter
	}
	trend, err := s.trends.GetHourlyTrend(ctx, parameter, location, 24)
	if err != nil {
		return ActionableRecommendationsResponse{}, err
	}

	insight := s.generateInsight(ctx, trend, parameter)

	buckets := ActionBuckets{
		ImmediateActions:  []string{},
		ShortTermActions:  []string{},
		LongTermActions:   []string{},
		MonitoringActions: []string{},
	}
	actions := insight.RekomendasiAksi
	switch insight.PrioritasTindakan {
	case "immediate":
		if len(actions) >= 2 {
			buckets.ImmediateActions = actions[:2]
			buckets.ShortTermActions = actions[2:]
		} else {
			buckets.ImmediateActions = actions
		}
	case "urgent":
		if len(actions) >= 2 {
			buckets.ShortTermActions = actions[:2]
			buckets.LongTermActions = actions[2:]
		} else {
			buckets.ShortTermActions = actions
		}
	default:
		buckets.MonitoringActions = append(buckets.MonitoringActions, actions...)
	}
	buckets.MonitoringActions = append(buckets.MonitoringActions,
		"Catat pembacaan sensor secara berkala",
		"Review trend data mingguan",
		"Dokumentasikan perubahan kondisi signifikan",
	)

	return ActionableRecommendationsResponse{
		Parameter:        parameter,
		Location:         normalizeLocation(location),
		RiskLevel:        insight.TingkatRisiko,
		PriorityLevel:    insight.PrioritasTindakan,
		Status:           insight.StatusKondisi,
		Recommendations:  buckets,
		ImpactAssessment: insight.DampakPreservasi,
		Confidence:       insight.ConfidenceLevel,
		GeneratedAt:      insight.GeneratedAt,
	}, nil
}

// generateInsight asks the AI model and falls back to the rule-based
// analysis on any failure. The result always carries its data source.
func (s *insightService) generateInsight(ctx context.Context, trend TrendResponse, parameter string) Insight {
	if s.ai == nil {
		return fallbackInsight(trend, parameter)
	}

	prompt := buildAnalysisPrompt(trend, parameter)
	raw, err := s.ai.GenerateJSON(ctx, prompt)
	if err != nil {
		log.Printf("AI insight generation failed, using fallback: %v", err)
		return fallbackInsight(trend, parameter)
	}

	insight, err := decodeInsight(raw)
	if err != nil {
		log.Printf("AI insight response unusable, using fallback: %v", err)
		return fallbackInsight(trend, parameter)
	}

	insight.GeneratedAt = time.Now()
	insight.DataSource = dataSourceGemini
	insight.ParameterAnalyzed = parameter
	insight.DataPointsAnalyzed = trend.DataPoints
	insight.AnalysisVersion = analysisVersion
	return insight
}

func decodeInsight(raw map[string]any) (Insight, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return Insight{}, err
	}
	var insight Insight
	if err := json.Unmarshal(data, &insight); err != nil {
		return Insight{}, err
	}
	if insight.StatusKondisi == "" || insight.TingkatRisiko == "" {
		return Insight{}, errors.New("missing status_kondisi or tingkat_risiko")
	}
	return insight, nil
}

func buildAnalysisPrompt(trend TrendResponse, parameter string) string {
	domain := parameterDomains[parameter]

	var mean, min, max, std float64
	if stats := trend.Analysis.Statistics; stats != nil {
		mean, min, max, std = stats.Mean, stats.Min, stats.Max, stats.Std
	}
	recent := trend.Values
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Anda adalah ahli preservasi arsip dan klimatologi. Analisis data %s berikut untuk gedung arsip:\n\n", parameter)
	b.WriteString("DATA KLIMAT:\n")
	fmt.Fprintf(&b, "- Parameter: %s (%s)\n", parameter, domain.Unit)
	fmt.Fprintf(&b, "- Periode: %s\n", trend.Period)
	fmt.Fprintf(&b, "- Lokasi: %s\n", trend.Location)
	fmt.Fprintf(&b, "- Jumlah data: %d titik\n", trend.DataPoints)
	fmt.Fprintf(&b, "- Rata-rata: %.1f%s\n", mean, domain.Unit)
	fmt.Fprintf(&b, "- Minimum: %.1f%s\n", min, domain.Unit)
	fmt.Fprintf(&b, "- Maksimum: %.1f%s\n", max, domain.Unit)
	fmt.Fprintf(&b, "- Standar deviasi: %.1f\n", std)
	fmt.Fprintf(&b, "- Volatilitas: %.1f\n", trend.Analysis.Volatility)
	fmt.Fprintf(&b, "- Tren: %s (slope: %.4f)\n", trend.Analysis.TrendDirection, trend.Analysis.Slope)
	fmt.Fprintf(&b, "- Korelasi: %.3f\n", trend.Analysis.Correlation)
	fmt.Fprintf(&b, "- Nilai terbaru: %v\n\n", recent)
	b.WriteString("STANDAR PRESERVASI ARSIP:\n")
	fmt.Fprintf(&b, "- Rentang optimal: %s\n", domain.OptimalRange)
	fmt.Fprintf(&b, "- Batas kritis rendah: %s\n", domain.CriticalLow)
	fmt.Fprintf(&b, "- Batas kritis tinggi: %s\n", domain.CriticalHigh)
	fmt.Fprintf(&b, "- Dampak: %s\n\n", domain.ArchiveImpact)
	b.WriteString(`Berikan analisis dalam format JSON dengan struktur:
{
    "status_kondisi": "optimal|warning|critical",
    "tingkat_risiko": "rendah|sedang|tinggi|kritis",
    "ringkasan_kondisi": "ringkasan singkat kondisi saat ini",
    "dampak_preservasi": "analisis dampak terhadap preservasi arsip",
    "tren_prediksi": "prediksi tren kedepan berdasarkan data",
    "rekomendasi_aksi": ["rekomendasi 1", "rekomendasi 2", "rekomendasi 3"],
    "prioritas_tindakan": "immediate|urgent|scheduled|monitoring",
    "estimasi_dampak_jangka_panjang": "analisis dampak jangka panjang jika kondisi tidak diperbaiki",
    "confidence_level": "tinggi|sedang|rendah"
}

Pastikan analisis berdasarkan standar internasional preservasi arsip (ISO 11799, ASHRAE, dll).`)
	return b.String()
}

// fallbackInsight grades the mean against the preservation bands when
// no AI verdict is available.
func fallbackInsight(trend TrendResponse, parameter string) Insight {
	domain := parameterDomains[parameter]

	var mean float64
	if stats := trend.Analysis.Statistics; stats != nil {
		mean = stats.Mean
	}

	status := "optimal"
	risk := "rendah"
	switch {
	case mean < domain.critLo || mean > domain.critHi:
		status = "critical"
		risk = "tinggi"
	case mean < domain.optLo || mean > domain.optHi:
		status = "warning"
		risk = "sedang"
	}

	priority := "monitoring"
	if status != "optimal" {
		priority = "urgent"
	}

	direction := trend.Analysis.TrendDirection
	if direction == "" {
		direction = "stable"
	}

	return Insight{
		StatusKondisi:    status,
		TingkatRisiko:    risk,
		RingkasanKondisi: fmt.Sprintf("Kondisi %s saat ini %s dengan rata-rata %.1f", parameter, status, mean),
		DampakPreservasi: fmt.Sprintf("Volatilitas %.1f menunjukkan tingkat stabilitas kondisi", trend.Analysis.Volatility),
		TrenPrediksi:     fmt.Sprintf("Tren %s berdasarkan data historis", direction),
		RekomendasiAksi: []string{
			"Monitor kondisi secara berkala",
			"Periksa sistem HVAC jika nilai diluar optimal",
			"Dokumentasikan perubahan signifikan",
		},
		PrioritasTindakan:           priority,
		EstimasiDampakJangkaPanjang: "Memerlukan monitoring berkelanjutan",
		ConfidenceLevel:             "sedang",
		GeneratedAt:                 time.Now(),
		DataSource:                  dataSourceFallback,
		ParameterAnalyzed:           parameter,
		DataPointsAnalyzed:          trend.DataPoints,
		AnalysisVersion:             analysisVersion,
	}
}

func combinePreservationRisk(tempInsight, humidityInsight Insight) CombinedRisk {
	tempScore := riskScore(tempInsight.TingkatRisiko)
	humidityScore := riskScore(humidityInsight.TingkatRisiko)

	score := float64(tempScore)*0.4 + float64(humidityScore)*0.6

	level := "rendah"
	severity := "Risiko kerusakan arsip minimal"
	switch {
	case score >= 3.5:
		level = "kritis"
		severity = "Risiko kerusakan arsip sangat tinggi"
	case score >= 2.5:
		level = "tinggi"
		severity = "Risiko kerusakan arsip tinggi"
	case score >= 1.5:
		level = "sedang"
		severity = "Risiko kerusakan arsip moderat"
	}

	primaryConcern := "temperature"
	if humidityScore > tempScore {
		primaryConcern = "humidity"
	}

	return CombinedRisk{
		OverallRiskLevel:    level,
		RiskScore:           round2(score),
		SeverityDescription: severity,
		PrimaryConcern:      primaryConcern,
		ContributingFactors: ContributingFactors{
			TemperatureRisk:  tempInsight.TingkatRisiko,
			HumidityRisk:     humidityInsight.TingkatRisiko,
			TemperatureScore: tempScore,
			HumidityScore:    humidityScore,
		},
	}
}

func riskScore(risk string) int {
	if score, ok := riskScores[risk]; ok {
		return score
	}
	return 1
}

func overallRecommendation(combined CombinedRisk) OverallRecommendation {
	switch combined.OverallRiskLevel {
	case "kritis":
		return OverallRecommendation{
			Urgency:        "immediate",
			ActionRequired: "Tindakan darurat diperlukan",
			FocusArea:      "Prioritas utama: stabilisasi " + combined.PrimaryConcern,
			Timeline:       "Dalam 24 jam",
			Escalation:     "Hubungi tim maintenance segera",
		}
	case "tinggi":
		return OverallRecommendation{
			Urgency:        "urgent",
			ActionRequired: "Tindakan perbaikan segera",
			FocusArea:      "Fokus pada optimisasi " + combined.PrimaryConcern,
			Timeline:       "Dalam 48-72 jam",
			Escalation:     "Koordinasi dengan tim operasional",
		}
	case "sedang":
		return OverallRecommendation{
			Urgency:        "scheduled",
			ActionRequired: "Perencanaan perbaikan",
			FocusArea:      "Monitor dan sesuaikan " + combined.PrimaryConcern,
			Timeline:       "Dalam 1 minggu",
			Escalation:     "Review rutin dengan supervisor",
		}
	}
	return OverallRecommendation{
		Urgency:        "monitoring",
		ActionRequired: "Monitoring berkelanjutan",
		FocusArea:      "Pertahankan kondisi optimal",
		Timeline:       "Review bulanan",
		Escalation:     "Laporan rutin",
	}
}
