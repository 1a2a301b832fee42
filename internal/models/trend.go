package models

// TrendStatistics is the descriptive summary of a series.
type TrendStatistics struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Anomaly marks a sample further than two standard deviations from the
// series mean.
type Anomaly struct {
	Index     int     `json:"index"`
	Value     float64 `json:"value"`
	Deviation float64 `json:"deviation"`
}

// TrendAnalysis is the analytical result for a series of aggregated
// samples.
type TrendAnalysis struct {
	TrendDirection string           `json:"trend_direction"`
	Slope          float64          `json:"slope"`
	Correlation    float64          `json:"correlation"`
	MovingAverages []float64        `json:"moving_averages"`
	Volatility     float64          `json:"volatility"`
	Anomalies      []Anomaly        `json:"anomalies"`
	Statistics     *TrendStatistics `json:"statistics,omitempty"`
}

// PeriodComparison contrasts the current window with the preceding one.
type PeriodComparison struct {
	ChangePercentage  float64 `json:"change_percentage"`
	ChangeDirection   string  `json:"change_direction"`
	Significance      string  `json:"significance"`
	CurrentAverage    float64 `json:"current_average,omitempty"`
	ComparisonAverage float64 `json:"comparison_average,omitempty"`
	AbsoluteChange    float64 `json:"absolute_change,omitempty"`
}
