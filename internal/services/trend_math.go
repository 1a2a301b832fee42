package services

import (
	"math"
	"sort"

	"archive-twin/internal/models"
)

// stableSlopeThreshold separates "stable" from a real drift.
const stableSlopeThreshold = 0.01

// anomalySigma is the deviation multiplier for anomaly flagging.
const anomalySigma = 2.0

// CalculateTrendAnalysis runs the full analysis over an ordered series.
// Fewer than two samples cannot carry a trend.
func CalculateTrendAnalysis(values []float64, period string) models.TrendAnalysis {
	if len(values) < 2 {
		return models.TrendAnalysis{
			TrendDirection: "insufficient_data",
			MovingAverages: []float64{},
			Anomalies:      []models.Anomaly{},
		}
	}

	slope := linearSlope(values)
	correlation := pearsonWithIndex(values)

	direction := "stable"
	if math.Abs(slope) >= stableSlopeThreshold {
		if slope > 0 {
			direction = "increasing"
		} else {
			direction = "decreasing"
		}
	}

	window := 7
	if period == "hourly" {
		window = 3
	}
	if window > len(values)-1 {
		window = len(values) - 1
	}

	m := mean(values)
	sd := stddev(values, m)

	anomalies := []models.Anomaly{}
	threshold := anomalySigma * sd
	for i, v := range values {
		if dev := math.Abs(v - m); dev > threshold && threshold > 0 {
			anomalies = append(anomalies, models.Anomaly{
				Index:     i,
				Value:     round1(v),
				Deviation: round1(dev),
			})
		}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return models.TrendAnalysis{
		TrendDirection: direction,
		Slope:          math.Round(slope*10000) / 10000,
		Correlation:    math.Round(correlation*1000) / 1000,
		MovingAverages: movingAverage(values, window),
		Volatility:     round2(sd),
		Anomalies:      anomalies,
		Statistics: &models.TrendStatistics{
			Mean:   round1(m),
			Median: round1(percentile(sorted, 50)),
			Std:    round2(sd),
			Min:    round1(sorted[0]),
			Max:    round1(sorted[len(sorted)-1]),
			Q25:    round1(percentile(sorted, 25)),
			Q75:    round1(percentile(sorted, 75)),
		},
	}
}

// ComparePeriods contrasts two windows by their means. Change below 1%
// counts as stable; significance tiers at 5% and 10%.
func ComparePeriods(current, previous []float64) models.PeriodComparison {
	if len(current) == 0 || len(previous) == 0 {
		return models.PeriodComparison{
			ChangeDirection: "insufficient_data",
			Significance:    "unknown",
		}
	}

	currentMean := mean(current)
	previousMean := mean(previous)

	var changePct float64
	if previousMean != 0 {
		changePct = (currentMean - previousMean) / previousMean * 100
	}

	direction := "stable"
	if math.Abs(changePct) >= 1 {
		if changePct > 0 {
			direction = "increased"
		} else {
			direction = "decreased"
		}
	}

	significance := "low"
	switch {
	case math.Abs(changePct) > 10:
		significance = "high"
	case math.Abs(changePct) > 5:
		significance = "moderate"
	}

	return models.PeriodComparison{
		ChangePercentage:  round2(changePct),
		ChangeDirection:   direction,
		Significance:      significance,
		CurrentAverage:    round1(currentMean),
		ComparisonAverage: round1(previousMean),
		AbsoluteChange:    round1(currentMean - previousMean),
	}
}

// linearSlope is the least-squares slope against the sample index.
func linearSlope(values []float64) float64 {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// pearsonWithIndex is the correlation between the series and its index.
func pearsonWithIndex(values []float64) float64 {
	n := len(values)
	xMean := float64(n-1) / 2
	yMean := mean(values)

	var cov, varX, varY float64
	for i, v := range values {
		dx := float64(i) - xMean
		dy := v - yMean
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// movingAverage is a trailing window mean; the first window-1 positions
// produce no output.
func movingAverage(values []float64, window int) []float64 {
	if window < 1 || window > len(values) {
		return []float64{}
	}
	out := make([]float64, 0, len(values)-window+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out = append(out, round1(sum/float64(window)))
		}
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64, m float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// percentile uses linear interpolation on a pre-sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
