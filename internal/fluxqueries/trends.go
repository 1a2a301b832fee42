package fluxqueries

import "fmt"

// HourlyAggregated builds the per-hour mean series used by trend
// analysis.
func HourlyAggregated(bucket, parameter, locationFilter string, hours int) string {
	return fmt.Sprintf(`from(bucket: "%s")
  |> range(start: -%dh)
  |> filter(fn: (r) => r["_measurement"] == "sensor_reading")
  |> filter(fn: (r) => r["_field"] == "%s"%s)
  |> aggregateWindow(every: 1h, fn: mean, createEmpty: false)
  |> group()
  |> sort(columns: ["_time"])
  |> yield(name: "hourly_data")`, bucket, hours, parameter, locationFilter)
}

// DailyAggregated builds the per-day mean series.
func DailyAggregated(bucket, parameter, locationFilter string, days int) string {
	return fmt.Sprintf(`from(bucket: "%s")
  |> range(start: -%dd)
  |> filter(fn: (r) => r["_measurement"] == "sensor_reading")
  |> filter(fn: (r) => r["_field"] == "%s"%s)
  |> aggregateWindow(every: 1d, fn: mean, createEmpty: false)
  |> group()
  |> sort(columns: ["_time"])
  |> yield(name: "daily_data")`, bucket, days, parameter, locationFilter)
}

// ComparativePeriod builds the two-window comparison: the current period
// against the equally long period immediately before it, both as daily
// series.
func ComparativePeriod(bucket, parameter, locationFilter string, periodDays int) string {
	return fmt.Sprintf(`from(bucket: "%[1]s")
  |> range(start: -%[4]dd)
  |> filter(fn: (r) => r["_measurement"] == "sensor_reading")
  |> filter(fn: (r) => r["_field"] == "%[2]s"%[3]s)
  |> aggregateWindow(every: 1d, fn: mean, createEmpty: false)
  |> group()
  |> sort(columns: ["_time"])
  |> yield(name: "current_period")

from(bucket: "%[1]s")
  |> range(start: -%[5]dd, stop: -%[4]dd)
  |> filter(fn: (r) => r["_measurement"] == "sensor_reading")
  |> filter(fn: (r) => r["_field"] == "%[2]s"%[3]s)
  |> aggregateWindow(every: 1d, fn: mean, createEmpty: false)
  |> group()
  |> sort(columns: ["_time"])
  |> yield(name: "previous_period")`, bucket, parameter, locationFilter, periodDays, periodDays*2)
}

// PeakValley builds local maxima and minima over 3-hour windows.
func PeakValley(bucket, parameter, locationFilter, period string) string {
	return fmt.Sprintf(`data = from(bucket: "%s")
  |> range(start: -%s)
  |> filter(fn: (r) => r["_measurement"] == "sensor_reading")
  |> filter(fn: (r) => r["_field"] == "%s"%s)
  |> aggregateWindow(every: 1h, fn: mean, createEmpty: false)
  |> sort(columns: ["_time"])

data
  |> window(every: 3h, period: 3h)
  |> max()
  |> yield(name: "peaks")

data
  |> window(every: 3h, period: 3h)
  |> min()
  |> yield(name: "valleys")`, bucket, period, parameter, locationFilter)
}
