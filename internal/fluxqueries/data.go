package fluxqueries

import "fmt"

// SensorData builds the general pivoted data query. When an aggregation
// stage is active the pivot row keys shrink to the declared tags, since
// aggregateWindow collapses anything finer.
func SensorData(bucket, rangeFilter, filterExpression, aggregationClause string, limit int) string {
	rowKey := `["_time", "device_id", "location", "source_ip"]`
	if aggregationClause != "" {
		rowKey = `["_time", "device_id", "location"]`
	}
	return fmt.Sprintf(`from(bucket: "%s")
  |> range(%s)
  |> filter(fn: (r) => %s)
  %s
  |> pivot(rowKey: %s, columnKey: ["_field"], valueColumn: "_value")
  |> limit(n: %d)`, bucket, rangeFilter, filterExpression, aggregationClause, rowKey, limit)
}

// UniqueDevices lists the devices that reported within the lookback
// period.
func UniqueDevices(bucket, lookbackPeriod string) string {
	return fmt.Sprintf(`from(bucket: "%s")
  |> range(start: %s)
  |> filter(fn: (r) => r._measurement == "sensor_reading")
  |> distinct(column: "device_id")
  |> group()
  |> map(fn: (r) => ({
      device_id: r.device_id,
      location: r.location
  }))`, bucket, lookbackPeriod)
}

// DeviceHistory builds the hourly history for a single logger.
func DeviceHistory(bucket, deviceID, lookbackPeriod, field string) string {
	return fmt.Sprintf(`from(bucket: "%s")
  |> range(start: %s)
  |> filter(fn: (r) => r._measurement == "sensor_reading" and r.device_id == "%s" and r._field == "%s")
  |> aggregateWindow(every: 1h, fn: mean, createEmpty: false)
  |> yield(name: "mean")`, bucket, lookbackPeriod, escape(deviceID), field)
}

// LatestForecast returns the most recent forecast rows written by the
// BMKG collector, pivoted so each timestamp yields one record.
func LatestForecast(bucket, kodeWilayah string, lookbackPeriod string) string {
	return fmt.Sprintf(`from(bucket: "%s")
  |> range(start: %s)
  |> filter(fn: (r) => r._measurement == "bmkg_weather_forecast")
  |> filter(fn: (r) => r.kode_wilayah == "%s")
  |> pivot(rowKey: ["_time", "weather_desc", "weather_desc_en", "wd", "local_datetime"], columnKey: ["_field"], valueColumn: "_value")
  |> sort(columns: ["_time"])`, bucket, lookbackPeriod, escape(kodeWilayah))
}
