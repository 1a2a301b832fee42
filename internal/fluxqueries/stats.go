package fluxqueries

import "fmt"

// fieldStatsBlock renders the average-of-device-means pipeline for one
// field. Each device contributes its own mean first so that chatty
// loggers cannot dominate the building-wide figure.
func fieldStatsBlock(bucket, rangeFilter, locationFilter, field string) string {
	return fmt.Sprintf(`%[4]s = from(bucket: "%[1]s")
  |> range(%[2]s)
  |> filter(fn: (r) => r._measurement == "sensor_reading" and r._field == "%[4]s"%[3]s)
  |> group(columns: ["location", "device_id"])
  |> mean()
  |> group()
  |> map(fn: (r) => ({
      _measurement: "%[4]s",
      avg: r._value,
      min: r._value,
      max: r._value,
      sample_count: 1.0
  }))
  |> reduce(
      identity: {avg: 0.0, min: 1000.0, max: -1000.0, count: 0.0},
      fn: (r, accumulator) => ({
          avg: accumulator.avg + r.avg,
          min: if r.min < accumulator.min then r.min else accumulator.min,
          max: if r.max > accumulator.max then r.max else accumulator.max,
          count: accumulator.count + r.sample_count
      })
  )
  |> map(fn: (r) => ({
      _measurement: "%[4]s",
      avg: if r.count > 0.0 then r.avg / r.count else 0.0,
      min: if r.count > 0.0 then r.min else 0.0,
      max: if r.count > 0.0 then r.max else 0.0,
      sample_count: r.count
  }))`, bucket, rangeFilter, locationFilter, field)
}

// FieldStats builds the statistics query for a single field
// (temperature or humidity).
func FieldStats(bucket, rangeFilter, locationFilter, field string) string {
	return fieldStatsBlock(bucket, rangeFilter, locationFilter, field) + "\n\n" + field
}

// EnvironmentalStats unions temperature and humidity statistics into a
// single result keyed by _measurement.
func EnvironmentalStats(bucket, rangeFilter, locationFilter string) string {
	return fieldStatsBlock(bucket, rangeFilter, locationFilter, "temperature") +
		"\n\n" +
		fieldStatsBlock(bucket, rangeFilter, locationFilter, "humidity") +
		"\n\nunion(tables: [temperature, humidity])"
}

// AverageLastHour builds the building-wide average of per-device means
// over the last hour.
func AverageLastHour(bucket, field string) string {
	return fmt.Sprintf(`from(bucket: "%s")
  |> range(start: -1h)
  |> filter(fn: (r) => r["_measurement"] == "sensor_reading")
  |> filter(fn: (r) => r["_field"] == "%s")
  |> group(columns: ["location", "device_id"])
  |> mean()
  |> group()
  |> mean(column: "_value")`, bucket, field)
}

// MinLastHour builds the global minimum over the last hour.
func MinLastHour(bucket, field string) string {
	return fmt.Sprintf(`from(bucket: "%s")
  |> range(start: -1h)
  |> filter(fn: (r) => r["_measurement"] == "sensor_reading")
  |> filter(fn: (r) => r["_field"] == "%s")
  |> group()
  |> min(column: "_value")`, bucket, field)
}

// MaxLastHour builds the global maximum over the last hour.
func MaxLastHour(bucket, field string) string {
	return fmt.Sprintf(`from(bucket: "%s")
  |> range(start: -1h)
  |> filter(fn: (r) => r["_measurement"] == "sensor_reading")
  |> filter(fn: (r) => r["_field"] == "%s")
  |> group()
  |> max(column: "_value")`, bucket, field)
}

// StatsLastHour builds avg, min, max and sample count over the raw
// samples of the last hour.
func StatsLastHour(bucket, field string) string {
	return fmt.Sprintf(`from(bucket: "%[1]s")
  |> range(start: -1h)
  |> filter(fn: (r) => r["_measurement"] == "sensor_reading")
  |> filter(fn: (r) => r["_field"] == "%[2]s")
  |> group()
  |> reduce(
      identity: {avg: 0.0, min: 1000.0, max: -1000.0, count: 0.0},
      fn: (r, accumulator) => ({
          avg: accumulator.avg + r._value,
          min: if r._value < accumulator.min then r._value else accumulator.min,
          max: if r._value > accumulator.max then r._value else accumulator.max,
          count: accumulator.count + 1.0
      })
  )
  |> map(fn: (r) => ({
      avg: r.avg / r.count,
      min: r.min,
      max: r.max,
      sample_count: r.count
  }))`, bucket, field)
}
