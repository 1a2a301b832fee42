package fluxqueries

import "fmt"

// RoomLatest builds the most recent sample of one field for a room.
func RoomLatest(bucket, roomID, field string) string {
	return fmt.Sprintf(`from(bucket: "%s")
  |> range(start: -1h)
  |> filter(fn: (r) => r["_measurement"] == "sensor_reading" and r["_field"] == "%s")
  |> filter(fn: (r) => r["location"] == "%s")
  |> group()
  |> last()`, bucket, field, escape(roomID))
}

// RoomDailyAverage builds the 24h mean of one field for a room.
func RoomDailyAverage(bucket, roomID, field string) string {
	return fmt.Sprintf(`from(bucket: "%s")
  |> range(start: -24h)
  |> filter(fn: (r) => r["_measurement"] == "sensor_reading" and r["_field"] == "%s")
  |> filter(fn: (r) => r["location"] == "%s")
  |> group()
  |> mean()`, bucket, field, escape(roomID))
}

// RoomBandCounts builds the in-band and total sample counts of one field
// over the last 24 hours. The band comes from the automation settings, so
// it is a parameter rather than a constant.
func RoomBandCounts(bucket, roomID, field string, lo, hi float64) string {
	return fmt.Sprintf(`data = from(bucket: "%[1]s")
  |> range(start: -24h)
  |> filter(fn: (r) => r["_measurement"] == "sensor_reading" and r["_field"] == "%[2]s")
  |> filter(fn: (r) => r["location"] == "%[3]s")
  |> group()

data
  |> filter(fn: (r) => r._value >= %[4]g and r._value <= %[5]g)
  |> count()
  |> yield(name: "in_band")

data
  |> count()
  |> yield(name: "total")`, bucket, field, escape(roomID), lo, hi)
}
