package fluxqueries

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRangeFilterDefaults(t *testing.T) {
	assert.Equal(t, "start: -24h, stop: now()", RangeFilter(nil, nil))
}

func TestRangeFilterExplicit(t *testing.T) {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	got := RangeFilter(&start, &end)
	assert.Equal(t, "start: 2025-05-01T00:00:00Z, stop: 2025-05-02T00:00:00Z", got)
}

func TestLocationFilterEmpty(t *testing.T) {
	assert.Equal(t, "", LocationFilter(nil))
}

func TestLocationFilterMultiple(t *testing.T) {
	got := LocationFilter([]string{"F2", "G3"})
	assert.Equal(t, ` and (r["location"] == "F2" or r["location"] == "G3")`, got)
}

func TestLocationFilterEscapesQuotes(t *testing.T) {
	got := LocationFilter([]string{`F2" or true or "`})
	assert.NotContains(t, got, `== "F2" or true`)
	assert.Contains(t, got, `\"`)
}

func TestAggregationClause(t *testing.T) {
	clause, err := AggregationClause("1h", "mean")
	assert.NoError(t, err)
	assert.Equal(t, "|> aggregateWindow(every: 1h, fn: mean, createEmpty: false)", clause)
}

func TestAggregationClauseAbsent(t *testing.T) {
	clause, err := AggregationClause("", "")
	assert.NoError(t, err)
	assert.Equal(t, "", clause)
}

func TestAggregationClauseRequiresBoth(t *testing.T) {
	_, err := AggregationClause("1h", "")
	assert.Error(t, err)

	_, err = AggregationClause("", "mean")
	assert.Error(t, err)
}

func TestAggregationClauseWhitelist(t *testing.T) {
	_, err := AggregationClause("1h", "drop")
	assert.Error(t, err)

	for fn := range ValidAggregateFunctions {
		_, err := AggregationClause("1h", fn)
		assert.NoError(t, err, fn)
	}
}

func TestAggregationClauseRejectsBadWindow(t *testing.T) {
	_, err := AggregationClause("yesterday", "mean")
	assert.Error(t, err)
}

func TestSensorDataRowKeyShrinksUnderAggregation(t *testing.T) {
	raw := SensorData("b", "start: -1h, stop: now()", `r._measurement == "sensor_reading"`, "", 100)
	assert.Contains(t, raw, `"source_ip"`)

	clause, err := AggregationClause("1h", "mean")
	assert.NoError(t, err)
	aggregated := SensorData("b", "start: -1h, stop: now()", `r._measurement == "sensor_reading"`, clause, 100)
	assert.NotContains(t, aggregated, `"source_ip"`)
	assert.Contains(t, aggregated, `["_time", "device_id", "location"]`)
}

func TestEnvironmentalStatsUnionsBothFields(t *testing.T) {
	q := EnvironmentalStats("b", "start: -24h, stop: now()", "")
	assert.Contains(t, q, `_field == "temperature"`)
	assert.Contains(t, q, `_field == "humidity"`)
	assert.Contains(t, q, "union(tables: [temperature, humidity])")
}

func TestFieldStatsAveragesDeviceMeans(t *testing.T) {
	q := FieldStats("b", "start: -24h, stop: now()", "", "temperature")
	// Per-device mean first, then the building-wide reduce.
	idx := strings.Index(q, `group(columns: ["location", "device_id"])`)
	assert.Greater(t, idx, 0)
	assert.Greater(t, strings.Index(q, "reduce("), idx)
}

func TestDeviceHistoryEscapesID(t *testing.T) {
	q := DeviceHistory("b", `x"`, "-7d", "temperature")
	assert.Contains(t, q, `r.device_id == "x\""`)
}
