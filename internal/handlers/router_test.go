package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"archive-twin/internal/config"
	"archive-twin/internal/models"
	"archive-twin/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type fakeStats struct{ err error }

func (f *fakeStats) GetFieldStats(ctx context.Context, field string, start, end *time.Time, locations []string) (services.FieldStatsResult, error) {
	return services.FieldStatsResult{SampleCount: 3}, f.err
}

func (f *fakeStats) GetEnvironmentalStats(ctx context.Context, start, end *time.Time, locations []string) (services.EnvironmentalStatsResult, error) {
	return services.EnvironmentalStatsResult{}, f.err
}

func (f *fakeStats) GetAverageLastHour(ctx context.Context, field string) (services.SingleValueResult, error) {
	return services.SingleValueResult{}, f.err
}

func (f *fakeStats) GetMinLastHour(ctx context.Context, field string) (services.SingleValueResult, error) {
	return services.SingleValueResult{}, f.err
}

func (f *fakeStats) GetMaxLastHour(ctx context.Context, field string) (services.SingleValueResult, error) {
	return services.SingleValueResult{}, f.err
}

func (f *fakeStats) GetStatsLastHour(ctx context.Context, field string) (services.FieldStatsResult, error) {
	return services.FieldStatsResult{}, f.err
}

type fakeTrends struct {
	err       error
	lastHours int
	lastDays  int
}

func (f *fakeTrends) GetHourlyTrend(ctx context.Context, parameter, location string, hours int) (services.TrendResponse, error) {
	f.lastHours = hours
	return services.TrendResponse{Parameter: parameter, Location: location}, f.err
}

func (f *fakeTrends) GetDailyTrend(ctx context.Context, parameter, location string, days int) (services.TrendResponse, error) {
	f.lastDays = days
	return services.TrendResponse{Parameter: parameter, Location: location}, f.err
}

func (f *fakeTrends) GetMonthlyTrend(ctx context.Context, parameter, location string, days int) (services.TrendResponse, error) {
	f.lastDays = days
	return services.TrendResponse{Parameter: parameter, Location: location}, f.err
}

func (f *fakeTrends) GetComparativeTrend(ctx context.Context, parameter, location string, periodDays int) (services.ComparativeTrendResponse, error) {
	f.lastDays = periodDays
	return services.ComparativeTrendResponse{Parameter: parameter}, f.err
}

func (f *fakeTrends) GetTrendSummary(ctx context.Context, location string) (services.TrendSummary, error) {
	return services.TrendSummary{Location: location}, f.err
}

type fakeData struct {
	err       error
	lastQuery services.SensorDataQuery
}

func (f *fakeData) GetSensorData(ctx context.Context, q services.SensorDataQuery) ([]map[string]interface{}, error) {
	f.lastQuery = q
	return []map[string]interface{}{}, f.err
}

func (f *fakeData) GetUniqueDevices(ctx context.Context) ([]services.DeviceInfo, error) {
	return []services.DeviceInfo{{DeviceID: "f2", Location: "F2"}}, f.err
}

func (f *fakeData) GetDeviceHistory(ctx context.Context, deviceID string, hours int) (services.DeviceHistoryResponse, error) {
	return services.DeviceHistoryResponse{DeviceID: deviceID}, f.err
}

func (f *fakeData) GetLatestForecast(ctx context.Context) ([]models.ForecastPoint, error) {
	return []models.ForecastPoint{}, f.err
}

type fakeRooms struct{ err error }

func (f *fakeRooms) ListRooms() []models.Room {
	return []models.Room{{ID: "F2", Name: "Ruang F2"}}
}

func (f *fakeRooms) GetRoomDetails(ctx context.Context, roomID string) (models.RoomDetails, error) {
	if f.err != nil {
		return models.RoomDetails{}, f.err
	}
	return models.RoomDetails{Room: models.Room{ID: roomID}}, nil
}

func (f *fakeRooms) CurrentConditions(ctx context.Context, roomID string) (models.RoomConditions, error) {
	return models.RoomConditions{}, f.err
}

type fakeAutomation struct {
	settings models.AutomationSettings
}

func (f *fakeAutomation) Get() models.AutomationSettings { return f.settings }

func (f *fakeAutomation) Update(ctx context.Context, settings models.AutomationSettings) (models.AutomationSettings, error) {
	if err := settings.Validate(); err != nil {
		return models.AutomationSettings{}, err
	}
	f.settings = settings
	return settings, nil
}

type fakeRecommendations struct{ err error }

func (f *fakeRecommendations) GetProactiveRecommendations(ctx context.Context) (services.ProactiveRecommendations, error) {
	return services.ProactiveRecommendations{AnalysisID: "a1"}, f.err
}

func (f *fakeRecommendations) GetRoomRecommendations(ctx context.Context, roomID string) (services.RoomRecommendations, error) {
	if f.err != nil {
		return services.RoomRecommendations{}, f.err
	}
	return services.RoomRecommendations{RoomID: roomID}, nil
}

type fakeInsights struct{ err error }

func (f *fakeInsights) GetClimateInsights(ctx context.Context, parameter, period, location string) (services.ClimateInsightsResponse, error) {
	if f.err != nil {
		return services.ClimateInsightsResponse{}, f.err
	}
	return services.ClimateInsightsResponse{Parameter: parameter, Period: period, Location: location}, nil
}

func (f *fakeInsights) GetPreservationRisk(ctx context.Context, location string) (services.PreservationRiskResponse, error) {
	return services.PreservationRiskResponse{Location: location}, f.err
}

func (f *fakeInsights) GetActionableRecommendations(ctx context.Context, parameter, location string) (services.ActionableRecommendationsResponse, error) {
	return services.ActionableRecommendationsResponse{Parameter: parameter}, f.err
}

type fakeHealth struct{ report services.SystemHealthReport }

func (f *fakeHealth) GetSystemHealth(ctx context.Context) services.SystemHealthReport {
	return f.report
}

func (f *fakeHealth) GetDeviceStatuses(ctx context.Context) ([]models.DeviceStatus, error) {
	return []models.DeviceStatus{}, nil
}

type routerFixture struct {
	router     http.Handler
	trends     *fakeTrends
	data       *fakeData
	rooms      *fakeRooms
	automation *fakeAutomation
}

func newTestRouter(cfg config.ServerConfig) routerFixture {
	trends := &fakeTrends{}
	data := &fakeData{}
	rooms := &fakeRooms{}
	automation := &fakeAutomation{settings: models.DefaultAutomationSettings()}

	router := NewRouter(cfg, Services{
		Stats:          &fakeStats{},
		Trends:         trends,
		Data:           data,
		Rooms:          rooms,
		Automation:     automation,
		Recommendation: &fakeRecommendations{},
		Insights:       &fakeInsights{},
		Health:         &fakeHealth{report: services.SystemHealthReport{Status: "Optimal"}},
	})
	return routerFixture{router: router, trends: trends, data: data, rooms: rooms, automation: automation}
}

func doRequest(t *testing.T, handler http.Handler, method, target, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload struct {
		Success bool           `json:"success"`
		Error   map[string]any `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.False(t, payload.Success)
	return payload.Error
}

func authedConfig() config.ServerConfig {
	return config.ServerConfig{ValidAPIKeys: []string{"secret-key"}}
}

func TestAPIKeyAuthMissingKey(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/rooms/", "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	errBody := decodeError(t, w)
	assert.Equal(t, "API key missing. Please provide X-API-Key header.", errBody["message"])
}

func TestAPIKeyAuthInvalidKey(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/rooms/", "wrong-key", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	errBody := decodeError(t, w)
	assert.Equal(t, "Invalid API key", errBody["message"])
}

func TestAPIKeyAuthValidKey(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/rooms/", "secret-key", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuthFailsClosedWithoutConfiguredKeys(t *testing.T) {
	fx := newTestRouter(config.ServerConfig{})

	w := doRequest(t, fx.router, http.MethodGet, "/rooms/", "any-key", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	errBody := decodeError(t, w)
	assert.Equal(t, "API key validation is not configured", errBody["message"])
}

func TestAPIKeyAuthDevSkip(t *testing.T) {
	fx := newTestRouter(config.ServerConfig{SkipAPIKeyCheck: true})

	w := doRequest(t, fx.router, http.MethodGet, "/rooms/", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSystemHealthRequiresAPIKey(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/system/health/", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, fx.router, http.MethodGet, "/system/health/", "secret-key", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var report services.SystemHealthReport
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "Optimal", report.Status)
}

func TestInternalErrorsHideDetail(t *testing.T) {
	fx := newTestRouter(authedConfig())
	fx.rooms.err = errors.New("influx: unauthorized token for org archive_org at http://10.0.0.5:8086")

	w := doRequest(t, fx.router, http.MethodGet, "/rooms/Z9", "secret-key", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	errBody := decodeError(t, w)
	assert.Equal(t, "An unexpected error occurred", errBody["message"])
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestGetSensorDataRejectsOutOfRangeLimit(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/data/?limit=5000", "secret-key", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSensorDataRejectsBadAggregation(t *testing.T) {
	fx := newTestRouter(authedConfig())
	fx.data.err = services.ErrInvalidAggregation

	w := doRequest(t, fx.router, http.MethodGet, "/data/?aggregate_window=1h&aggregate_function=bogus", "secret-key", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSensorDataBindsQueryOptions(t *testing.T) {
	fx := newTestRouter(authedConfig())

	target := "/data/?device_ids=f2&device_ids=f3&locations=F2&fields=temperature&limit=50&aggregate_window=1h&aggregate_function=mean"
	w := doRequest(t, fx.router, http.MethodGet, target, "secret-key", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"f2", "f3"}, fx.data.lastQuery.DeviceIDs)
	assert.Equal(t, []string{"F2"}, fx.data.lastQuery.Locations)
	assert.Equal(t, 50, fx.data.lastQuery.Limit)
	assert.Equal(t, "1h", fx.data.lastQuery.AggregateWindow)
	assert.Equal(t, "mean", fx.data.lastQuery.AggregateFunction)
}

func TestGetRoomDetailsNotFound(t *testing.T) {
	fx := newTestRouter(authedConfig())
	fx.rooms.err = services.ErrRoomNotFound

	w := doRequest(t, fx.router, http.MethodGet, "/rooms/Z9", "secret-key", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAutomationSettingsRejectsInvalid(t *testing.T) {
	fx := newTestRouter(authedConfig())

	body := `{"targetTemperature":24,"temperatureTolerance":-1,"targetHumidity":60,"humidityTolerance":10,"alertThresholdTemp":27,"alertThresholdHumidity":75}`
	w := doRequest(t, fx.router, http.MethodPut, "/automation/settings", "secret-key", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.DefaultAutomationSettings().TemperatureTolerance, fx.automation.Get().TemperatureTolerance)
}

func TestUpdateAutomationSettingsAcceptsValid(t *testing.T) {
	fx := newTestRouter(authedConfig())

	body := `{"targetTemperature":22,"temperatureTolerance":1.5,"targetHumidity":55,"humidityTolerance":5,"alertThresholdTemp":26,"alertThresholdHumidity":70}`
	w := doRequest(t, fx.router, http.MethodPut, "/automation/settings", "secret-key", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 22.0, fx.automation.Get().TargetTemperature)
}

func TestAutomationSettingsRoundTrip(t *testing.T) {
	fx := newTestRouter(authedConfig())

	body := `{"temperatureControlEnabled":false,"humidityControlEnabled":true,` +
		`"targetTemperature":23,"temperatureTolerance":1.5,"targetHumidity":55,"humidityTolerance":8,` +
		`"autoAlertsEnabled":false,"alertThresholdTemp":26,"alertThresholdHumidity":70,` +
		`"scheduleEnabled":true,"schedule":{` +
		`"weekdays":{"startTime":"06:30","endTime":"19:00","targetTemp":23},` +
		`"weekends":{"startTime":"10:00","endTime":"16:00","targetTemp":25.5}}}`
	w := doRequest(t, fx.router, http.MethodPut, "/automation/settings", "secret-key", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, fx.router, http.MethodGet, "/automation/settings", "secret-key", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Data models.AutomationSettings `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.False(t, payload.Data.TemperatureControlEnabled)
	assert.True(t, payload.Data.HumidityControlEnabled)
	assert.False(t, payload.Data.AutoAlertsEnabled)
	assert.True(t, payload.Data.ScheduleEnabled)
	assert.Equal(t, models.SchedulePeriod{StartTime: "06:30", EndTime: "19:00", TargetTemp: 23}, payload.Data.Schedule.Weekdays)
	assert.Equal(t, models.SchedulePeriod{StartTime: "10:00", EndTime: "16:00", TargetTemp: 25.5}, payload.Data.Schedule.Weekends)
}

func TestTrendsRejectsUnknownPeriod(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/data/trends?period=year", "secret-key", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendsRejectsUnknownParameter(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/data/trends/hourly?parameter=pressure", "secret-key", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendsPeriodRouting(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/data/trends?period=day", "secret-key", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 24, fx.trends.lastHours)

	w = doRequest(t, fx.router, http.MethodGet, "/data/trends?period=week", "secret-key", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, fx.trends.lastDays)

	w = doRequest(t, fx.router, http.MethodGet, "/data/trends?period=month", "secret-key", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, fx.trends.lastDays)
}

func TestHourlyTrendHoursBounds(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/data/trends/hourly?hours=200", "secret-key", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, fx.router, http.MethodGet, "/data/trends/hourly?hours=48", "secret-key", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 48, fx.trends.lastHours)
}

func TestComparativeTrendParsesPeriod(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/data/trends/compare?current_period=14d", "secret-key", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 14, fx.trends.lastDays)

	w = doRequest(t, fx.router, http.MethodGet, "/data/trends/compare?current_period=fortnight", "secret-key", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsRoutesRespondWithEnvelope(t *testing.T) {
	fx := newTestRouter(authedConfig())

	routes := []string{
		"/stats/temperature/",
		"/stats/humidity/",
		"/stats/environmental/",
		"/stats/temperature/last-hour/",
		"/stats/temperature/last-hour/min/",
		"/stats/temperature/last-hour/max/",
		"/stats/temperature/last-hour/stats/",
		"/stats/humidity/last-hour/",
		"/stats/humidity/last-hour/min/",
		"/stats/humidity/last-hour/max/",
		"/stats/humidity/last-hour/stats/",
	}
	for _, route := range routes {
		w := doRequest(t, fx.router, http.MethodGet, route, "secret-key", "")
		assert.Equal(t, http.StatusOK, w.Code, route)

		var payload struct {
			Success bool `json:"success"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload), route)
		assert.True(t, payload.Success, route)
	}
}

func TestStatsRejectsBadTimestamp(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/stats/temperature/?start_time=yesterday", "secret-key", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInsightRoutesPassQueryDefaults(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/insights/climate-analysis", "secret-key", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Data services.ClimateInsightsResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "temperature", payload.Data.Parameter)
	assert.Equal(t, "day", payload.Data.Period)
	assert.Equal(t, "all", payload.Data.Location)
}

func TestRecommendationRoutes(t *testing.T) {
	fx := newTestRouter(authedConfig())

	w := doRequest(t, fx.router, http.MethodGet, "/recommendations/proactive", "secret-key", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, fx.router, http.MethodGet, "/recommendations/F2", "secret-key", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Data services.RoomRecommendations `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "F2", payload.Data.RoomID)
}
