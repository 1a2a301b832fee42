package services

import (
	"context"
	"testing"
	"time"

	"archive-twin/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAutomationServiceDefaults(t *testing.T) {
	svc := NewAutomationService(context.Background(), nil)

	settings := svc.Get()
	assert.Equal(t, 24.0, settings.TargetTemperature)
	assert.Equal(t, 2.0, settings.TemperatureTolerance)
	assert.Equal(t, 60.0, settings.TargetHumidity)
	assert.Equal(t, 10.0, settings.HumidityTolerance)
	assert.Equal(t, 27.0, settings.AlertThresholdTemp)
	assert.Equal(t, 75.0, settings.AlertThresholdHumidity)

	assert.True(t, settings.TemperatureControlEnabled)
	assert.True(t, settings.HumidityControlEnabled)
	assert.True(t, settings.AutoAlertsEnabled)
	assert.True(t, settings.ScheduleEnabled)
	assert.Equal(t, models.SchedulePeriod{StartTime: "07:00", EndTime: "18:00", TargetTemp: 24}, settings.Schedule.Weekdays)
	assert.Equal(t, models.SchedulePeriod{StartTime: "09:00", EndTime: "17:00", TargetTemp: 25}, settings.Schedule.Weekends)
}

func TestAutomationServiceTogglesAndScheduleRoundTrip(t *testing.T) {
	store := newMemStore()
	svc := NewAutomationService(context.Background(), store)

	next := models.DefaultAutomationSettings()
	next.TemperatureControlEnabled = false
	next.AutoAlertsEnabled = false
	next.ScheduleEnabled = false
	next.Schedule.Weekends = models.SchedulePeriod{StartTime: "10:00", EndTime: "16:00", TargetTemp: 25.5}

	_, err := svc.Update(context.Background(), next)
	assert.NoError(t, err)

	got := svc.Get()
	assert.False(t, got.TemperatureControlEnabled)
	assert.True(t, got.HumidityControlEnabled)
	assert.False(t, got.AutoAlertsEnabled)
	assert.False(t, got.ScheduleEnabled)
	assert.Equal(t, "10:00", got.Schedule.Weekends.StartTime)
	assert.Equal(t, 25.5, got.Schedule.Weekends.TargetTemp)

	// A fresh service sees the same toggles and schedule.
	reloaded := NewAutomationService(context.Background(), store).Get()
	assert.False(t, reloaded.ScheduleEnabled)
	assert.Equal(t, next.Schedule, reloaded.Schedule)
}

func TestAutomationServiceUpdatePersists(t *testing.T) {
	store := newMemStore()
	svc := NewAutomationService(context.Background(), store)

	next := models.DefaultAutomationSettings()
	next.TargetTemperature = 22
	next.AlertThresholdTemp = 26

	updated, err := svc.Update(context.Background(), next)
	assert.NoError(t, err)
	assert.Equal(t, 22.0, updated.TargetTemperature)
	assert.False(t, updated.LastUpdated.IsZero())
	assert.Equal(t, updated, svc.Get())
	assert.Contains(t, store.data, "automation:settings")

	// A fresh service picks up what was persisted.
	reloaded := NewAutomationService(context.Background(), store)
	assert.Equal(t, 22.0, reloaded.Get().TargetTemperature)
}

func TestAutomationServiceRejectsInvalid(t *testing.T) {
	svc := NewAutomationService(context.Background(), nil)
	before := svc.Get()

	invalid := models.DefaultAutomationSettings()
	invalid.TemperatureTolerance = 0
	_, err := svc.Update(context.Background(), invalid)
	assert.Error(t, err)

	invalid = models.DefaultAutomationSettings()
	invalid.AlertThresholdTemp = 23 // below target
	_, err = svc.Update(context.Background(), invalid)
	assert.Error(t, err)

	invalid = models.DefaultAutomationSettings()
	invalid.AlertThresholdHumidity = 55
	_, err = svc.Update(context.Background(), invalid)
	assert.Error(t, err)

	assert.Equal(t, before, svc.Get())
}

func TestAutomationServiceIgnoresInvalidPersisted(t *testing.T) {
	store := newMemStore()
	bad := models.AutomationSettings{LastUpdated: time.Now()}
	assert.NoError(t, store.SaveJSON(context.Background(), "automation:settings", bad))

	svc := NewAutomationService(context.Background(), store)
	assert.Equal(t, 24.0, svc.Get().TargetTemperature)
}

func TestAutomationServiceSurvivesStoreFailure(t *testing.T) {
	store := newMemStore()
	svc := NewAutomationService(context.Background(), store)
	store.saveErr = assert.AnError

	next := models.DefaultAutomationSettings()
	next.TargetHumidity = 55

	updated, err := svc.Update(context.Background(), next)
	assert.NoError(t, err)
	assert.Equal(t, 55.0, updated.TargetHumidity)
	assert.Equal(t, 55.0, svc.Get().TargetHumidity)
}
