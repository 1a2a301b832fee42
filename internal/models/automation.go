package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSettings marks settings rejected by Validate.
var ErrInvalidSettings = errors.New("invalid automation settings")

// SchedulePeriod is one daily operating window of the HVAC schedule.
type SchedulePeriod struct {
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	TargetTemp float64 `json:"targetTemp"`
}

// AutomationSchedule splits the week into weekday and weekend windows.
type AutomationSchedule struct {
	Weekdays SchedulePeriod `json:"weekdays"`
	Weekends SchedulePeriod `json:"weekends"`
}

// AutomationSettings is the operator-tunable climate control envelope.
type AutomationSettings struct {
	TemperatureControlEnabled bool               `json:"temperatureControlEnabled"`
	HumidityControlEnabled    bool               `json:"humidityControlEnabled"`
	TargetTemperature         float64            `json:"targetTemperature"`
	TemperatureTolerance      float64            `json:"temperatureTolerance"`
	TargetHumidity            float64            `json:"targetHumidity"`
	HumidityTolerance         float64            `json:"humidityTolerance"`
	AutoAlertsEnabled         bool               `json:"autoAlertsEnabled"`
	AlertThresholdTemp        float64            `json:"alertThresholdTemp"`
	AlertThresholdHumidity    float64            `json:"alertThresholdHumidity"`
	ScheduleEnabled           bool               `json:"scheduleEnabled"`
	Schedule                  AutomationSchedule `json:"schedule"`
	LastUpdated               time.Time          `json:"lastUpdated"`
}

func DefaultAutomationSettings() AutomationSettings {
	return AutomationSettings{
		TemperatureControlEnabled: true,
		HumidityControlEnabled:    true,
		TargetTemperature:         24,
		TemperatureTolerance:      2,
		TargetHumidity:            60,
		HumidityTolerance:         10,
		AutoAlertsEnabled:         true,
		AlertThresholdTemp:        27,
		AlertThresholdHumidity:    75,
		ScheduleEnabled:           true,
		Schedule: AutomationSchedule{
			Weekdays: SchedulePeriod{StartTime: "07:00", EndTime: "18:00", TargetTemp: 24},
			Weekends: SchedulePeriod{StartTime: "09:00", EndTime: "17:00", TargetTemp: 25},
		},
	}
}

// Validate rejects settings that would make the rule engine misfire.
func (s AutomationSettings) Validate() error {
	if s.TemperatureTolerance <= 0 {
		return fmt.Errorf("%w: temperatureTolerance must be positive", ErrInvalidSettings)
	}
	if s.HumidityTolerance <= 0 {
		return fmt.Errorf("%w: humidityTolerance must be positive", ErrInvalidSettings)
	}
	if s.AlertThresholdTemp <= s.TargetTemperature {
		return fmt.Errorf("%w: alertThresholdTemp must be above targetTemperature", ErrInvalidSettings)
	}
	if s.AlertThresholdHumidity <= s.TargetHumidity {
		return fmt.Errorf("%w: alertThresholdHumidity must be above targetHumidity", ErrInvalidSettings)
	}
	return nil
}
