package models

import "time"

// ForecastPoint is one flattened BMKG forecast entry.
type ForecastPoint struct {
	Time                  time.Time `json:"time"`
	LocalDatetime         string    `json:"local_datetime"`
	WeatherDesc           string    `json:"weather_desc"`
	WeatherDescEN         string    `json:"weather_desc_en"`
	WindDirection         string    `json:"wd"`
	Temperature           float64   `json:"temperature"`
	Humidity              float64   `json:"humidity"`
	TemperaturePrediction float64   `json:"temperature_prediction"`
	CloudCover            float64   `json:"tcc"`
	WindSpeed             float64   `json:"wind_speed"`
	WindDirectionDegree   float64   `json:"wind_direction_degree"`
	VisibilityKM          float64   `json:"visibility_km"`
}
