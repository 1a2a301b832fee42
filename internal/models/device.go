package models

import "time"

// Device is a single row from the logger registry CSV.
type Device struct {
	ID       string `json:"id"`
	IP       string `json:"ip"`
	Location string `json:"location"`
}

// DeviceStatus is the reachability snapshot of one logger.
type DeviceStatus struct {
	DeviceID    string    `json:"device_id"`
	Location    string    `json:"location"`
	IP          string    `json:"ip"`
	Reachable   bool      `json:"reachable"`
	LastChecked time.Time `json:"last_checked"`
}

// SensorReading is one parsed sample from a logger.
type SensorReading struct {
	DeviceID    string
	Location    string
	SourceIP    string
	Temperature float64
	Humidity    float64
	StatusHex   string
	Time        time.Time
}
