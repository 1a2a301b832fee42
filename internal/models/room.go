package models

// Room is static metadata for one archive room.
type Room struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Floor string `json:"floor"`
	Area  int    `json:"area"`
}

// RoomDevice is an actuator attached to a room (AC, dehumidifier, fan).
type RoomDevice struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Status   string  `json:"status"`
	SetPoint float64 `json:"setPoint"`
}

// RoomConditions holds the latest observed values for a room. Nil means
// no sample was available in the window.
type RoomConditions struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// RoomStatistics is the 24h view used by the room detail endpoint.
type RoomStatistics struct {
	DailyAvg           RoomConditions `json:"dailyAvg"`
	TimeInOptimalRange OptimalRange   `json:"timeInOptimalRange"`
}

// OptimalRange is the percentage of samples inside the operator band.
// Nil means the window held no samples at all.
type OptimalRange struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// RoomDetails is the full room payload.
type RoomDetails struct {
	Room
	CurrentConditions RoomConditions `json:"currentConditions"`
	Statistics        RoomStatistics `json:"statistics"`
	Devices           []RoomDevice   `json:"devices"`
}
