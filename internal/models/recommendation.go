package models

import "time"

// Priority levels, ordered. Lower value sorts first.
var PriorityOrder = map[string]int{
	"critical": 0,
	"high":     1,
	"medium":   2,
	"low":      3,
	"info":     4,
}

// Recommendation is one actionable item produced by the rule engine.
type Recommendation struct {
	ID               string    `json:"id"`
	Priority         string    `json:"priority"`
	Category         string    `json:"category"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Action           string    `json:"action,omitempty"`
	Room             string    `json:"room,omitempty"`
	Severity         string    `json:"severity,omitempty"`
	EstimatedImpact  string    `json:"estimated_impact,omitempty"`
	PreservationRisk string    `json:"preservation_risk,omitempty"`
	SpecificActions  []string  `json:"specific_actions,omitempty"`
	TrendInfo        string    `json:"trend_info,omitempty"`
	NextDue          string    `json:"next_due,omitempty"`
	DataSource       string    `json:"dataSource"`
	CreatedAt        time.Time `json:"created_at"`
}
