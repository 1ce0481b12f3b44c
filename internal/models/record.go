package models

import "time"

// MonitoringRecord is one incident or sensor reading shown on a dashboard view.
type MonitoringRecord struct {
	RecordID    string    `json:"record_id"`
	Kind        string    `json:"kind"`        // INCIDENT | SENSOR | EQUIPMENT
	BuildingID  string    `json:"building_id"` // e.g. "Building A"
	Status      string    `json:"status"`      // Operational | Warning | Critical
	Severity    string    `json:"severity,omitempty"`
	SensorType  string    `json:"sensor_type,omitempty"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}
