package models

import "time"

// SystemMetrics is a point-in-time operational snapshot for the admin
// dashboard.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	ApplicationsSubmitted    uint64    `json:"applications_submitted"`
	DecisionsRecorded        uint64    `json:"decisions_recorded"`
	MeetingsCreated          uint64    `json:"meetings_created"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
