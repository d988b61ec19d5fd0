package models

import "time"

// Actions recorded on an escalation step.
const (
	IncidentActionWarningSent    = "warning_sent"
	IncidentActionFinalWarning   = "final_warning"
	IncidentActionMeetingStopped = "meeting_terminated"
)

// Detector severity labels.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// SuspiciousActivityIncident is one immutable audit row per escalation step.
type SuspiciousActivityIncident struct {
	ID                uint64    `db:"id"`
	SessionID         uint64    `db:"session_id"`
	UserID            uint64    `db:"user_id"`
	Confidence        float64   `db:"confidence"`
	Severity          string    `db:"severity"`
	WarningCount      int       `db:"warning_count"`
	ActionTaken       string    `db:"action_taken"`
	EvidenceReference string    `db:"evidence_reference"`
	Timestamp         time.Time `db:"timestamp"`
	CreatedAt         time.Time `db:"created_at"`
}
