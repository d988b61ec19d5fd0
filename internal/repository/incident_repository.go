package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"skillswap/backend/internal/models"
)

// IncidentRepository is append-only: one row per escalation step, never
// updated or deleted.
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.SuspiciousActivityIncident) error
	ListBySession(ctx context.Context, sessionID uint64) ([]models.SuspiciousActivityIncident, error)
}

type incidentRepository struct {
	db *sql.DB
}

func NewIncidentRepository(db *sql.DB) IncidentRepository {
	return &incidentRepository{db: db}
}

func (r *incidentRepository) Create(ctx context.Context, incident *models.SuspiciousActivityIncident) error {
	query := `
		INSERT INTO suspicious_activity_incidents (session_id, user_id, confidence, severity, warning_count, action_taken, evidence_reference, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		incident.SessionID, incident.UserID, incident.Confidence, incident.Severity,
		incident.WarningCount, incident.ActionTaken, incident.EvidenceReference,
		incident.Timestamp, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get incident id: %w", err)
	}
	incident.ID = uint64(id)

	return nil
}

func (r *incidentRepository) ListBySession(ctx context.Context, sessionID uint64) ([]models.SuspiciousActivityIncident, error) {
	query := `
		SELECT id, session_id, user_id, confidence, severity, warning_count, action_taken, evidence_reference, timestamp, created_at
		FROM suspicious_activity_incidents
		WHERE session_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	var incidents []models.SuspiciousActivityIncident
	for rows.Next() {
		var incident models.SuspiciousActivityIncident
		if err := rows.Scan(
			&incident.ID, &incident.SessionID, &incident.UserID, &incident.Confidence,
			&incident.Severity, &incident.WarningCount, &incident.ActionTaken,
			&incident.EvidenceReference, &incident.Timestamp, &incident.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, incident)
	}

	return incidents, rows.Err()
}
