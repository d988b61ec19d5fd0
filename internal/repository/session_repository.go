package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"skillswap/backend/internal/models"
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uint64) (*models.Session, error)
	Claim(ctx context.Context, sessionID, learnerID uint64) error
	ReleaseClaim(ctx context.Context, sessionID, learnerID uint64) error
	MarkCompleted(ctx context.Context, id uint64) error
	MarkCancelled(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
	ListByTeacher(ctx context.Context, teacherID uint64) ([]*models.Session, error)
	ListByLearner(ctx context.Context, learnerID uint64) ([]*models.Session, error)
	ListTeachingBooked(ctx context.Context, teacherID uint64) ([]*models.Session, error)
	ListOpen(ctx context.Context, limit, offset int32) ([]*models.Session, error)
}

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, teacher_id, learner_id, skill, credits_used, date_time, status, type, subscribed, unsubscribed, created_at, updated_at`

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (teacher_id, learner_id, skill, credits_used, date_time, status, type, subscribed, unsubscribed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		session.TeacherID, session.LearnerID, session.Skill, session.CreditsUsed,
		session.DateTime, session.Status, session.Type, session.Subscribed, session.Unsubscribed,
		time.Now(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get session id: %w", err)
	}
	session.ID = uint64(id)

	return nil
}

func (r *sessionRepository) FindByID(ctx context.Context, id uint64) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.TeacherID, &session.LearnerID, &session.Skill,
		&session.CreditsUsed, &session.DateTime, &session.Status, &session.Type,
		&session.Subscribed, &session.Unsubscribed, &session.CreatedAt, &session.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// Claim attaches the learner to an unbooked Scheduled session. The learner
// column is only written when still NULL, so a second subscriber can never
// overwrite the first.
func (r *sessionRepository) Claim(ctx context.Context, sessionID, learnerID uint64) error {
	query := `
		UPDATE sessions
		SET learner_id = ?, subscribed = 1, type = ?, updated_at = ?
		WHERE id = ? AND learner_id IS NULL AND status = ?
	`
	result, err := r.db.ExecContext(ctx, query, learnerID, models.SessionTypeBooking, time.Now(), sessionID, models.SessionStatusScheduled)
	if err != nil {
		return fmt.Errorf("failed to claim session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// The guard failed: find out why.
	session, err := r.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if session.LearnerID != nil {
		if *session.LearnerID == learnerID {
			return ErrSameLearner
		}
		return ErrAlreadyBooked
	}
	return ErrInvalidTransition
}

// ReleaseClaim is the booking compensation: it reverts a claim this learner
// holds, restoring the session to an open offer.
func (r *sessionRepository) ReleaseClaim(ctx context.Context, sessionID, learnerID uint64) error {
	query := `
		UPDATE sessions
		SET learner_id = NULL, subscribed = 0, type = ?, updated_at = ?
		WHERE id = ? AND learner_id = ?
	`
	result, err := r.db.ExecContext(ctx, query, models.SessionTypeService, time.Now(), sessionID, learnerID)
	if err != nil {
		return fmt.Errorf("failed to release claim: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// MarkCompleted is only a valid transition from Scheduled.
func (r *sessionRepository) MarkCompleted(ctx context.Context, id uint64) error {
	return r.transition(ctx, id, models.SessionStatusCompleted)
}

// MarkCancelled is only a valid transition from Scheduled.
func (r *sessionRepository) MarkCancelled(ctx context.Context, id uint64) error {
	return r.transition(ctx, id, models.SessionStatusCancelled)
}

func (r *sessionRepository) transition(ctx context.Context, id uint64, status string) error {
	query := `
		UPDATE sessions
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id, models.SessionStatusScheduled)
	if err != nil {
		return fmt.Errorf("failed to transition session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		session, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrSessionNotFound
		}
		return ErrInvalidTransition
	}

	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *sessionRepository) ListByTeacher(ctx context.Context, teacherID uint64) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE teacher_id = ? ORDER BY date_time ASC`
	return r.list(ctx, query, teacherID)
}

func (r *sessionRepository) ListByLearner(ctx context.Context, learnerID uint64) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE learner_id = ? AND subscribed = 1 ORDER BY date_time ASC`
	return r.list(ctx, query, learnerID)
}

func (r *sessionRepository) ListTeachingBooked(ctx context.Context, teacherID uint64) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE teacher_id = ? AND learner_id IS NOT NULL AND subscribed = 1 ORDER BY date_time ASC`
	return r.list(ctx, query, teacherID)
}

func (r *sessionRepository) ListOpen(ctx context.Context, limit, offset int32) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE learner_id IS NULL AND status = ? ORDER BY date_time ASC LIMIT ? OFFSET ?`
	return r.list(ctx, query, models.SessionStatusScheduled, limit, offset)
}

func (r *sessionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session := &models.Session{}
		if err := rows.Scan(
			&session.ID, &session.TeacherID, &session.LearnerID, &session.Skill,
			&session.CreditsUsed, &session.DateTime, &session.Status, &session.Type,
			&session.Subscribed, &session.Unsubscribed, &session.CreatedAt, &session.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}
