package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"skillswap/backend/internal/models"
)

// NotificationRepository handles the append-only per-user message feed.
// Ordering is insertion order; newest-first is applied at read time.
type NotificationRepository interface {
	Append(ctx context.Context, userID uint64, message, notifType string) error
	List(ctx context.Context, userID uint64, limit, offset int32) ([]models.Notification, int64, error)
	MarkAsRead(ctx context.Context, notificationID, userID uint64) error
	MarkAllAsRead(ctx context.Context, userID uint64) error
	CountUnread(ctx context.Context, userID uint64) (int64, error)
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Append(ctx context.Context, userID uint64, message, notifType string) error {
	query := `
		INSERT INTO notifications (user_id, message, type, is_read, created_at)
		VALUES (?, ?, ?, 0, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, message, notifType, time.Now()); err != nil {
		return fmt.Errorf("failed to append notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID uint64, limit, offset int32) ([]models.Notification, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `
		SELECT id, user_id, message, type, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, total, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, notificationID, userID uint64) error {
	query := `
		UPDATE notifications
		SET is_read = 1
		WHERE id = ? AND user_id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, notificationID, userID); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uint64) error {
	query := `
		UPDATE notifications
		SET is_read = 1
		WHERE user_id = ? AND is_read = 0
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
