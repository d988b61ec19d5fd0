package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"skillswap/backend/internal/models"
)

type UserRepository interface {
	CreateWithWelcome(ctx context.Context, user *models.User, welcomeMessage string) error
	FindByID(ctx context.Context, id uint64) (*models.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint64, name, avatarURL string) error
	ReplaceSkills(ctx context.Context, userID uint64, skills []string) error
	ListSkills(ctx context.Context, userID uint64) ([]string, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateWithWelcome inserts the user with the signup bonus already applied and
// seeds the welcome notification in the same transaction, so a user never
// exists without its first feed entry.
func (r *userRepository) CreateWithWelcome(ctx context.Context, user *models.User, welcomeMessage string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (external_id, name, email, avatar_url, total_credits, credits_earned, credits_spent, skill_coins, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query,
		user.ExternalID, user.Name, user.Email, user.AvatarURL,
		user.TotalCredits, user.CreditsEarned, user.CreditsSpent, user.SkillCoins,
		time.Now(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}
	user.ID = uint64(id)

	notifQuery := `
		INSERT INTO notifications (user_id, message, type, is_read, created_at)
		VALUES (?, ?, ?, 0, ?)
	`
	_, err = tx.ExecContext(ctx, notifQuery, user.ID, welcomeMessage, models.NotificationTypeWelcome, time.Now())
	if err != nil {
		return fmt.Errorf("failed to seed welcome notification: %w", err)
	}

	return tx.Commit()
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	query := `
		SELECT id, external_id, name, email, avatar_url, total_credits, credits_earned, credits_spent, skill_coins, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	query := `
		SELECT id, external_id, name, email, avatar_url, total_credits, credits_earned, credits_spent, skill_coins, created_at, updated_at
		FROM users
		WHERE external_id = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, externalID))
}

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.ExternalID, &user.Name, &user.Email, &user.AvatarURL,
		&user.TotalCredits, &user.CreditsEarned, &user.CreditsSpent, &user.SkillCoins,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint64, name, avatarURL string) error {
	query := `
		UPDATE users
		SET name = ?, avatar_url = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, name, avatarURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ReplaceSkills rewrites the user's skill set, preserving the given order for
// display. Uniqueness is the caller's concern; the unique index backs it up.
func (r *userRepository) ReplaceSkills(ctx context.Context, userID uint64, skills []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM user_skills WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear skills: %w", err)
	}

	insert := `INSERT INTO user_skills (user_id, skill, position) VALUES (?, ?, ?)`
	for i, skill := range skills {
		if _, err := tx.ExecContext(ctx, insert, userID, skill, i); err != nil {
			return fmt.Errorf("failed to insert skill: %w", err)
		}
	}

	return tx.Commit()
}

func (r *userRepository) ListSkills(ctx context.Context, userID uint64) ([]string, error) {
	query := `
		SELECT skill
		FROM user_skills
		WHERE user_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	var skills []string
	for rows.Next() {
		var skill string
		if err := rows.Scan(&skill); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, skill)
	}

	return skills, rows.Err()
}
