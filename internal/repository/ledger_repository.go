package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"skillswap/backend/internal/models"
)

// LedgerRepository owns every balance mutation. Each operation is one SQL
// transaction covering the balance update, the coupled notification append,
// and the immutable ledger entry, so either all three land or none do.
type LedgerRepository interface {
	Debit(ctx context.Context, userID uint64, amount int64, sessionID *uint64, entryID, message string) (*models.Balance, error)
	Earn(ctx context.Context, userID uint64, amount int64, sessionID *uint64, entryID, message string) (*models.Balance, error)
	Redeem(ctx context.Context, userID uint64, credits, coins int64, entryID, message string) (*models.Balance, error)
	TopUp(ctx context.Context, userID uint64, amount int64, paymentRef, entryID, message string) (*models.Balance, error)
	ListEntries(ctx context.Context, userID uint64, limit, offset int32) ([]models.LedgerEntry, error)
}

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

const mysqlDuplicateEntry = 1062

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// Debit decrements total_credits and increments credits_spent with a guarded
// UPDATE. The balance check and the decrement are a single statement, so two
// concurrent debits against a near-zero balance can never both pass.
func (r *ledgerRepository) Debit(ctx context.Context, userID uint64, amount int64, sessionID *uint64, entryID, message string) (*models.Balance, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE users
		SET total_credits = total_credits - ?, credits_spent = credits_spent + ?, updated_at = ?
		WHERE id = ? AND total_credits >= ?
	`
	result, err := tx.ExecContext(ctx, query, amount, amount, time.Now(), userID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, r.classifyGuardFailure(ctx, tx, userID)
	}

	if err := r.appendNotification(ctx, tx, userID, message, models.NotificationTypeDebit); err != nil {
		return nil, err
	}
	if err := r.appendEntry(ctx, tx, &models.LedgerEntry{
		ID:        entryID,
		UserID:    userID,
		Action:    models.LedgerActionDebit,
		Amount:    amount,
		SessionID: sessionID,
	}); err != nil {
		return nil, err
	}

	balance, err := r.selectBalance(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	return balance, tx.Commit()
}

// Earn increments both total_credits and credits_earned. Teaching income has
// no upper bound.
func (r *ledgerRepository) Earn(ctx context.Context, userID uint64, amount int64, sessionID *uint64, entryID, message string) (*models.Balance, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE users
		SET total_credits = total_credits + ?, credits_earned = credits_earned + ?, updated_at = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query, amount, amount, time.Now(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to add earnings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	if err := r.appendNotification(ctx, tx, userID, message, models.NotificationTypeCredit); err != nil {
		return nil, err
	}
	if err := r.appendEntry(ctx, tx, &models.LedgerEntry{
		ID:        entryID,
		UserID:    userID,
		Action:    models.LedgerActionEarn,
		Amount:    amount,
		SessionID: sessionID,
	}); err != nil {
		return nil, err
	}

	balance, err := r.selectBalance(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	return balance, tx.Commit()
}

// Redeem moves credits into skill coins: total_credits -= credits,
// credits_spent += credits, skill_coins += coins. The coin count is the
// caller's floor computation; the guard only protects the balance.
func (r *ledgerRepository) Redeem(ctx context.Context, userID uint64, credits, coins int64, entryID, message string) (*models.Balance, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE users
		SET total_credits = total_credits - ?, credits_spent = credits_spent + ?, skill_coins = skill_coins + ?, updated_at = ?
		WHERE id = ? AND total_credits >= ?
	`
	result, err := tx.ExecContext(ctx, query, credits, credits, coins, time.Now(), userID, credits)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem credits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, r.classifyGuardFailure(ctx, tx, userID)
	}

	if err := r.appendNotification(ctx, tx, userID, message, models.NotificationTypeDebit); err != nil {
		return nil, err
	}
	if err := r.appendEntry(ctx, tx, &models.LedgerEntry{
		ID:         entryID,
		UserID:     userID,
		Action:     models.LedgerActionRedeem,
		Amount:     credits,
		SkillCoins: coins,
	}); err != nil {
		return nil, err
	}

	balance, err := r.selectBalance(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	return balance, tx.Commit()
}

// TopUp credits a verified gateway payment. The unique index on payment_ref
// rejects a second application of the same reference inside the transaction,
// before the balance update commits.
func (r *ledgerRepository) TopUp(ctx context.Context, userID uint64, amount int64, paymentRef, entryID, message string) (*models.Balance, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.appendEntry(ctx, tx, &models.LedgerEntry{
		ID:         entryID,
		UserID:     userID,
		Action:     models.LedgerActionTopUp,
		Amount:     amount,
		PaymentRef: &paymentRef,
	}); err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrDuplicatePaymentRef
		}
		return nil, err
	}

	query := `
		UPDATE users
		SET total_credits = total_credits + ?, credits_earned = credits_earned + ?, updated_at = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query, amount, amount, time.Now(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to apply top-up: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	if err := r.appendNotification(ctx, tx, userID, message, models.NotificationTypeCredit); err != nil {
		return nil, err
	}

	balance, err := r.selectBalance(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	return balance, tx.Commit()
}

func (r *ledgerRepository) ListEntries(ctx context.Context, userID uint64, limit, offset int32) ([]models.LedgerEntry, error) {
	query := `
		SELECT id, user_id, action, amount, skill_coins, session_id, payment_ref, created_at
		FROM ledger_entries
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Action, &entry.Amount,
			&entry.SkillCoins, &entry.SessionID, &entry.PaymentRef, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// classifyGuardFailure distinguishes a missing user from a failed balance
// guard after a zero-row guarded UPDATE.
func (r *ledgerRepository) classifyGuardFailure(ctx context.Context, tx *sql.Tx, userID uint64) error {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	return ErrInsufficientBalance
}

func (r *ledgerRepository) appendNotification(ctx context.Context, tx *sql.Tx, userID uint64, message, notifType string) error {
	query := `
		INSERT INTO notifications (user_id, message, type, is_read, created_at)
		VALUES (?, ?, ?, 0, ?)
	`
	if _, err := tx.ExecContext(ctx, query, userID, message, notifType, time.Now()); err != nil {
		return fmt.Errorf("failed to append notification: %w", err)
	}
	return nil
}

func (r *ledgerRepository) appendEntry(ctx context.Context, tx *sql.Tx, entry *models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, user_id, action, amount, skill_coins, session_id, payment_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Action, entry.Amount,
		entry.SkillCoins, entry.SessionID, entry.PaymentRef, time.Now()); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

func (r *ledgerRepository) selectBalance(ctx context.Context, tx *sql.Tx, userID uint64) (*models.Balance, error) {
	query := `
		SELECT total_credits, credits_earned, credits_spent, skill_coins
		FROM users
		WHERE id = ?
	`
	balance := &models.Balance{}
	err := tx.QueryRowContext(ctx, query, userID).Scan(
		&balance.TotalCredits, &balance.CreditsEarned, &balance.CreditsSpent, &balance.SkillCoins,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}
