package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"skillswap/backend/internal/models"
)

type PaymentOrderRepository interface {
	Create(ctx context.Context, order *models.PaymentOrder) error
	FindByID(ctx context.Context, id uint64) (*models.PaymentOrder, error)
	Update(ctx context.Context, order *models.PaymentOrder) error
}

type paymentOrderRepository struct {
	db *sql.DB
}

func NewPaymentOrderRepository(db *sql.DB) PaymentOrderRepository {
	return &paymentOrderRepository{db: db}
}

func (r *paymentOrderRepository) Create(ctx context.Context, order *models.PaymentOrder) error {
	query := `
		INSERT INTO payment_orders (user_id, credits, amount, status, token, ref_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		order.UserID, order.Credits, order.Amount.String(), order.Status,
		order.Token, order.RefID, time.Now(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to create payment order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get order id: %w", err)
	}
	order.ID = uint64(id)

	return nil
}

func (r *paymentOrderRepository) FindByID(ctx context.Context, id uint64) (*models.PaymentOrder, error) {
	query := `
		SELECT id, user_id, credits, amount, status, token, ref_id, created_at, updated_at
		FROM payment_orders
		WHERE id = ?
	`
	order := &models.PaymentOrder{}
	var amount string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.UserID, &order.Credits, &amount, &order.Status,
		&order.Token, &order.RefID, &order.CreatedAt, &order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment order: %w", err)
	}

	order.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		order.Amount = decimal.Zero
	}

	return order, nil
}

func (r *paymentOrderRepository) Update(ctx context.Context, order *models.PaymentOrder) error {
	query := `
		UPDATE payment_orders
		SET status = ?, token = ?, ref_id = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query, order.Status, order.Token, order.RefID, time.Now(), order.ID)
	if err != nil {
		return fmt.Errorf("failed to update payment order: %w", err)
	}

	return nil
}
