package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment order statuses.
const (
	PaymentOrderPending  int32 = -138 // awaiting gateway verification
	PaymentOrderVerified int32 = 0
)

// PaymentOrder tracks a credit top-up purchase through the payment gateway.
// Amount is the fiat charge; Credits is what the user receives on verification.
type PaymentOrder struct {
	ID        uint64          `db:"id"`
	UserID    uint64          `db:"user_id"`
	Credits   int64           `db:"credits"`
	Amount    decimal.Decimal `db:"amount"`
	Status    int32           `db:"status"`
	Token     *int64          `db:"token"`
	RefID     *string         `db:"ref_id"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}
