package models

import "time"

// Ledger entry actions.
const (
	LedgerActionDebit  = "debit"
	LedgerActionEarn   = "earn"
	LedgerActionRedeem = "redeem"
	LedgerActionTopUp  = "topup"
)

// LedgerEntry is one immutable row of the credit audit trail. Every balance
// mutation writes exactly one entry. PaymentRef is unique when present, which
// makes top-ups idempotent by gateway reference.
type LedgerEntry struct {
	ID         string    `db:"id"` // VARCHAR PK like TRX-20241029-A1B2C3
	UserID     uint64    `db:"user_id"`
	Action     string    `db:"action"`
	Amount     int64     `db:"amount"`
	SkillCoins int64     `db:"skill_coins"`
	SessionID  *uint64   `db:"session_id"`
	PaymentRef *string   `db:"payment_ref"`
	CreatedAt  time.Time `db:"created_at"`
}

// Balance is the post-operation balance snapshot returned by ledger operations.
type Balance struct {
	TotalCredits  int64 `json:"total_credits"`
	CreditsEarned int64 `json:"credits_earned"`
	CreditsSpent  int64 `json:"credits_spent"`
	SkillCoins    int64 `json:"skill_coins"`
}
