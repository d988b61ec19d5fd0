package service

import (
	"context"
	"errors"
	"fmt"

	"skillswap/backend/internal/models"
	"skillswap/backend/internal/repository"
	"skillswap/backend/pkg/helpers"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBelowRedeemMinimum  = errors.New("credits to redeem are below one skill coin")
	ErrDuplicatePaymentRef = errors.New("payment reference already applied")
)

// LedgerService owns the credit economy: total_credits is the authoritative
// spendable balance, credits_earned/credits_spent are independent running
// counters, and skill_coins only ever grows through redemption.
type LedgerService interface {
	Debit(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error)
	Earn(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error)
	RedeemForSkillCoin(ctx context.Context, userID uint64, creditsToRedeem int64) (*models.Balance, error)
	TopUp(ctx context.Context, userID uint64, amount int64, paymentRef string) (*models.Balance, error)
	GetStatement(ctx context.Context, userID uint64, page, perPage int32) ([]models.LedgerEntry, error)
	SkillCoinRate() int64
}

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
	idGen      *helpers.IDGenerator
	rate       int64
}

func NewLedgerService(ledgerRepo repository.LedgerRepository, idGen *helpers.IDGenerator, skillCoinRate int64) LedgerService {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		idGen:      idGen,
		rate:       skillCoinRate,
	}
}

func (s *ledgerService) SkillCoinRate() int64 {
	return s.rate
}

func (s *ledgerService) Debit(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	message := fmt.Sprintf("%d credits were debited from your account", amount)
	balance, err := s.ledgerRepo.Debit(ctx, userID, amount, sessionID, s.idGen.GenerateLedgerEntryID(), message)
	if err != nil {
		return nil, s.mapLedgerError(err, "debit")
	}

	return balance, nil
}

func (s *ledgerService) Earn(ctx context.Context, userID uint64, amount int64, sessionID *uint64) (*models.Balance, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	message := fmt.Sprintf("You earned %d credits", amount)
	balance, err := s.ledgerRepo.Earn(ctx, userID, amount, sessionID, s.idGen.GenerateLedgerEntryID(), message)
	if err != nil {
		return nil, s.mapLedgerError(err, "earn")
	}

	return balance, nil
}

// RedeemForSkillCoin converts credits into skill coins at the configured
// rate. The requested amount is floored to a whole multiple of the rate: the
// remainder stays un-redeemed on the credit balance.
func (s *ledgerService) RedeemForSkillCoin(ctx context.Context, userID uint64, creditsToRedeem int64) (*models.Balance, error) {
	if creditsToRedeem <= 0 {
		return nil, ErrInvalidAmount
	}

	coins := creditsToRedeem / s.rate
	if coins < 1 {
		return nil, ErrBelowRedeemMinimum
	}
	creditsSpent := coins * s.rate

	message := fmt.Sprintf("Redeemed %d credits for %d SkillCoin", creditsSpent, coins)
	balance, err := s.ledgerRepo.Redeem(ctx, userID, creditsSpent, coins, s.idGen.GenerateLedgerEntryID(), message)
	if err != nil {
		return nil, s.mapLedgerError(err, "redeem")
	}

	return balance, nil
}

// TopUp applies a verified gateway payment. The payment reference is the
// idempotency key: applying the same reference twice fails with
// ErrDuplicatePaymentRef and leaves the balance untouched.
func (s *ledgerService) TopUp(ctx context.Context, userID uint64, amount int64, paymentRef string) (*models.Balance, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if paymentRef == "" {
		return nil, ErrInvalidAmount
	}

	message := fmt.Sprintf("%d credits were added to your account", amount)
	balance, err := s.ledgerRepo.TopUp(ctx, userID, amount, paymentRef, s.idGen.GenerateLedgerEntryID(), message)
	if err != nil {
		return nil, s.mapLedgerError(err, "top-up")
	}

	return balance, nil
}

func (s *ledgerService) GetStatement(ctx context.Context, userID uint64, page, perPage int32) ([]models.LedgerEntry, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	entries, err := s.ledgerRepo.ListEntries(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}

	return entries, nil
}

func (s *ledgerService) mapLedgerError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrInsufficientBalance):
		return ErrInsufficientBalance
	case errors.Is(err, repository.ErrDuplicatePaymentRef):
		return ErrDuplicatePaymentRef
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
