package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/backend/internal/models"
	"skillswap/backend/internal/repository"
	"skillswap/backend/pkg/helpers"
)

type mockLedgerRepository struct {
	debitFunc       func(ctx context.Context, userID uint64, amount int64, sessionID *uint64, entryID, message string) (*models.Balance, error)
	earnFunc        func(ctx context.Context, userID uint64, amount int64, sessionID *uint64, entryID, message string) (*models.Balance, error)
	redeemFunc      func(ctx context.Context, userID uint64, credits, coins int64, entryID, message string) (*models.Balance, error)
	topUpFunc       func(ctx context.Context, userID uint64, amount int64, paymentRef, entryID, message string) (*models.Balance, error)
	listEntriesFunc func(ctx context.Context, userID uint64, limit, offset int32) ([]models.LedgerEntry, error)
}

func (m *mockLedgerRepository) Debit(ctx context.Context, userID uint64, amount int64, sessionID *uint64, entryID, message string) (*models.Balance, error) {
	if m.debitFunc != nil {
		return m.debitFunc(ctx, userID, amount, sessionID, entryID, message)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLedgerRepository) Earn(ctx context.Context, userID uint64, amount int64, sessionID *uint64, entryID, message string) (*models.Balance, error) {
	if m.earnFunc != nil {
		return m.earnFunc(ctx, userID, amount, sessionID, entryID, message)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLedgerRepository) Redeem(ctx context.Context, userID uint64, credits, coins int64, entryID, message string) (*models.Balance, error) {
	if m.redeemFunc != nil {
		return m.redeemFunc(ctx, userID, credits, coins, entryID, message)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLedgerRepository) TopUp(ctx context.Context, userID uint64, amount int64, paymentRef, entryID, message string) (*models.Balance, error) {
	if m.topUpFunc != nil {
		return m.topUpFunc(ctx, userID, amount, paymentRef, entryID, message)
	}
	return nil, errors.New("not implemented")
}

func (m *mockLedgerRepository) ListEntries(ctx context.Context, userID uint64, limit, offset int32) ([]models.LedgerEntry, error) {
	if m.listEntriesFunc != nil {
		return m.listEntriesFunc(ctx, userID, limit, offset)
	}
	return nil, errors.New("not implemented")
}

func newTestLedgerService(repo repository.LedgerRepository) LedgerService {
	return NewLedgerService(repo, helpers.NewIDGenerator(), 1000)
}

func TestLedgerService_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectsNonPositiveAmount", func(t *testing.T) {
		svc := newTestLedgerService(&mockLedgerRepository{})

		_, err := svc.Debit(ctx, 1, 0, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = svc.Debit(ctx, 1, -5, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("MapsInsufficientBalance", func(t *testing.T) {
		repo := &mockLedgerRepository{}
		repo.debitFunc = func(ctx context.Context, userID uint64, amount int64, sessionID *uint64, entryID, message string) (*models.Balance, error) {
			return nil, repository.ErrInsufficientBalance
		}
		svc := newTestLedgerService(repo)

		_, err := svc.Debit(ctx, 1, 100, nil)
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("PassesSessionReference", func(t *testing.T) {
		sessionID := uint64(7)
		repo := &mockLedgerRepository{}
		repo.debitFunc = func(ctx context.Context, userID uint64, amount int64, sid *uint64, entryID, message string) (*models.Balance, error) {
			require.NotNil(t, sid)
			assert.Equal(t, sessionID, *sid)
			assert.NotEmpty(t, entryID)
			return &models.Balance{TotalCredits: 150, CreditsSpent: 100}, nil
		}
		svc := newTestLedgerService(repo)

		balance, err := svc.Debit(ctx, 1, 100, &sessionID)
		require.NoError(t, err)
		assert.Equal(t, int64(150), balance.TotalCredits)
	})
}

func TestLedgerService_RedeemForSkillCoin(t *testing.T) {
	ctx := context.Background()

	t.Run("FloorsToWholeCoins", func(t *testing.T) {
		// 2500 credits at 1000/coin: 2 coins minted, 2000 credits spent,
		// the 500-credit remainder stays on the balance.
		repo := &mockLedgerRepository{}
		var gotCredits, gotCoins int64
		repo.redeemFunc = func(ctx context.Context, userID uint64, credits, coins int64, entryID, message string) (*models.Balance, error) {
			gotCredits = credits
			gotCoins = coins
			return &models.Balance{TotalCredits: 500, CreditsSpent: 2000, SkillCoins: 2}, nil
		}
		svc := newTestLedgerService(repo)

		balance, err := svc.RedeemForSkillCoin(ctx, 1, 2500)
		require.NoError(t, err)
		assert.Equal(t, int64(2000), gotCredits)
		assert.Equal(t, int64(2), gotCoins)
		assert.Equal(t, int64(500), balance.TotalCredits)
	})

	t.Run("RejectsBelowOneCoin", func(t *testing.T) {
		svc := newTestLedgerService(&mockLedgerRepository{})

		_, err := svc.RedeemForSkillCoin(ctx, 1, 999)
		assert.ErrorIs(t, err, ErrBelowRedeemMinimum)
	})

	t.Run("RejectsNonPositive", func(t *testing.T) {
		svc := newTestLedgerService(&mockLedgerRepository{})

		_, err := svc.RedeemForSkillCoin(ctx, 1, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("ExactMultiple", func(t *testing.T) {
		repo := &mockLedgerRepository{}
		repo.redeemFunc = func(ctx context.Context, userID uint64, credits, coins int64, entryID, message string) (*models.Balance, error) {
			assert.Equal(t, int64(3000), credits)
			assert.Equal(t, int64(3), coins)
			return &models.Balance{SkillCoins: 3}, nil
		}
		svc := newTestLedgerService(repo)

		_, err := svc.RedeemForSkillCoin(ctx, 1, 3000)
		require.NoError(t, err)
	})
}

func TestLedgerService_TopUp(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresPaymentRef", func(t *testing.T) {
		svc := newTestLedgerService(&mockLedgerRepository{})

		_, err := svc.TopUp(ctx, 1, 100, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("MapsDuplicateRef", func(t *testing.T) {
		repo := &mockLedgerRepository{}
		repo.topUpFunc = func(ctx context.Context, userID uint64, amount int64, paymentRef, entryID, message string) (*models.Balance, error) {
			return nil, repository.ErrDuplicatePaymentRef
		}
		svc := newTestLedgerService(repo)

		_, err := svc.TopUp(ctx, 1, 100, "REF-1")
		assert.ErrorIs(t, err, ErrDuplicatePaymentRef)
	})

	t.Run("Success", func(t *testing.T) {
		repo := &mockLedgerRepository{}
		repo.topUpFunc = func(ctx context.Context, userID uint64, amount int64, paymentRef, entryID, message string) (*models.Balance, error) {
			assert.Equal(t, "REF-2", paymentRef)
			return &models.Balance{TotalCredits: 400, CreditsEarned: 100}, nil
		}
		svc := newTestLedgerService(repo)

		balance, err := svc.TopUp(ctx, 1, 100, "REF-2")
		require.NoError(t, err)
		assert.Equal(t, int64(400), balance.TotalCredits)
	})
}
