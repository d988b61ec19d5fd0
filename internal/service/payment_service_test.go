package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/backend/internal/gateway"
	"skillswap/backend/internal/models"
	"skillswap/backend/pkg/logger"
)

type mockOrderRepository struct {
	orders map[uint64]*models.PaymentOrder
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[uint64]*models.PaymentOrder)}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *models.PaymentOrder) error {
	order.ID = uint64(len(m.orders) + 1)
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uint64) (*models.PaymentOrder, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderRepository) Update(ctx context.Context, order *models.PaymentOrder) error {
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

type mockGatewayClient struct {
	requestFunc func(ctx context.Context, orderID uint64, amount decimal.Decimal) (*gateway.PaymentRequestResult, error)
	verifyFunc  func(ctx context.Context, token int64) (*gateway.VerifyResult, error)
}

func (m *mockGatewayClient) RequestPayment(ctx context.Context, orderID uint64, amount decimal.Decimal) (*gateway.PaymentRequestResult, error) {
	if m.requestFunc != nil {
		return m.requestFunc(ctx, orderID, amount)
	}
	return &gateway.PaymentRequestResult{Token: 555, Status: 0}, nil
}

func (m *mockGatewayClient) VerifyPayment(ctx context.Context, token int64) (*gateway.VerifyResult, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, token)
	}
	return &gateway.VerifyResult{Status: 0, RefID: "REF-1"}, nil
}

func (m *mockGatewayClient) PaymentURL(token int64) string {
	return "https://pay.example.com/pay/555"
}

func newTestPaymentService(t *testing.T, orders *mockOrderRepository, gw gateway.Client, ledger LedgerService) PaymentService {
	t.Helper()
	svc, err := NewPaymentService(orders, gw, ledger, "2.50", logger.NewLogger("test"))
	require.NoError(t, err)
	return svc
}

func TestPaymentService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("PricesCreditsInFiat", func(t *testing.T) {
		orders := newMockOrderRepository()
		gw := &mockGatewayClient{}
		gw.requestFunc = func(ctx context.Context, orderID uint64, amount decimal.Decimal) (*gateway.PaymentRequestResult, error) {
			// 200 credits at 2.50 each
			assert.True(t, amount.Equal(decimal.NewFromInt(500)), "amount = %s", amount)
			return &gateway.PaymentRequestResult{Token: 555}, nil
		}

		svc := newTestPaymentService(t, orders, gw, &mockLedgerService{})

		result, err := svc.CreateOrder(ctx, 1, 200)
		require.NoError(t, err)
		assert.NotZero(t, result.OrderID)
		assert.Contains(t, result.PaymentURL, "555")

		stored := orders.orders[result.OrderID]
		require.NotNil(t, stored)
		assert.Equal(t, models.PaymentOrderPending, stored.Status)
		require.NotNil(t, stored.Token)
		assert.Equal(t, int64(555), *stored.Token)
	})

	t.Run("RejectsNonPositiveCredits", func(t *testing.T) {
		svc := newTestPaymentService(t, newMockOrderRepository(), &mockGatewayClient{}, &mockLedgerService{})

		_, err := svc.CreateOrder(ctx, 1, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("GatewayDown", func(t *testing.T) {
		gw := &mockGatewayClient{}
		gw.requestFunc = func(ctx context.Context, orderID uint64, amount decimal.Decimal) (*gateway.PaymentRequestResult, error) {
			return nil, gateway.ErrGatewayUnavailable
		}
		svc := newTestPaymentService(t, newMockOrderRepository(), gw, &mockLedgerService{})

		_, err := svc.CreateOrder(ctx, 1, 100)
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
	})
}

func TestPaymentService_HandleCallback(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, ledger LedgerService) (PaymentService, *mockOrderRepository, uint64) {
		orders := newMockOrderRepository()
		svc := newTestPaymentService(t, orders, &mockGatewayClient{}, ledger)
		result, err := svc.CreateOrder(ctx, 1, 200)
		require.NoError(t, err)
		return svc, orders, result.OrderID
	}

	t.Run("VerifiesAndTopsUp", func(t *testing.T) {
		var topUpRef string
		ledger := &mockLedgerService{}
		ledger.topUpFunc = func(ctx context.Context, userID uint64, amount int64, paymentRef string) (*models.Balance, error) {
			assert.Equal(t, uint64(1), userID)
			assert.Equal(t, int64(200), amount)
			topUpRef = paymentRef
			return &models.Balance{TotalCredits: 200}, nil
		}

		svc, orders, orderID := setup(t, ledger)

		order, err := svc.HandleCallback(ctx, orderID, 555)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentOrderVerified, order.Status)
		assert.Equal(t, "REF-1", topUpRef)
		assert.Equal(t, models.PaymentOrderVerified, orders.orders[orderID].Status)
	})

	t.Run("ReplayedCallbackIsHarmless", func(t *testing.T) {
		topUps := 0
		ledger := &mockLedgerService{}
		ledger.topUpFunc = func(ctx context.Context, userID uint64, amount int64, paymentRef string) (*models.Balance, error) {
			topUps++
			if topUps > 1 {
				return nil, ErrDuplicatePaymentRef
			}
			return &models.Balance{}, nil
		}

		svc, _, orderID := setup(t, ledger)

		_, err := svc.HandleCallback(ctx, orderID, 555)
		require.NoError(t, err)

		// The second redirect short-circuits on the verified order.
		order, err := svc.HandleCallback(ctx, orderID, 555)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentOrderVerified, order.Status)
		assert.Equal(t, 1, topUps)
	})

	t.Run("WrongToken", func(t *testing.T) {
		svc, _, orderID := setup(t, &mockLedgerService{})

		_, err := svc.HandleCallback(ctx, orderID, 999)
		assert.ErrorIs(t, err, ErrPaymentNotVerified)
	})

	t.Run("UnknownOrder", func(t *testing.T) {
		svc := newTestPaymentService(t, newMockOrderRepository(), &mockGatewayClient{}, &mockLedgerService{})

		_, err := svc.HandleCallback(ctx, 404, 555)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("VerificationRejected", func(t *testing.T) {
		gw := &mockGatewayClient{}
		gw.verifyFunc = func(ctx context.Context, token int64) (*gateway.VerifyResult, error) {
			return &gateway.VerifyResult{Status: -1}, nil
		}

		orders := newMockOrderRepository()
		svc := newTestPaymentService(t, orders, gw, &mockLedgerService{})
		result, err := svc.CreateOrder(ctx, 1, 200)
		require.NoError(t, err)

		_, err = svc.HandleCallback(ctx, result.OrderID, 555)
		assert.ErrorIs(t, err, ErrPaymentNotVerified)
		assert.Equal(t, models.PaymentOrderPending, orders.orders[result.OrderID].Status)
	})
}

func TestPaymentService_InvalidCreditPrice(t *testing.T) {
	_, err := NewPaymentService(newMockOrderRepository(), &mockGatewayClient{}, &mockLedgerService{}, "not-a-price", logger.NewLogger("test"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidAmount))
}
