package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"skillswap/backend/internal/gateway"
	"skillswap/backend/internal/models"
	"skillswap/backend/internal/repository"
	"skillswap/backend/pkg/logger"
)

var (
	ErrOrderNotFound      = errors.New("payment order not found")
	ErrPaymentNotVerified = errors.New("payment was not verified by the gateway")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// CheckoutResult carries what the client needs to send the payer to the
// gateway.
type CheckoutResult struct {
	OrderID    uint64
	PaymentURL string
}

// PaymentService sells credits for fiat through the payment gateway. The
// purchase runs in two legs: CreateOrder books the order and hands back a
// redirect URL, HandleCallback verifies the charge with the gateway and
// applies the credits through the ledger.
type PaymentService interface {
	CreateOrder(ctx context.Context, userID uint64, credits int64) (*CheckoutResult, error)
	HandleCallback(ctx context.Context, orderID uint64, token int64) (*models.PaymentOrder, error)
}

type paymentService struct {
	orderRepo   repository.PaymentOrderRepository
	gateway     gateway.Client
	ledger      LedgerService
	creditPrice decimal.Decimal
	log         *logger.Logger
}

func NewPaymentService(
	orderRepo repository.PaymentOrderRepository,
	gw gateway.Client,
	ledger LedgerService,
	creditPrice string,
	log *logger.Logger,
) (PaymentService, error) {
	price, err := decimal.NewFromString(creditPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid credit price %q: %w", creditPrice, err)
	}

	return &paymentService{
		orderRepo:   orderRepo,
		gateway:     gw,
		ledger:      ledger,
		creditPrice: price,
		log:         log,
	}, nil
}

func (s *paymentService) CreateOrder(ctx context.Context, userID uint64, credits int64) (*CheckoutResult, error) {
	if credits <= 0 {
		return nil, ErrInvalidAmount
	}

	amount := s.creditPrice.Mul(decimal.NewFromInt(credits))

	order := &models.PaymentOrder{
		UserID:  userID,
		Credits: credits,
		Amount:  amount,
		Status:  models.PaymentOrderPending,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	result, err := s.gateway.RequestPayment(ctx, order.ID, amount)
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayUnavailable) {
			return nil, ErrGatewayUnavailable
		}
		return nil, fmt.Errorf("failed to request payment: %w", err)
	}
	if !result.Success() {
		s.log.WithUserID(userID).WithField("gateway_status", result.Status).Warn("payment request rejected")
		return nil, ErrPaymentNotVerified
	}

	order.Token = &result.Token
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to store payment token: %w", err)
	}

	return &CheckoutResult{
		OrderID:    order.ID,
		PaymentURL: s.gateway.PaymentURL(result.Token),
	}, nil
}

// HandleCallback finishes the purchase. The ledger's payment-reference
// idempotency makes a replayed callback harmless: the duplicate top-up is
// rejected and the already-verified order is returned as-is.
func (s *paymentService) HandleCallback(ctx context.Context, orderID uint64, token int64) (*models.PaymentOrder, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if order.Status == models.PaymentOrderVerified {
		return order, nil
	}
	if order.Token == nil || *order.Token != token {
		return nil, ErrPaymentNotVerified
	}

	result, err := s.gateway.VerifyPayment(ctx, token)
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayUnavailable) {
			return nil, ErrGatewayUnavailable
		}
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if !result.Success() {
		s.log.WithUserID(order.UserID).WithField("gateway_status", result.Status).Warn("payment verification rejected")
		return nil, ErrPaymentNotVerified
	}

	paymentRef := result.RefID
	if paymentRef == "" {
		paymentRef = strconv.FormatInt(token, 10)
	}

	if _, err := s.ledger.TopUp(ctx, order.UserID, order.Credits, paymentRef); err != nil {
		if !errors.Is(err, ErrDuplicatePaymentRef) {
			return nil, err
		}
		s.log.WithUserID(order.UserID).WithField("payment_ref", paymentRef).Info("duplicate payment callback ignored")
	}

	order.Status = models.PaymentOrderVerified
	order.RefID = &paymentRef
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to mark order verified: %w", err)
	}

	return order, nil
}
