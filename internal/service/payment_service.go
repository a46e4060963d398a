package service

import (
	"context"
	"fmt"
	"math"

	"farmerfriend-backend/internal/apperr"
	"farmerfriend-backend/internal/logger"

	"go.uber.org/zap"
)

type PaymentGateway interface {
	KeyID() string
	CreateOrder(amount int64, receipt string) (map[string]interface{}, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// PaymentService bridges checkout to the payment provider. It never touches
// stored orders.
type PaymentService struct {
	gateway PaymentGateway
	now     clock
}

func NewPaymentService(g PaymentGateway) *PaymentService {
	return &PaymentService{gateway: g, now: systemClock}
}

// CreateOrder opens a provider order for amount rupees and returns it with
// the public key id.
func (s *PaymentService) CreateOrder(ctx context.Context, amount float64) (map[string]interface{}, string, error) {
	if amount == 0 || math.IsNaN(amount) {
		return nil, "", apperr.Validation("Amount is required")
	}
	if amount < 0 {
		return nil, "", apperr.Validation("Amount must be positive")
	}

	paise := int64(math.Round(amount * 100))
	receipt := fmt.Sprintf("receipt_%d", s.now().UnixMilli())
	order, err := s.gateway.CreateOrder(paise, receipt)
	if err != nil {
		logger.FromCtx(ctx).Error("payment order failed", zap.Int64("amount", paise), zap.Error(err))
		return nil, "", err
	}
	return order, s.gateway.KeyID(), nil
}

func (s *PaymentService) Verify(ctx context.Context, orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return apperr.Validation("Payment details are required")
	}
	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		logger.FromCtx(ctx).Warn("payment signature mismatch", zap.String("razorpay_order_id", orderID))
		return apperr.Validation("Invalid signature")
	}
	return nil
}
