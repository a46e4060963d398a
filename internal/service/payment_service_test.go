package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) KeyID() string { return m.Called().String(0) }

func (m *mockGateway) CreateOrder(amount int64, receipt string) (map[string]interface{}, error) {
	args := m.Called(amount, receipt)
	order, _ := args.Get(0).(map[string]interface{})
	return order, args.Error(1)
}

func (m *mockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return m.Called(orderID, paymentID, signature).Bool(0)
}

func TestPaymentCreateOrderConvertsToPaise(t *testing.T) {
	g := &mockGateway{}
	svc := NewPaymentService(g)
	svc.now = fixedClock(testNow)

	receipt := "receipt_1740823200000"
	g.On("CreateOrder", int64(19999), receipt).Return(map[string]interface{}{"id": "order_1"}, nil)
	g.On("KeyID").Return("rzp_test")

	order, key, err := svc.CreateOrder(context.Background(), 199.99)
	require.NoError(t, err)
	assert.Equal(t, "order_1", order["id"])
	assert.Equal(t, "rzp_test", key)
	g.AssertExpectations(t)
}

func TestPaymentCreateOrderRejections(t *testing.T) {
	g := &mockGateway{}
	svc := NewPaymentService(g)
	ctx := context.Background()

	_, _, err := svc.CreateOrder(ctx, 0)
	requireAppErr(t, err, http.StatusBadRequest, "Amount is required")
	_, _, err = svc.CreateOrder(ctx, -5)
	requireAppErr(t, err, http.StatusBadRequest, "Amount must be positive")

	g.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, errors.New("provider down"))
	_, _, err = svc.CreateOrder(ctx, 10)
	assert.EqualError(t, err, "provider down")
}

func TestPaymentVerify(t *testing.T) {
	g := &mockGateway{}
	svc := NewPaymentService(g)
	ctx := context.Background()
	g.On("VerifySignature", "order_1", "pay_1", "good").Return(true)
	g.On("VerifySignature", "order_1", "pay_1", "bad").Return(false)

	assert.NoError(t, svc.Verify(ctx, "order_1", "pay_1", "good"))
	requireAppErr(t, svc.Verify(ctx, "order_1", "pay_1", "bad"), http.StatusBadRequest, "Invalid signature")
	requireAppErr(t, svc.Verify(ctx, "", "pay_1", "good"), http.StatusBadRequest, "Payment details are required")
}
