// Package payment wraps the Razorpay order API and its checkout signature.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"farmerfriend-backend/internal/config"

	"github.com/razorpay/razorpay-go"
)

const Currency = "INR"

var ErrNotConfigured = errors.New("razorpay credentials are not configured")

type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type Gateway struct {
	keyID  string
	secret string
	orders orderCreator
}

func NewGateway(cfg config.RazorpayConfig) *Gateway {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return &Gateway{keyID: cfg.KeyID, secret: cfg.KeySecret, orders: client.Order}
}

// KeyID is the public key the checkout widget needs.
func (g *Gateway) KeyID() string {
	return g.keyID
}

// CreateOrder opens a provider order for amount paise and returns the
// provider's order object untouched.
func (g *Gateway) CreateOrder(amount int64, receipt string) (map[string]interface{}, error) {
	if g.keyID == "" || g.secret == "" {
		return nil, ErrNotConfigured
	}
	order, err := g.orders.Create(map[string]interface{}{
		"amount":   amount,
		"currency": Currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("creating razorpay order: %w", err)
	}
	return order, nil
}

// VerifySignature checks the checkout signature in constant time.
func (g *Gateway) VerifySignature(orderID, paymentID, signature string) bool {
	expected := Sign(g.secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign is the hex HMAC-SHA256 of "orderID|paymentID" under secret.
func Sign(secret, orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}
