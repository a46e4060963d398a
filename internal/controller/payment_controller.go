package controller

import (
	"context"
	"net/http"

	"farmerfriend-backend/internal/dto"

	"github.com/gin-gonic/gin"
)

type PaymentAPI interface {
	CreateOrder(ctx context.Context, amount float64) (map[string]interface{}, string, error)
	Verify(ctx context.Context, orderID, paymentID, signature string) error
}

type PaymentController struct {
	Service PaymentAPI
}

func NewPaymentController(s PaymentAPI) *PaymentController {
	return &PaymentController{Service: s}
}

func (ctl *PaymentController) CreateOrder(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	order, key, err := ctl.Service.CreateOrder(c.Request.Context(), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order, "key": key})
}

func (ctl *PaymentController) Verify(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if err := ctl.Service.Verify(c.Request.Context(), req.OrderID, req.PaymentID, req.Signature); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment verified successfully"})
}
