package controller

import (
	"context"
	"errors"
	"io"
	"net/http"

	"farmerfriend-backend/internal/apperr"
	"farmerfriend-backend/internal/dto"
	"farmerfriend-backend/internal/logger"
	"farmerfriend-backend/internal/middleware"
	"farmerfriend-backend/internal/model"
	"farmerfriend-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// respondError writes the {success:false, message} envelope for err.
func respondError(c *gin.Context, err error) {
	status, msg := errorResponse(c, err)
	c.JSON(status, gin.H{"success": false, "message": msg})
}

// respondLegacyError is respondError without the success flag, for the
// register and login routes.
func respondLegacyError(c *gin.Context, err error) {
	status, msg := errorResponse(c, err)
	c.JSON(status, gin.H{"message": msg})
}

func errorResponse(c *gin.Context, err error) (int, string) {
	status, msg := apperr.Response(err)
	if status >= http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	return status, msg
}

var errBadBody = apperr.Validation("Invalid request body")

// bindJSON decodes the body into dst. An empty body leaves dst zeroed so the
// service reports the missing fields.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return errBadBody
	}
	return nil
}

// identity is only called behind Authenticate.
func identity(c *gin.Context) *service.Identity {
	who, _ := middleware.CurrentIdentity(c)
	return who
}

// identityView is the user object echoed by verify-token and profile.
func identityView(who *service.Identity) any {
	if who.Account == nil {
		return gin.H{"email": who.Email, "role": who.Role}
	}
	acc := *who.Account
	acc.Role = who.Role
	return acc
}

type OrderAPI interface {
	CreateOrder(ctx context.Context, who *service.Identity, req dto.CreateOrderRequest) (*model.Order, error)
	FarmerOrders(ctx context.Context, farmerID primitive.ObjectID) ([]*model.Order, error)
	UserOrders(ctx context.Context, who *service.Identity) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, who *service.Identity, orderIDHex, status string) (*model.Order, error)
}

type OrderController struct {
	Service OrderAPI
}

func NewOrderController(s OrderAPI) *OrderController {
	return &OrderController{Service: s}
}

// POST /api/order/create
func (ctl *OrderController) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	o, err := ctl.Service.CreateOrder(c.Request.Context(), identity(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Order created successfully", "order": o})
}

// GET /api/order/farmer-orders
func (ctl *OrderController) FarmerOrders(c *gin.Context) {
	orders, err := ctl.Service.FarmerOrders(c.Request.Context(), identity(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// GET /api/order/user-orders
func (ctl *OrderController) UserOrders(c *gin.Context) {
	orders, err := ctl.Service.UserOrders(c.Request.Context(), identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// PUT /api/order/update-status
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	var req dto.UpdateOrderStatusRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	o, err := ctl.Service.UpdateStatus(c.Request.Context(), identity(c), req.OrderID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated successfully", "order": o})
}
