package controller

import (
	"context"
	"net/http"

	"farmerfriend-backend/internal/dto"
	"farmerfriend-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type CartAPI interface {
	Get(ctx context.Context, who *service.Identity) (*dto.CartView, error)
	Add(ctx context.Context, who *service.Identity, productIDHex string, quantity *int) (*dto.CartView, error)
	Update(ctx context.Context, who *service.Identity, productIDHex string, quantity *int) (*dto.CartView, error)
	Clear(ctx context.Context, who *service.Identity) error
}

type CartController struct {
	Service CartAPI
}

func NewCartController(s CartAPI) *CartController {
	return &CartController{Service: s}
}

func (ctl *CartController) Get(c *gin.Context) {
	v, err := ctl.Service.Get(c.Request.Context(), identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": v})
}

func (ctl *CartController) Add(c *gin.Context) {
	var req dto.CartItemRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	v, err := ctl.Service.Add(c.Request.Context(), identity(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item added to cart", "cart": v})
}

func (ctl *CartController) Update(c *gin.Context) {
	var req dto.CartItemRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	v, err := ctl.Service.Update(c.Request.Context(), identity(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart updated", "cart": v})
}

func (ctl *CartController) Clear(c *gin.Context) {
	if err := ctl.Service.Clear(c.Request.Context(), identity(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared"})
}
