package controller

import (
	"context"
	"net/http"

	"farmerfriend-backend/internal/dto"
	"farmerfriend-backend/internal/model"

	"github.com/gin-gonic/gin"
)

type AdminAPI interface {
	Users(ctx context.Context) ([]*model.Account, error)
	Farmers(ctx context.Context) ([]*model.Account, error)
	DeleteAccount(ctx context.Context, idHex string) error
	Stats(ctx context.Context) (*model.PlatformStats, error)
	FarmerDetails(ctx context.Context, idHex string) (*dto.FarmerDetails, error)
}

type AdminController struct {
	Service AdminAPI
}

func NewAdminController(s AdminAPI) *AdminController {
	return &AdminController{Service: s}
}

func (ctl *AdminController) Users(c *gin.Context) {
	users, err := ctl.Service.Users(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

func (ctl *AdminController) Farmers(c *gin.Context) {
	farmers, err := ctl.Service.Farmers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "farmers": farmers})
}

// DELETE /api/user/admin/user/:userId
func (ctl *AdminController) DeleteAccount(c *gin.Context) {
	if err := ctl.Service.DeleteAccount(c.Request.Context(), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully"})
}

func (ctl *AdminController) Stats(c *gin.Context) {
	st, err := ctl.Service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": st})
}

// GET /api/user/admin/farmer/:farmerId
func (ctl *AdminController) FarmerDetails(c *gin.Context) {
	d, err := ctl.Service.FarmerDetails(c.Request.Context(), c.Param("farmerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"farmer":   d.Farmer,
		"products": d.Products,
		"orders":   d.Orders,
	})
}
