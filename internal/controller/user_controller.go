package controller

import (
	"context"
	"net/http"

	"farmerfriend-backend/internal/dto"
	"farmerfriend-backend/internal/model"
	"farmerfriend-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type AccountAPI interface {
	Register(ctx context.Context, name, email, password, role string) (*service.Session, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	AdminLogin(ctx context.Context, email, password string) (*service.Session, error)
	UpdateProfile(ctx context.Context, who *service.Identity, name, email string) (*model.Account, error)
	ChangePassword(ctx context.Context, who *service.Identity, current, next string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type UserController struct {
	Accounts AccountAPI
}

func NewUserController(a AccountAPI) *UserController {
	return &UserController{Accounts: a}
}

func (ctl *UserController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondLegacyError(c, err)
		return
	}
	sess, err := ctl.Accounts.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		respondLegacyError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{User: sess.Account, Role: sess.Role, Token: sess.Token, Message: "Register successful"})
}

func (ctl *UserController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondLegacyError(c, err)
		return
	}
	sess, err := ctl.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondLegacyError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{User: sess.Account, Role: sess.Role, Token: sess.Token, Message: "Login successful"})
}

func (ctl *UserController) AdminLogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondLegacyError(c, err)
		return
	}
	sess, err := ctl.Accounts.AdminLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondLegacyError(c, err)
		return
	}
	user := gin.H{
		"_id":   sess.Account.ID,
		"email": sess.Account.Email,
		"name":  sess.Account.Name,
		"role":  model.RoleAdmin,
	}
	c.JSON(http.StatusOK, dto.AuthResponse{User: user, Role: model.RoleAdmin, Token: sess.Token, Message: "Admin login successful"})
}

func (ctl *UserController) VerifyToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": identityView(identity(c))})
}

func (ctl *UserController) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": identityView(identity(c))})
}

func (ctl *UserController) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the home page"})
}

// Dashboard greets the caller; the role check happens in the router.
func (ctl *UserController) Dashboard(greeting string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": greeting, "user": identityView(identity(c))})
	}
}

func (ctl *UserController) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	acc, err := ctl.Accounts.UpdateProfile(c.Request.Context(), identity(c), req.Name, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully", "user": acc})
}

func (ctl *UserController) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if err := ctl.Accounts.ChangePassword(c.Request.Context(), identity(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed successfully"})
}

func (ctl *UserController) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if err := ctl.Accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": service.MsgResetRequested})
}

// POST /api/user/reset-password/:token
func (ctl *UserController) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if err := ctl.Accounts.ResetPassword(c.Request.Context(), c.Param("token"), req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
}
