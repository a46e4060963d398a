package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"farmerfriend-backend/internal/apperr"
	"farmerfriend-backend/internal/logger"
	"farmerfriend-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const identityKey = "identity"

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*service.Identity, error)
}

// Authenticate validates the bearer token and stores the caller on the context.
func Authenticate(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided, authorization denied"})
			return
		}

		who, err := auth.ValidateToken(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrTokenExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token expired"})
			return
		case errors.Is(err, service.ErrTokenInvalid):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		default:
			status, msg := apperr.Response(err)
			if status == http.StatusInternalServerError {
				logger.FromCtx(c.Request.Context()).Error("token validation failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(status, gin.H{"message": msg})
			return
		}

		c.Set(identityKey, who)
		c.Next()
	}
}

// CurrentIdentity returns the caller stored by Authenticate.
func CurrentIdentity(c *gin.Context) (*service.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	who, ok := v.(*service.Identity)
	return who, ok && who != nil
}

// SetIdentity is used by tests and internal callers that authenticate by other means.
func SetIdentity(c *gin.Context, who *service.Identity) {
	c.Set(identityKey, who)
}
