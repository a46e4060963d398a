package middleware

import (
	"net/http"
	"strings"

	"farmerfriend-backend/internal/model"

	"github.com/gin-gonic/gin"
)

// RequireRoles lets the request through only when the caller has one of roles.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	denied := "Access denied. Required role: " + strings.Join(names, " or ")

	return func(c *gin.Context) {
		who, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		for _, r := range roles {
			if who.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": denied})
	}
}
