package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"farmerfriend-backend/internal/apperr"
	"farmerfriend-backend/internal/metrics"
	"farmerfriend-backend/internal/model"
	"farmerfriend-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type validatorFunc func(ctx context.Context, token string) (*service.Identity, error)

func (f validatorFunc) ValidateToken(ctx context.Context, token string) (*service.Identity, error) {
	return f(ctx, token)
}

func farmerValidator(_ context.Context, token string) (*service.Identity, error) {
	switch token {
	case "good":
		return &service.Identity{ID: primitive.NewObjectID(), Role: model.RoleFarmer, Name: "Ravi"}, nil
	case "expired":
		return nil, service.ErrTokenExpired
	default:
		return nil, service.ErrTokenInvalid
	}
}

func serve(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r := gin.New()
	r.GET("/x", Authenticate(validatorFunc(farmerValidator)), func(c *gin.Context) {
		who, ok := CurrentIdentity(c)
		require.True(t, ok)
		c.String(http.StatusOK, who.Name)
	})

	tests := []struct {
		name   string
		token  string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, `{"message":"No token provided, authorization denied"}`},
		{"expired", "expired", http.StatusUnauthorized, `{"message":"Token expired"}`},
		{"bad signature", "forged", http.StatusUnauthorized, `{"message":"Invalid token"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.token)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}

	w := serve(r, "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ravi", w.Body.String())
}

func TestAuthenticateAccountGone(t *testing.T) {
	gone := validatorFunc(func(context.Context, string) (*service.Identity, error) {
		return nil, apperr.NotFound("User not found")
	})
	r := gin.New()
	r.GET("/x", Authenticate(gone), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, "anything")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"User not found"}`, w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	as := func(role model.Role) gin.HandlerFunc {
		return func(c *gin.Context) {
			if role != "" {
				SetIdentity(c, &service.Identity{Role: role})
			}
		}
	}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	r := gin.New()
	r.GET("/anon", as(""), RequireRoles(model.RoleFarmer, model.RoleAdmin), ok)
	r.GET("/user", as(model.RoleUser), RequireRoles(model.RoleFarmer, model.RoleAdmin), ok)
	r.GET("/admin", as(model.RoleAdmin), RequireRoles(model.RoleFarmer, model.RoleAdmin), ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Access denied. Required role: farmer or admin"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func TestRateLimit(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	deny := &stubLimiter{allow: false}
	broken := &stubLimiter{err: errors.New("redis down")}

	r := gin.New()
	r.POST("/api/user/login", RateLimit(deny, m), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/user/register", RateLimit(broken, m), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/api/user/login", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, []string{"/api/user/login|10.0.0.7"}, deny.keys)
	n, err := testutil.GatherAndCount(reg, "rate_limited_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/user/register", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
