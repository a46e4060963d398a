package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmerfriend-backend/internal/model"
	"farmerfriend-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

var signingMethod = jwt.SigningMethodHS256

// TokenClaims is the bearer token payload. Email is only present on legacy
// admin tokens, which carry no id or role.
type TokenClaims struct {
	ID    string `json:"id,omitempty"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// AuthService issues bearer tokens and resolves them back to an Identity.
type AuthService struct {
	secret   []byte
	ttl      time.Duration
	accounts Accounts
	now      clock
}

func NewAuthService(secret string, ttl time.Duration, accounts Accounts) *AuthService {
	return &AuthService{
		secret:   []byte(secret),
		ttl:      ttl,
		accounts: accounts,
		now:      systemClock,
	}
}

func (a *AuthService) IssueToken(id primitive.ObjectID, role model.Role) (string, error) {
	now := a.now()
	claims := TokenClaims{
		ID:   id.Hex(),
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry.
func (a *AuthService) ParseToken(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ValidateToken resolves token to the caller. The account is looked up in the
// collection named by the role claim; a vanished account is a 404.
func (a *AuthService) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	claims, err := a.ParseToken(token)
	if err != nil {
		return nil, err
	}

	if claims.Email != "" && claims.Role == "" {
		return a.legacyAdmin(ctx, claims.Email)
	}

	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	role := model.ParseRole(claims.Role)
	acc, err := a.accounts.For(role).FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &Identity{
		ID:      acc.ID,
		Role:    role,
		Name:    acc.Name,
		Email:   acc.Email,
		Account: acc,
	}, nil
}

// legacyAdmin resolves an email-only token to the stored admin when there is
// one. Otherwise the caller is an admin without an account.
func (a *AuthService) legacyAdmin(ctx context.Context, email string) (*Identity, error) {
	acc, err := a.accounts.Admins.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return &Identity{Email: email, Role: model.RoleAdmin}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Identity{ID: acc.ID, Role: model.RoleAdmin, Name: acc.Name, Email: acc.Email, Account: acc}, nil
}
