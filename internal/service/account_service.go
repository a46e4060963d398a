package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"farmerfriend-backend/internal/apperr"
	"farmerfriend-backend/internal/logger"
	"farmerfriend-backend/internal/model"
	"farmerfriend-backend/internal/notify"
	"farmerfriend-backend/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetTokenTTL     = time.Hour
	minPasswordLength = 6
	bcryptCost        = 10

	msgInvalidCredentials = "Please enter a valid email and password."
	// MsgResetRequested is returned by ForgotPassword whether or not the email exists.
	MsgResetRequested = "If that email exists, a password reset link has been sent"
)

// AccountService covers registration, login, profile and password flows for
// all three account kinds.
type AccountService struct {
	accounts    Accounts
	auth        *AuthService
	mailer      notify.Sender
	frontendURL string
	now         clock
}

func NewAccountService(accounts Accounts, auth *AuthService, mailer notify.Sender, frontendURL string) *AccountService {
	return &AccountService{
		accounts:    accounts,
		auth:        auth,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         systemClock,
	}
}

// Session is a freshly authenticated account with its bearer token.
type Session struct {
	Account *model.Account
	Role    model.Role
	Token   string
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(b), err
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *AccountService) Register(ctx context.Context, name, email, password, role string) (*Session, error) {
	if name == "" || email == "" || password == "" || role == "" {
		return nil, apperr.Validation(msgAllFields)
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Validation("Email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	r := model.ParseRole(role)
	acc := &model.Account{Name: name, Email: email, Password: hash}
	if err := s.accounts.For(r).Create(ctx, acc); err != nil {
		return nil, err
	}

	return s.session(acc, r)
}

// Login checks users, farmers and admins in that order; the first email hit
// decides the role.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	acc, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Validation(msgInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !checkPassword(acc.Password, password) {
		return nil, apperr.Validation(msgInvalidCredentials)
	}
	return s.session(acc, acc.Role)
}

func (s *AccountService) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	acc, err := s.accounts.Admins.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.CodeUnauthorized, msgInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !checkPassword(acc.Password, password) {
		return nil, apperr.New(apperr.CodeUnauthorized, msgInvalidCredentials)
	}
	return s.session(acc, model.RoleAdmin)
}

func (s *AccountService) session(acc *model.Account, role model.Role) (*Session, error) {
	token, err := s.auth.IssueToken(acc.ID, role)
	if err != nil {
		return nil, err
	}
	acc.Role = role
	return &Session{Account: acc, Role: role, Token: token}, nil
}

// UpdateProfile changes name and email. The email must not belong to any
// other account in any collection.
func (s *AccountService) UpdateProfile(ctx context.Context, who *Identity, name, email string) (*model.Account, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, apperr.Validation("Name and email are required")
	}

	other, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil && (other.ID != who.ID || other.Role != who.Role):
		return nil, apperr.Validation("Email already in use")
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	acc, err := s.accounts.For(who.Role).UpdateProfile(ctx, who.ID, name, email)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	return acc, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, who *Identity, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("Current password and new password are required")
	}
	if len(next) < minPasswordLength {
		return apperr.Validation("New password must be at least 6 characters")
	}

	repo := s.accounts.For(who.Role)
	acc, err := repo.FindByID(ctx, who.ID)
	if err != nil {
		return notFound(err, msgUserNotFound)
	}
	if !checkPassword(acc.Password, current) {
		return apperr.Validation("Current password is incorrect")
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	return notFound(repo.SetPassword(ctx, acc.ID, hash), msgUserNotFound)
}

// ForgotPassword mails a one-hour reset link to users and farmers. Unknown
// emails get the same answer as known ones.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation("Email is required")
	}

	repo, acc, err := s.findResettable(ctx, func(r AccountRepository) (*model.Account, error) {
		return r.FindByEmail(ctx, email)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)

	if err := repo.SetResetToken(ctx, acc.ID, hashResetToken(token), s.now().Add(resetTokenTTL)); err != nil {
		return err
	}

	err = s.mailer.Send(ctx, notify.Message{
		Kind:      notify.KindPasswordReset,
		To:        acc.Email,
		Name:      acc.Name,
		ResetLink: s.frontendURL + "/reset-password/" + token,
	})
	if err != nil {
		logger.FromCtx(ctx).Error("password reset email failed", zap.String("email", acc.Email), zap.Error(err))
		return apperr.Wrap(apperr.CodeInternal, err, "Failed to send reset email. Please try again later.")
	}
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return apperr.Validation("New password is required")
	}
	if len(newPassword) < minPasswordLength {
		return apperr.Validation("Password must be at least 6 characters")
	}

	hashed := hashResetToken(token)
	now := s.now()
	repo, acc, err := s.findResettable(ctx, func(r AccountRepository) (*model.Account, error) {
		return r.FindByResetToken(ctx, hashed, now)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Validation("Invalid or expired reset token")
	}
	if err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return repo.ResetPassword(ctx, acc.ID, hash)
}

// findResettable runs find against users, then farmers. Admins have no reset flow.
func (s *AccountService) findResettable(ctx context.Context, find func(AccountRepository) (*model.Account, error)) (AccountRepository, *model.Account, error) {
	for _, repo := range []AccountRepository{s.accounts.Users, s.accounts.Farmers} {
		acc, err := find(repo)
		if err == nil {
			return repo, acc, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, nil, err
		}
	}
	return nil, nil, repository.ErrNotFound
}

// BootstrapAdmin creates the configured admin unless one with that email exists.
// It reports whether an account was created.
func (s *AccountService) BootstrapAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	if _, err := s.accounts.Admins.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	if err := s.accounts.Admins.Create(ctx, &model.Account{Name: name, Email: email, Password: hash}); err != nil {
		return false, err
	}
	return true, nil
}
