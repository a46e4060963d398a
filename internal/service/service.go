package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"farmerfriend-backend/internal/apperr"
	"farmerfriend-backend/internal/model"
	"farmerfriend-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Storage contracts. The Mongo implementations live in internal/repository.

type AccountRepository interface {
	Role() model.Role
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.Account, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Account, error)
	List(ctx context.Context) ([]*model.Account, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, a *model.Account) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*model.Account, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expire time.Time) error
	ResetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	AddCartItem(ctx context.Context, id, productID primitive.ObjectID, qty int) (*model.Account, error)
	SetCartItem(ctx context.Context, id, productID primitive.ObjectID, qty int) (*model.Account, error)
	ClearCart(ctx context.Context, id primitive.ObjectID) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
	FindAll(ctx context.Context) ([]*model.Product, error)
	FindByFarmer(ctx context.Context, farmerID primitive.ObjectID) ([]*model.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	SetStock(ctx context.Context, id primitive.ObjectID, stock int) (*model.Product, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
	Count(ctx context.Context) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*model.Order, error)
	FindContainingProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]*model.Order, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to model.OrderStatus) (*model.Order, bool, error)
	Count(ctx context.Context) (int64, error)
	Revenue(ctx context.Context) (float64, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *model.Feedback) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Feedback, error)
	FindByProduct(ctx context.Context, productID primitive.ObjectID) ([]*model.Feedback, error)
	AddLike(ctx context.Context, id, userID primitive.ObjectID) (*model.Feedback, error)
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (*model.Feedback, error)
	AddReply(ctx context.Context, id primitive.ObjectID, r model.Reply) (*model.Feedback, error)
	Count(ctx context.Context) (int64, error)
}

// Messages shared by several operations.
const (
	msgUserNotFound    = "User not found"
	msgProductNotFound = "Product not found"
	msgAllFields       = "All fields are required"
)

var errUserNotFound = apperr.NotFound(msgUserNotFound)

// Identity is the authenticated caller. A legacy email token whose admin is
// not stored yields an identity with a zero ID and the admin role.
type Identity struct {
	ID      primitive.ObjectID
	Role    model.Role
	Name    string
	Email   string
	Account *model.Account
}

var errNoAccount = apperr.Forbidden("This action requires a registered account")

// requireAccount rejects callers without a stored account, so nothing is
// written under a zero id.
func (who *Identity) requireAccount() error {
	if who == nil || who.ID.IsZero() {
		return errNoAccount
	}
	return nil
}

// Accounts groups the three identity collections.
type Accounts struct {
	Users   AccountRepository
	Farmers AccountRepository
	Admins  AccountRepository
}

// For picks the collection holding accounts of role; unknown roles are users.
func (a Accounts) For(role model.Role) AccountRepository {
	switch role {
	case model.RoleFarmer:
		return a.Farmers
	case model.RoleAdmin:
		return a.Admins
	default:
		return a.Users
	}
}

func (a Accounts) all() []AccountRepository {
	return []AccountRepository{a.Users, a.Farmers, a.Admins}
}

// FindByEmail searches users, farmers and admins in that order.
func (a Accounts) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	for _, repo := range a.all() {
		acc, err := repo.FindByEmail(ctx, email)
		if err == nil {
			return acc, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return nil, repository.ErrNotFound
}

// Summaries resolves author ids across every collection, first hit wins.
func (a Accounts) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Summary, error) {
	out := make(map[primitive.ObjectID]*model.Summary, len(ids))
	pending := uniqueIDs(ids)
	for _, repo := range a.all() {
		if len(pending) == 0 {
			break
		}
		found, err := repo.FindByIDs(ctx, pending)
		if err != nil {
			return nil, err
		}
		for _, acc := range found {
			out[acc.ID] = acc.Summary()
		}
		pending = missing(pending, out)
	}
	return out, nil
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func missing[V any](ids []primitive.ObjectID, have map[primitive.ObjectID]V) []primitive.ObjectID {
	var out []primitive.ObjectID
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// parseID turns a hex id into an ObjectID, failing with msg as a 400.
func parseID(hex, msg string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation(msg)
	}
	return id, nil
}

// notFound rewrites repository.ErrNotFound as a 404 with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

type clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }
