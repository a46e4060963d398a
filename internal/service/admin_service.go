package service

import (
	"context"

	"farmerfriend-backend/internal/apperr"
	"farmerfriend-backend/internal/dto"
	"farmerfriend-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type AdminService struct {
	accounts  Accounts
	products  ProductRepository
	orders    OrderRepository
	feedbacks FeedbackRepository
	orderView *OrderService
}

func NewAdminService(accounts Accounts, products ProductRepository, orders OrderRepository, feedbacks FeedbackRepository, orderView *OrderService) *AdminService {
	return &AdminService{
		accounts:  accounts,
		products:  products,
		orders:    orders,
		feedbacks: feedbacks,
		orderView: orderView,
	}
}

func (s *AdminService) Users(ctx context.Context) ([]*model.Account, error) {
	return s.accounts.Users.List(ctx)
}

func (s *AdminService) Farmers(ctx context.Context) ([]*model.Account, error) {
	return s.accounts.Farmers.List(ctx)
}

// DeleteAccount removes a user or, failing that, a farmer with the id. Their
// products, orders and feedback are left in place.
func (s *AdminService) DeleteAccount(ctx context.Context, idHex string) error {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return errUserNotFound
	}
	for _, repo := range []AccountRepository{s.accounts.Users, s.accounts.Farmers} {
		deleted, err := repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if deleted {
			return nil
		}
	}
	return errUserNotFound
}

// Stats gathers the dashboard counters concurrently.
func (s *AdminService) Stats(ctx context.Context) (*model.PlatformStats, error) {
	var st model.PlatformStats
	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int64, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			*dst = n
			return err
		})
	}
	count(&st.TotalUsers, s.accounts.Users.Count)
	count(&st.TotalFarmers, s.accounts.Farmers.Count)
	count(&st.TotalProducts, s.products.Count)
	count(&st.TotalOrders, s.orders.Count)
	count(&st.TotalFeedback, s.feedbacks.Count)
	g.Go(func() error {
		rev, err := s.orders.Revenue(gctx)
		st.TotalRevenue = rev
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *AdminService) FarmerDetails(ctx context.Context, idHex string) (*dto.FarmerDetails, error) {
	const msg = "Farmer not found"
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, apperr.NotFound(msg)
	}
	farmer, err := s.accounts.Farmers.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msg)
	}

	products, err := s.products.FindByFarmer(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderView.OrdersWithFarmerProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.FarmerDetails{Farmer: farmer, Products: products, Orders: orders}, nil
}
