package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"farmerfriend-backend/internal/apperr"
	"farmerfriend-backend/internal/dto"
	"farmerfriend-backend/internal/logger"
	"farmerfriend-backend/internal/metrics"
	"farmerfriend-backend/internal/model"
	"farmerfriend-backend/internal/notify"
	"farmerfriend-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DeliveryCharge is added to every non-empty basket.
const DeliveryCharge = 50.0

// Notifier hands messages off for background delivery.
type Notifier interface {
	Dispatch(ctx context.Context, m notify.Message)
}

var errConcurrentStatus = apperr.New(apperr.CodeConflict, "Order status changed concurrently, retry")

type OrderService struct {
	orders   OrderRepository
	products ProductRepository
	accounts Accounts
	notifier Notifier
	metrics  *metrics.Metrics
}

func NewOrderService(orders OrderRepository, products ProductRepository, accounts Accounts, n Notifier, m *metrics.Metrics) *OrderService {
	return &OrderService{orders: orders, products: products, accounts: accounts, notifier: n, metrics: m}
}

// CreateOrder stores the basket as sent. The client total is kept even when it
// disagrees with the items; the mismatch is only logged.
func (s *OrderService) CreateOrder(ctx context.Context, who *Identity, req dto.CreateOrderRequest) (*model.Order, error) {
	if err := who.requireAccount(); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("Order must contain at least one item")
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, in := range req.Items {
		pid, err := parseID(in.ProductID, "Invalid product ID")
		if err != nil {
			return nil, err
		}
		if in.Quantity <= 0 {
			return nil, apperr.Validation("Quantity must be greater than 0")
		}
		items = append(items, model.OrderItem{ProductID: pid, Quantity: in.Quantity, Price: in.Price})
	}

	o := &model.Order{
		UserID:          who.ID,
		Items:           items,
		TotalAmount:     req.TotalAmount,
		Status:          model.OrderPending,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   model.PaymentPaid,
	}

	expected := o.ItemsTotal()
	if expected > 0 {
		expected += DeliveryCharge
	}
	if math.Abs(expected-o.TotalAmount) > 0.01 {
		logger.FromCtx(ctx).Warn("order total does not match items",
			zap.String("user_id", who.ID.Hex()),
			zap.Float64("total_amount", o.TotalAmount),
			zap.Float64("expected", expected),
		)
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// FarmerOrders returns the orders that include the farmer's products, with
// every other farmer's items removed.
func (s *OrderService) FarmerOrders(ctx context.Context, farmerID primitive.ObjectID) ([]*model.Order, error) {
	return s.farmerOrders(ctx, farmerID, true)
}

// OrdersWithFarmerProducts is FarmerOrders with the items left whole.
func (s *OrderService) OrdersWithFarmerProducts(ctx context.Context, farmerID primitive.ObjectID) ([]*model.Order, error) {
	return s.farmerOrders(ctx, farmerID, false)
}

func (s *OrderService) farmerOrders(ctx context.Context, farmerID primitive.ObjectID, onlyOwn bool) ([]*model.Order, error) {
	own, err := s.ownProducts(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(own))
	for id := range own {
		ids = append(ids, id)
	}

	orders, err := s.orders.FindContainingProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := orders
	if onlyOwn {
		out = filterOwnItems(orders, own)
	}

	if err := s.joinBuyers(ctx, out); err != nil {
		return nil, err
	}
	if err := s.joinProducts(ctx, out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// filterOwnItems drops foreign items, then orders left without items.
func filterOwnItems(orders []*model.Order, own map[primitive.ObjectID]bool) []*model.Order {
	out := make([]*model.Order, 0, len(orders))
	for _, o := range orders {
		kept := o.Items[:0]
		for _, it := range o.Items {
			if own[it.ProductID] {
				kept = append(kept, it)
			}
		}
		if len(kept) == 0 {
			continue
		}
		o.Items = kept
		out = append(out, o)
	}
	return out
}

func (s *OrderService) UserOrders(ctx context.Context, who *Identity) ([]*model.Order, error) {
	orders, err := s.orders.FindByUser(ctx, who.ID)
	if err != nil {
		return nil, err
	}
	if err := s.joinProducts(ctx, orders, true); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order to status on behalf of a farmer who sells at
// least one of its items.
//
// The write only lands if the order still has the status that was read. On
// approval each of the farmer's items takes its quantity from stock with a
// guarded decrement; if one cannot be covered, the decrements already taken
// are returned and the status is put back. Emails go out after the change has
// been committed and never affect the outcome.
func (s *OrderService) UpdateStatus(ctx context.Context, who *Identity, orderIDHex, status string) (*model.Order, error) {
	if strings.TrimSpace(orderIDHex) == "" || status == "" {
		return nil, apperr.Validation("Order ID and status are required")
	}
	next := model.OrderStatus(status)
	if !next.Valid() {
		return nil, apperr.Validation("Invalid status")
	}
	id, err := parseID(orderIDHex, "Invalid order ID")
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Order not found")
	}

	own, err := s.ownProducts(ctx, who.ID)
	if err != nil {
		return nil, err
	}
	if !containsOwnItem(order, own) {
		return nil, apperr.Forbidden("You don't have permission to update this order")
	}

	prev := order.Status
	if prev == next {
		return order, nil
	}

	updated, ok, err := s.orders.TransitionStatus(ctx, id, prev, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errConcurrentStatus
	}

	log := logger.FromCtx(ctx).With(
		zap.String("order_id", id.Hex()),
		zap.String("farmer_id", who.ID.Hex()),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
	)

	if next == model.OrderApproved {
		if err := s.reserveStock(ctx, order, own); err != nil {
			if e, ok := apperr.As(err); ok && e.Code() == apperr.CodeValidation {
				s.metrics.StockRejected()
			}
			if _, reverted, rerr := s.orders.TransitionStatus(ctx, id, next, prev); rerr != nil || !reverted {
				log.Error("reverting order status failed", zap.Bool("reverted", reverted), zap.Error(rerr))
			}
			log.Info("order approval rolled back", zap.Error(err))
			return nil, err
		}
	}
	log.Info("order status updated")

	switch next {
	case model.OrderApproved:
		s.notifyBuyer(ctx, updated, notify.KindOrderApproved, nil)
	case model.OrderDelivered:
		s.notifyBuyer(ctx, updated, notify.KindOrderDelivered, s.orderLines(ctx, updated))
	}
	return updated, nil
}

// reserveStock takes each owned item's quantity from stock. Products that no
// longer exist are skipped.
func (s *OrderService) reserveStock(ctx context.Context, order *model.Order, own map[primitive.ObjectID]bool) error {
	var taken []model.OrderItem
	release := func() {
		for _, it := range taken {
			if err := s.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				logger.FromCtx(ctx).Error("restoring stock failed",
					zap.String("product_id", it.ProductID.Hex()),
					zap.Int("quantity", it.Quantity),
					zap.Error(err),
				)
			}
		}
	}

	for _, it := range order.Items {
		if !own[it.ProductID] {
			continue
		}
		ok, err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			release()
			return err
		}
		if ok {
			taken = append(taken, it)
			continue
		}

		p, err := s.products.FindByID(ctx, it.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		release()
		if err != nil {
			return err
		}
		return apperr.Validation(fmt.Sprintf("Insufficient stock for %s. Available: %d, Required: %d", p.Name, p.Stock, it.Quantity))
	}
	return nil
}

func (s *OrderService) notifyBuyer(ctx context.Context, o *model.Order, kind notify.Kind, lines []notify.OrderLine) {
	buyer, err := s.accounts.Users.FindByID(ctx, o.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.FromCtx(ctx).Warn("buyer lookup failed", zap.String("order_id", o.ID.Hex()), zap.Error(err))
		}
		return
	}
	if buyer.Email == "" {
		return
	}

	s.notifier.Dispatch(ctx, notify.Message{
		Kind:  kind,
		To:    buyer.Email,
		Name:  buyer.Name,
		Order: &notify.OrderSummary{ID: o.ID.Hex(), Items: lines, Total: o.TotalAmount},
	})
}

func (s *OrderService) orderLines(ctx context.Context, o *model.Order) []notify.OrderLine {
	names := map[primitive.ObjectID]string{}
	ids := make([]primitive.ObjectID, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	if products, err := s.products.FindByIDs(ctx, ids); err == nil {
		for _, p := range products {
			names[p.ID] = p.Name
		}
	}

	lines := make([]notify.OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		name, ok := names[it.ProductID]
		if !ok {
			name = "Product"
		}
		lines = append(lines, notify.OrderLine{Name: name, Quantity: it.Quantity, Price: it.Price})
	}
	return lines
}

func (s *OrderService) ownProducts(ctx context.Context, farmerID primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	products, err := s.products.FindByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	own := make(map[primitive.ObjectID]bool, len(products))
	for _, p := range products {
		own[p.ID] = true
	}
	return own, nil
}

func containsOwnItem(o *model.Order, own map[primitive.ObjectID]bool) bool {
	for _, it := range o.Items {
		if own[it.ProductID] {
			return true
		}
	}
	return false
}

func (s *OrderService) joinBuyers(ctx context.Context, orders []*model.Order) error {
	ids := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.UserID)
	}
	buyers, err := s.accounts.Users.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]*model.Summary, len(buyers))
	for _, b := range buyers {
		byID[b.ID] = b.Summary()
	}
	for _, o := range orders {
		o.User = byID[o.UserID]
	}
	return nil
}

func (s *OrderService) joinProducts(ctx context.Context, orders []*model.Order, withImages bool) error {
	var ids []primitive.ObjectID
	for _, o := range orders {
		for _, it := range o.Items {
			ids = append(ids, it.ProductID)
		}
	}
	products, err := s.products.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]*model.ProductSummary, len(products))
	for _, p := range products {
		byID[p.ID] = p.Summary(withImages)
	}
	for _, o := range orders {
		for i := range o.Items {
			o.Items[i].Product = byID[o.Items[i].ProductID]
		}
	}
	return nil
}
