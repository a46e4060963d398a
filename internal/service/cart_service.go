package service

import (
	"context"

	"farmerfriend-backend/internal/apperr"
	"farmerfriend-backend/internal/dto"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartService keeps a user's basket on their account document as a
// productId -> quantity map.
type CartService struct {
	users    AccountRepository
	products ProductRepository
}

func NewCartService(users AccountRepository, products ProductRepository) *CartService {
	return &CartService{users: users, products: products}
}

// Get prices the stored cart against current products. Lines whose product
// is gone are left out.
func (s *CartService) Get(ctx context.Context, who *Identity) (*dto.CartView, error) {
	acc, err := s.users.FindByID(ctx, who.ID)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	return s.view(ctx, acc.Cart)
}

func (s *CartService) Add(ctx context.Context, who *Identity, productIDHex string, quantity *int) (*dto.CartView, error) {
	qty := 1
	if quantity != nil {
		qty = *quantity
	}
	if qty <= 0 {
		return nil, apperr.Validation("Quantity must be greater than 0")
	}
	pid, err := s.existingProduct(ctx, productIDHex)
	if err != nil {
		return nil, err
	}

	acc, err := s.users.AddCartItem(ctx, who.ID, pid, qty)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	return s.view(ctx, acc.Cart)
}

// Update sets a line's quantity; zero removes the line. Only listed
// products can be given a quantity.
func (s *CartService) Update(ctx context.Context, who *Identity, productIDHex string, quantity *int) (*dto.CartView, error) {
	if productIDHex == "" || quantity == nil {
		return nil, apperr.Validation("Product ID and quantity are required")
	}
	if *quantity < 0 {
		return nil, apperr.Validation("Quantity cannot be negative")
	}
	// Removing a line does not need the product to still exist.
	var pid primitive.ObjectID
	var err error
	if *quantity == 0 {
		pid, err = parseID(productIDHex, "Invalid product ID")
	} else {
		pid, err = s.existingProduct(ctx, productIDHex)
	}
	if err != nil {
		return nil, err
	}

	acc, err := s.users.SetCartItem(ctx, who.ID, pid, *quantity)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	return s.view(ctx, acc.Cart)
}

func (s *CartService) Clear(ctx context.Context, who *Identity) error {
	return notFound(s.users.ClearCart(ctx, who.ID), msgUserNotFound)
}

func (s *CartService) existingProduct(ctx context.Context, idHex string) (primitive.ObjectID, error) {
	if idHex == "" {
		return primitive.NilObjectID, apperr.Validation("Product ID is required")
	}
	pid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(msgProductNotFound)
	}
	if _, err := s.products.FindByID(ctx, pid); err != nil {
		return primitive.NilObjectID, notFound(err, msgProductNotFound)
	}
	return pid, nil
}

func (s *CartService) view(ctx context.Context, cart map[string]int) (*dto.CartView, error) {
	v := &dto.CartView{Items: []dto.CartLine{}}

	ids := make([]primitive.ObjectID, 0, len(cart))
	for hex := range cart {
		if id, err := primitive.ObjectIDFromHex(hex); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return v, nil
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		qty := cart[p.ID.Hex()]
		if qty <= 0 {
			continue
		}
		line := dto.CartLine{Product: p, Quantity: qty, LineTotal: p.Price * float64(qty)}
		v.Items = append(v.Items, line)
		v.Count += qty
		v.Subtotal += line.LineTotal
	}
	if v.Subtotal > 0 {
		v.DeliveryCharge = DeliveryCharge
	}
	v.Total = v.Subtotal + v.DeliveryCharge
	return v, nil
}
