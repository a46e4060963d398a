// dto.go
package dto

import "farmerfriend-backend/internal/model"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the legacy login/register envelope; it carries no success flag.
type AuthResponse struct {
	User    any        `json:"user"`
	Role    model.Role `json:"role"`
	Token   string     `json:"token"`
	Message string     `json:"message"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ProductInput holds the raw multipart form values of addproduct.
type ProductInput struct {
	Name        string `form:"name"`
	Price       string `form:"price"`
	Description string `form:"description"`
	Category    string `form:"category"`
	Stock       string `form:"stock"`
}

type ProductIDRequest struct {
	ProductID string `json:"productId"`
	ID        string `json:"id"`
}

// Resolve accepts either productId or id.
func (r ProductIDRequest) Resolve() string {
	if r.ProductID != "" {
		return r.ProductID
	}
	return r.ID
}

type UpdateStockRequest struct {
	ProductID string `json:"productId"`
	Stock     *int   `json:"stock"`
}

type OrderItemInput struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type CreateOrderRequest struct {
	Items           []OrderItemInput      `json:"items"`
	TotalAmount     float64               `json:"totalAmount"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
}

type UpdateOrderStatusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type CreatePaymentRequest struct {
	Amount float64 `json:"amount"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type CreateFeedbackRequest struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type ReplyRequest struct {
	Comment string `json:"comment"`
}

type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type CartLine struct {
	Product   *model.Product `json:"product"`
	Quantity  int            `json:"quantity"`
	LineTotal float64        `json:"lineTotal"`
}

type CartView struct {
	Items          []CartLine `json:"items"`
	Count          int        `json:"count"`
	Subtotal       float64    `json:"subtotal"`
	DeliveryCharge float64    `json:"deliveryCharge"`
	Total          float64    `json:"total"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type FarmerDetails struct {
	Farmer   *model.Account   `json:"farmer"`
	Products []*model.Product `json:"products"`
	Orders   []*model.Order   `json:"orders"`
}
