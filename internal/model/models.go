// models.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleFarmer Role = "farmer"
	RoleAdmin  Role = "admin"
)

// ParseRole maps a registration role string to a Role; anything unrecognised is a plain user.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleFarmer:
		return RoleFarmer
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Account is the shared document shape of the users, farmers and admins collections.
type Account struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"`
	Password            string             `bson:"password" json:"-"`
	Phone               string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address             string             `bson:"address,omitempty" json:"address,omitempty"`
	Cart                map[string]int     `bson:"cart,omitempty" json:"cart,omitempty"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire *time.Time         `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Role comes from the collection the document was read from.
	Role Role `bson:"-" json:"role,omitempty"`
}

// Summary is the populated {_id, name, email} view embedded in joined responses.
type Summary struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

func (a *Account) Summary() *Summary {
	return &Summary{ID: a.ID, Name: a.Name, Email: a.Email}
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	Description string             `bson:"description" json:"description"`
	Image       []string           `bson:"image" json:"image"`
	Category    string             `bson:"category" json:"category"`
	Stock       int                `bson:"stock" json:"stock"`
	FarmerID    primitive.ObjectID `bson:"farmerId" json:"farmerId"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`

	Farmer *Summary `bson:"-" json:"farmer,omitempty"`
}

// ProductSummary is the populated product view embedded in order items.
type ProductSummary struct {
	ID       primitive.ObjectID `json:"_id"`
	Name     string             `json:"name"`
	Price    float64            `json:"price"`
	Category string             `json:"category"`
	Image    []string           `json:"image,omitempty"`
}

func (p *Product) Summary(withImages bool) *ProductSummary {
	s := &ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Category: p.Category}
	if withImages {
		s.Image = p.Image
	}
	return s
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderApproved   OrderStatus = "approved"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var validOrderStatuses = map[OrderStatus]bool{
	OrderPending:    true,
	OrderApproved:   true,
	OrderProcessing: true,
	OrderShipped:    true,
	OrderDelivered:  true,
	OrderCancelled:  true,
}

func (s OrderStatus) Valid() bool {
	return validOrderStatuses[s]
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	Status          OrderStatus        `bson:"status" json:"status"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus   PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`

	User *Summary `bson:"-" json:"user,omitempty"`
}

// OrderItem is the checkout-time snapshot of one cart line.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`

	Product *ProductSummary `bson:"-" json:"product,omitempty"`
}

type ShippingAddress struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zipCode" json:"zipCode"`
	Country string `bson:"country" json:"country"`
}

// ItemsTotal is the sum of price*quantity over the snapshot items.
func (o *Order) ItemsTotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

type Feedback struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	ProductID primitive.ObjectID   `bson:"productId" json:"productId"`
	UserID    primitive.ObjectID   `bson:"userId" json:"userId"`
	Rating    int                  `bson:"rating" json:"rating"`
	Comment   string               `bson:"comment" json:"comment"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Replies   []Reply              `bson:"replies" json:"replies"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`

	User *Summary `bson:"-" json:"user,omitempty"`
}

type Reply struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	User *Summary `bson:"-" json:"user,omitempty"`
}

// LikedBy reports whether id is in the likes set.
func (f *Feedback) LikedBy(id primitive.ObjectID) bool {
	for _, l := range f.Likes {
		if l == id {
			return true
		}
	}
	return false
}

// PlatformStats backs the admin dashboard counters.
type PlatformStats struct {
	TotalUsers    int64   `json:"totalUsers"`
	TotalFarmers  int64   `json:"totalFarmers"`
	TotalProducts int64   `json:"totalProducts"`
	TotalOrders   int64   `json:"totalOrders"`
	TotalFeedback int64   `json:"totalFeedback"`
	TotalRevenue  float64 `json:"totalRevenue"`
}
