// Package notify renders and delivers the transactional emails.
package notify

import "context"

type Kind string

const (
	KindOrderApproved  Kind = "order_approved"
	KindOrderDelivered Kind = "order_delivered"
	KindPasswordReset  Kind = "password_reset"
	KindContact        Kind = "contact"
)

// Message is one email to deliver. It is also the JSON body relayed over
// RabbitMQ, so every field is plain data.
type Message struct {
	Kind    Kind   `json:"kind"`
	To      string `json:"to"`
	Name    string `json:"name"`
	ReplyTo string `json:"replyTo,omitempty"`

	ResetLink string        `json:"resetLink,omitempty"`
	Order     *OrderSummary `json:"order,omitempty"`
	Contact   *ContactForm  `json:"contact,omitempty"`
}

type OrderSummary struct {
	ID    string      `json:"id"`
	Items []OrderLine `json:"items"`
	Total float64     `json:"total"`
}

type OrderLine struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers a message synchronously.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, m Message) error

func (f SenderFunc) Send(ctx context.Context, m Message) error { return f(ctx, m) }
