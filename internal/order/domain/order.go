package domain

import (
	"time"

	"github.com/ridloal/woodkits-store/internal/pricing"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	StatusPaid           OrderStatus = "PAID"
	StatusInProduction   OrderStatus = "IN_PRODUCTION"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusPaymentTimeout OrderStatus = "PAYMENT_TIMEOUT"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPendingPayment: {StatusPaid, StatusCancelled, StatusPaymentTimeout},
	StatusPaid:           {StatusInProduction, StatusCancelled},
	StatusInProduction:   {StatusShipped},
	StatusShipped:        {StatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusPaid, StatusInProduction, StatusShipped,
		StatusDelivered, StatusCancelled, StatusPaymentTimeout:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HoldsStock reports whether stock reserved for the order is still held.
func (s OrderStatus) HoldsStock() bool {
	return s == StatusPendingPayment || s == StatusPaid
}

type Customer struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	Notes   string `json:"notes,omitempty"`
}

type Order struct {
	ID          string          `json:"id"`
	Customer    Customer        `json:"customer"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Status      OrderStatus     `json:"status"`
	PaymentRef  string          `json:"paymentRef,omitempty"`
	Locale      string          `json:"locale"`
	Items       []OrderItem     `json:"items,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// OrderItem keeps the configuration the customer chose and the unit price
// computed for it at checkout.
type OrderItem struct {
	ID            string                `json:"id"`
	OrderID       string                `json:"-"`
	ProductID     string                `json:"productId"`
	ProductName   string                `json:"productName"`
	Quantity      int                   `json:"quantity"`
	Configuration pricing.Configuration `json:"configuration"`
	UnitPrice     decimal.Decimal       `json:"unitPrice"`
	LineTotal     decimal.Decimal       `json:"lineTotal"`
	CreatedAt     time.Time             `json:"createdAt"`
}

type CreateOrderItemRequest struct {
	ProductID     string                `json:"productId" binding:"required"`
	Quantity      int                   `json:"quantity" binding:"required,gt=0"`
	Configuration pricing.Configuration `json:"configuration"`
}

type CreateOrderRequest struct {
	Customer Customer                 `json:"customer"`
	Items    []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Locale   string                   `json:"-"`
}

type CreateOrderResponse struct {
	Order
}

type OrderFilter struct {
	Status OrderStatus
	Limit  int
	Offset int
	// CreatedBefore, when set, leaves out orders placed after it.
	CreatedBefore time.Time
	// After continues a listing past the given order.
	After *OrderCursor
}

// OrderCursor is the position of an order in the created_at DESC, id DESC
// listing order.
type OrderCursor struct {
	CreatedAt time.Time
	ID        string
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}
