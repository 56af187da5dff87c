package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/leonjames-san/familiams/internal/money"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderItem references exactly one catalog entry: ProductID or ServiceID is
// set, never both. TotalPrice is the undiscounted unit price × quantity.
type OrderItem struct {
	ProductID   *string     `json:"product_id,omitempty"`
	ServiceID   *string     `json:"service_id,omitempty"`
	DisplayName string      `json:"display_name"`
	Quantity    int         `json:"quantity"`
	UnitPrice   money.Money `json:"unit_price"`
	TotalPrice  money.Money `json:"total_price"`
}

// Order is the durable record created from a priced cart. TotalAmount is the
// payable amount after any payment-method discount; the item totals sum to
// the undiscounted cart total.
type Order struct {
	ID            uuid.UUID   `json:"id"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	CustomerPhone string      `json:"customer_phone"`
	PaymentMethod string      `json:"payment_method"`
	TotalAmount   money.Money `json:"total_amount"`
	Status        OrderStatus `json:"status"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
