package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the payment state of an order. It is driven exclusively by the
// payment provider's webhook notifications.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// FulfillmentStatus is the shipping/handling stage of an order. It is a
// separate dimension from Status, mutated only by back-office actions.
type FulfillmentStatus string

const (
	FulfillmentProcessing FulfillmentStatus = "processing"
	FulfillmentShipped    FulfillmentStatus = "shipped"
	FulfillmentDelivered  FulfillmentStatus = "delivered"
)

// ParseFulfillment validates a back-office supplied fulfillment status.
func ParseFulfillment(s string) (FulfillmentStatus, bool) {
	switch FulfillmentStatus(s) {
	case FulfillmentProcessing, FulfillmentShipped, FulfillmentDelivered:
		return FulfillmentStatus(s), true
	}
	return "", false
}

// Sentinel errors for order validation and lookup.
var (
	ErrNotFound   = fmt.Errorf("order not found")
	ErrEmptyItems = fmt.Errorf("items required")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// InsufficientStockError indicates the requested quantity exceeds the
// product's current inventory. The whole checkout is rolled back.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// Order is a persisted customer order. Subtotal, Shipping, Discount and
// Total are fixed at creation time; Status and UpdatedAt change only via the
// webhook processor, Fulfillment only via back-office actions.
type Order struct {
	ID            string
	UserID        string
	AddressID     string
	Status        Status
	Fulfillment   FulfillmentStatus
	PaymentMethod string
	CouponCode    string
	Subtotal      decimal.Decimal
	Shipping      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PreferenceID  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []Item
}

// Item is one order line. Price is a snapshot of the unit price at purchase
// time and never follows later catalog changes. ProductName and ProductImage
// are joined in on reads for display purposes.
type Item struct {
	ID           string
	ProductID    string
	ProductName  string
	ProductImage string
	Quantity     int
	Price        decimal.Decimal
}

// Repository defines persistence operations for orders.
//
// Create persists the order and its items and decrements product inventory
// in a single transaction; on any failure nothing is applied and inventory
// shortfalls surface as *InsufficientStockError.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	SetPreference(ctx context.Context, orderID, preferenceID string) error
	UpdateStatus(ctx context.Context, orderID string, status Status) error
	SetFulfillment(ctx context.Context, orderID string, f FulfillmentStatus) error
}
