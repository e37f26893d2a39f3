package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Inventory is the
// number of units currently in stock; it is only ever decremented inside the
// checkout transaction.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Category  string
	Image     string
	Inventory int
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}

// ErrFilterNotFound is returned when a requested catalog filter does not exist.
var ErrFilterNotFound = errors.New("filter not found")

// Filter is a storefront navigation entry. SortOrder controls display position
// within a category and is unique per category.
type Filter struct {
	ID        string
	Name      string
	Category  string
	SortOrder int
}

// FilterRepository provides catalog filter reads and back-office reordering.
// SwapOrder exchanges the sort positions of two filters atomically.
type FilterRepository interface {
	ListFilters(ctx context.Context) ([]Filter, error)
	SwapOrder(ctx context.Context, idA, idB string) error
}
