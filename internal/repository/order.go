package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/powerfit/powerfit-api/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, user_id, address_id, status, fulfillment_status, payment_method,
		coupon_code, subtotal, shipping, discount, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	createOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)`

	// The inventory guard lives in the WHERE clause: a shortfall simply
	// matches zero rows and the whole transaction rolls back.
	decrementInventorySQL = `UPDATE products SET inventory = inventory - $2
		WHERE id = $1 AND inventory >= $2`

	getOrderSQL = `SELECT id, user_id, address_id, status, fulfillment_status,
		payment_method, coupon_code, subtotal, shipping, discount, total,
		preference_id, created_at, updated_at
		FROM orders WHERE id = $1`

	getOrderItemsSQL = `SELECT i.id, i.product_id, p.name, p.image, i.quantity, i.price
		FROM order_items i JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1 ORDER BY i.id`

	setPreferenceSQL = `UPDATE orders SET preference_id = $2, updated_at = now() WHERE id = $1`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`

	setFulfillmentSQL = `UPDATE orders SET fulfillment_status = $2, updated_at = now() WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order, its items, and the matching inventory decrements
// in one transaction. When any product lacks stock the whole transaction is
// rolled back and *order.InsufficientStockError identifies the product.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, o.AddressID, string(o.Status), string(o.Fulfillment),
		o.PaymentMethod, o.CouponCode, o.Subtotal, o.Shipping, o.Discount, o.Total,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, createOrderItemSQL,
			item.ID, o.ID, item.ProductID, item.Quantity, item.Price,
		)
		if err != nil {
			return fmt.Errorf("creating order item for product %q: %w", item.ProductID, err)
		}

		tag, err := tx.Exec(ctx, decrementInventorySQL, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("decrementing inventory for product %q: %w", item.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return &order.InsufficientStockError{ProductID: item.ProductID}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns an order with its items. Item product names and images are
// joined in from the catalog for display.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var (
		o      order.Order
		status string
		fulfil string
	)
	err := r.pool.QueryRow(ctx, getOrderSQL, id).Scan(
		&o.ID, &o.UserID, &o.AddressID, &status, &fulfil,
		&o.PaymentMethod, &o.CouponCode, &o.Subtotal, &o.Shipping, &o.Discount, &o.Total,
		&o.PreferenceID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o.Status = order.Status(status)
	o.Fulfillment = order.FulfillmentStatus(fulfil)

	rows, err := r.pool.Query(ctx, getOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %q: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %q: %w", id, err)
	}

	return &o, nil
}

// SetPreference stores the payment preference id created for the order.
func (r *OrderRepository) SetPreference(ctx context.Context, orderID, preferenceID string) error {
	tag, err := r.pool.Exec(ctx, setPreferenceSQL, orderID, preferenceID)
	if err != nil {
		return fmt.Errorf("setting preference for order %q: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UpdateStatus sets the payment status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, orderID, string(status))
	if err != nil {
		return fmt.Errorf("updating status for order %q: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// SetFulfillment sets the fulfillment stage of an order.
func (r *OrderRepository) SetFulfillment(ctx context.Context, orderID string, f order.FulfillmentStatus) error {
	tag, err := r.pool.Exec(ctx, setFulfillmentSQL, orderID, string(f))
	if err != nil {
		return fmt.Errorf("setting fulfillment for order %q: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var (
		item  order.Item
		price decimal.Decimal
	)
	err := row.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.ProductImage, &item.Quantity, &price)
	item.Price = price
	return item, err
}
