package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/powerfit/powerfit-api/internal/domain/payment"
)

const (
	// ON CONFLICT makes replayed webhook deliveries no-ops instead of
	// duplicate audit rows.
	appendTransactionSQL = `INSERT INTO payment_transactions
		(id, order_id, payment_id, status, amount, provider)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_id, payment_id, status) DO NOTHING`

	listTransactionsSQL = `SELECT id, order_id, payment_id, status, amount, provider, created_at
		FROM payment_transactions WHERE order_id = $1 ORDER BY created_at DESC`
)

var _ payment.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository implements payment.TransactionRepository backed by
// PostgreSQL.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository returns a TransactionRepository that uses the
// given pool.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Append records a provider notification. Appending an already recorded
// (order, payment, status) triple is a no-op.
func (r *TransactionRepository) Append(ctx context.Context, t *payment.Transaction) error {
	_, err := r.pool.Exec(ctx, appendTransactionSQL,
		t.ID, t.OrderID, t.PaymentID, t.Status, t.Amount, t.Provider,
	)
	if err != nil {
		return fmt.Errorf("appending transaction for order %q: %w", t.OrderID, err)
	}
	return nil
}

// ListByOrder returns the audit trail for an order, newest first.
func (r *TransactionRepository) ListByOrder(ctx context.Context, orderID string) ([]payment.Transaction, error) {
	rows, err := r.pool.Query(ctx, listTransactionsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions for order %q: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanTransaction)
}

func scanTransaction(row pgx.CollectableRow) (payment.Transaction, error) {
	var (
		t      payment.Transaction
		amount decimal.Decimal
	)
	err := row.Scan(&t.ID, &t.OrderID, &t.PaymentID, &t.Status, &amount, &t.Provider, &t.CreatedAt)
	t.Amount = amount
	return t, err
}
