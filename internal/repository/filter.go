package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/powerfit/powerfit-api/internal/domain/product"
)

const (
	listFiltersSQL = `SELECT id, name, category, sort_order
		FROM filters ORDER BY category, sort_order`

	getFilterOrderSQL = `SELECT sort_order FROM filters WHERE id = $1`

	setFilterOrderSQL = `UPDATE filters SET sort_order = $2 WHERE id = $1`
)

var _ product.FilterRepository = (*FilterRepository)(nil)

// FilterRepository implements product.FilterRepository backed by PostgreSQL.
type FilterRepository struct {
	pool *pgxpool.Pool
}

// NewFilterRepository returns a FilterRepository that uses the given pool.
func NewFilterRepository(pool *pgxpool.Pool) *FilterRepository {
	return &FilterRepository{pool: pool}
}

// ListFilters returns all filters ordered by category then position.
func (r *FilterRepository) ListFilters(ctx context.Context) ([]product.Filter, error) {
	rows, err := r.pool.Query(ctx, listFiltersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing filters: %w", err)
	}
	return pgx.CollectRows(rows, scanFilter)
}

// SwapOrder exchanges the sort positions of two filters in one transaction.
// The (category, sort_order) unique constraint requires parking one filter on
// a temporary negative position before the exchange.
func (r *FilterRepository) SwapOrder(ctx context.Context, idA, idB string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	orderA, err := filterOrder(ctx, tx, idA)
	if err != nil {
		return err
	}
	orderB, err := filterOrder(ctx, tx, idB)
	if err != nil {
		return err
	}

	for _, step := range []struct {
		id        string
		sortOrder int
	}{
		{idA, -1},
		{idB, orderA},
		{idA, orderB},
	} {
		if _, err := tx.Exec(ctx, setFilterOrderSQL, step.id, step.sortOrder); err != nil {
			return fmt.Errorf("moving filter %q: %w", step.id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing filter swap: %w", err)
	}
	return nil
}

func filterOrder(ctx context.Context, tx pgx.Tx, id string) (int, error) {
	var sortOrder int
	err := tx.QueryRow(ctx, getFilterOrderSQL, id).Scan(&sortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, product.ErrFilterNotFound
		}
		return 0, fmt.Errorf("getting filter %q: %w", id, err)
	}
	return sortOrder, nil
}

func scanFilter(row pgx.CollectableRow) (product.Filter, error) {
	var (
		f         product.Filter
		sortOrder int32
	)
	err := row.Scan(&f.ID, &f.Name, &f.Category, &sortOrder)
	f.SortOrder = int(sortOrder)
	return f, err
}
