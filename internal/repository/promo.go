package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/powerfit/powerfit-api/internal/domain/promo"
)

const (
	getPromotionByCodeSQL = `SELECT id, name, code, discount_type, discount_value,
		starts_at, ends_at, is_active, min_purchase, created_at
		FROM promotions WHERE UPPER(code) = UPPER($1)`

	listPromotionsSQL = `SELECT id, name, code, discount_type, discount_value,
		starts_at, ends_at, is_active, min_purchase, created_at
		FROM promotions ORDER BY created_at DESC`

	createPromotionSQL = `INSERT INTO promotions
		(id, name, code, discount_type, discount_value, starts_at, ends_at, is_active, min_purchase)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updatePromotionSQL = `UPDATE promotions SET name = $2, code = $3, discount_type = $4,
		discount_value = $5, starts_at = $6, ends_at = $7, is_active = $8, min_purchase = $9
		WHERE id = $1`

	deletePromotionSQL = `DELETE FROM promotions WHERE id = $1`
)

var _ promo.Repository = (*PromoRepository)(nil)

// PromoRepository implements promo.Repository backed by PostgreSQL.
type PromoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository returns a PromoRepository that uses the given pool.
func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// FindByCode looks up a promotion by its code (case-insensitive). Returns
// promo.ErrInvalidPromo when no promotion exists for the code.
func (r *PromoRepository) FindByCode(ctx context.Context, code string) (*promo.Promotion, error) {
	rows, err := r.pool.Query(ctx, getPromotionByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promo.ErrInvalidPromo
		}
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}
	return &p, nil
}

// List returns all promotions, newest first.
func (r *PromoRepository) List(ctx context.Context) ([]promo.Promotion, error) {
	rows, err := r.pool.Query(ctx, listPromotionsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing promotions: %w", err)
	}
	return pgx.CollectRows(rows, scanPromotion)
}

// Create inserts a new promotion.
func (r *PromoRepository) Create(ctx context.Context, p *promo.Promotion) error {
	_, err := r.pool.Exec(ctx, createPromotionSQL,
		p.ID, p.Name, p.Code, string(p.DiscountType), p.DiscountValue,
		p.StartsAt, p.EndsAt, p.Active, p.MinPurchase,
	)
	if err != nil {
		return fmt.Errorf("creating promotion %q: %w", p.Code, err)
	}
	return nil
}

// Update rewrites an existing promotion. Returns promo.ErrInvalidPromo when
// the id does not exist.
func (r *PromoRepository) Update(ctx context.Context, p *promo.Promotion) error {
	tag, err := r.pool.Exec(ctx, updatePromotionSQL,
		p.ID, p.Name, p.Code, string(p.DiscountType), p.DiscountValue,
		p.StartsAt, p.EndsAt, p.Active, p.MinPurchase,
	)
	if err != nil {
		return fmt.Errorf("updating promotion %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return promo.ErrInvalidPromo
	}
	return nil
}

// Delete removes a promotion by id. Returns promo.ErrInvalidPromo when the id
// does not exist.
func (r *PromoRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deletePromotionSQL, id)
	if err != nil {
		return fmt.Errorf("deleting promotion %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return promo.ErrInvalidPromo
	}
	return nil
}

func scanPromotion(row pgx.CollectableRow) (promo.Promotion, error) {
	var (
		p             promo.Promotion
		discountType  string
		discountValue decimal.Decimal
		minPurchase   decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Code, &discountType, &discountValue,
		&p.StartsAt, &p.EndsAt, &p.Active, &minPurchase, &p.CreatedAt,
	)
	p.DiscountType = promo.DiscountType(discountType)
	p.DiscountValue = discountValue
	p.MinPurchase = minPurchase
	return p, err
}
