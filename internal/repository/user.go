package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/powerfit/powerfit-api/internal/domain/user"
)

const (
	getUserByIDSQL = `SELECT id, name, email, phone FROM users WHERE id = $1`

	getAddressSQL = `SELECT id, user_id, street, number, complement, neighborhood,
		city, state, zip_code, is_default
		FROM addresses WHERE id = $1 AND user_id = $2`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID returns a buyer profile by its identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx, getUserByIDSQL, id).Scan(&u.ID, &u.Name, &u.Email, &u.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	return &u, nil
}

// GetAddress returns an address only when it belongs to the given user.
func (r *UserRepository) GetAddress(ctx context.Context, userID, addressID string) (*user.Address, error) {
	var a user.Address
	err := r.pool.QueryRow(ctx, getAddressSQL, addressID, userID).Scan(
		&a.ID, &a.UserID, &a.Street, &a.Number, &a.Complement, &a.Neighborhood,
		&a.City, &a.State, &a.ZipCode, &a.Default,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrAddressNotFound
		}
		return nil, fmt.Errorf("getting address %q: %w", addressID, err)
	}
	return &a, nil
}
