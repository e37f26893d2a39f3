package user

import (
	"context"

	"github.com/go-faster/errors"
)

// Sentinel errors for buyer and address lookups.
var (
	ErrNotFound        = errors.New("user not found")
	ErrAddressNotFound = errors.New("address not found")
)

// User is the buyer profile consulted at checkout and embedded in payment
// preferences. Account management itself lives outside this service.
type User struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// Address is a delivery address owned by a user.
type Address struct {
	ID           string
	UserID       string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	ZipCode      string
	Default      bool
}

// Repository provides read access to buyers and their addresses.
// GetAddress returns ErrAddressNotFound when the address does not exist or
// does not belong to the given user.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetAddress(ctx context.Context, userID, addressID string) (*Address, error)
}
