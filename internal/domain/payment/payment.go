// Package payment defines the contract with the external payment provider
// and the append-only transaction audit trail. The concrete Mercado Pago
// client lives in internal/mercadopago.
package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PreferenceItem is one purchasable line in a payment preference.
type PreferenceItem struct {
	ID         string
	Title      string
	Quantity   int
	UnitPrice  decimal.Decimal
	CurrencyID string
	PictureURL string
}

// Payer identifies the buyer on the provider's hosted payment page.
type Payer struct {
	Name  string
	Email string
	Phone string
}

// BackURLs are the browser redirect targets after the hosted payment flow.
type BackURLs struct {
	Success string
	Failure string
	Pending string
}

// PreferenceRequest is the provider-side payment preference to create before
// redirecting the buyer. ExternalReference correlates the provider's
// asynchronous notifications back to our order.
type PreferenceRequest struct {
	Items             []PreferenceItem
	Payer             Payer
	BackURLs          BackURLs
	ExternalReference string
	NotificationURL   string
}

// Preference is the provider's handle for a created preference. InitPoint is
// the production redirect URL, SandboxInitPoint the test-mode one; the caller
// picks based on deployment environment.
type Preference struct {
	ID               string
	InitPoint        string
	SandboxInitPoint string
}

// Info is the provider's view of a payment, fetched by id. Status is the
// provider's raw status string.
type Info struct {
	ID                string
	Status            string
	Amount            decimal.Decimal
	ExternalReference string
}

// Gateway is the outbound interface to the payment provider.
type Gateway interface {
	CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error)
	GetPreference(ctx context.Context, preferenceID string) (*Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*Info, error)
}

// Transaction is one append-only audit record of a provider notification.
// The same payment may accumulate several rows as its status transitions.
type Transaction struct {
	ID        string
	OrderID   string
	PaymentID string
	Status    string
	Amount    decimal.Decimal
	Provider  string
	CreatedAt time.Time
}

// TransactionRepository persists the audit trail. Append must be idempotent
// for identical (order, payment, status) triples so that replayed webhook
// deliveries converge instead of duplicating history.
type TransactionRepository interface {
	Append(ctx context.Context, t *Transaction) error
	ListByOrder(ctx context.Context, orderID string) ([]Transaction, error)
}
