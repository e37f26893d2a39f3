package order

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/powerfit/powerfit-api/internal/domain/payment"
)

// externalRefPrefix ties a gateway external reference to an order id.
const externalRefPrefix = "order_"

// ExternalReference builds the merchant reference sent to the gateway when
// creating a preference.
func ExternalReference(orderID string) string {
	return externalRefPrefix + orderID
}

// ParseExternalReference extracts the order id from a gateway external
// reference.
func ParseExternalReference(ref string) (string, error) {
	id, ok := strings.CutPrefix(ref, externalRefPrefix)
	if !ok || id == "" {
		return "", errors.Errorf("malformed external reference %q", ref)
	}
	return id, nil
}

// MapStatus translates the gateway's payment status into the order payment
// state. Unrecognized statuses map to pending so an order is never marked
// paid or cancelled on a status we do not understand.
func MapStatus(gatewayStatus string) Status {
	switch gatewayStatus {
	case "approved":
		return StatusPaid
	case "rejected":
		return StatusCancelled
	case "pending", "in_process":
		return StatusPending
	default:
		return StatusPending
	}
}

// Notification is the parsed body of a gateway webhook call.
type Notification struct {
	Type      string
	PaymentID string
}

// WebhookProcessor reconciles order state from gateway webhook deliveries.
//
// The payload's own status is never trusted: the processor re-queries the
// gateway by payment id and treats that answer as the source of truth, so a
// forged or truncated webhook body cannot flip an order's state.
type WebhookProcessor struct {
	gateway      payment.Gateway
	orders       Repository
	transactions payment.TransactionRepository
	provider     string
}

// NewWebhookProcessor creates a WebhookProcessor. provider labels the
// transaction audit rows (e.g. "mercadopago").
func NewWebhookProcessor(
	gateway payment.Gateway,
	orders Repository,
	transactions payment.TransactionRepository,
	provider string,
) *WebhookProcessor {
	return &WebhookProcessor{
		gateway:      gateway,
		orders:       orders,
		transactions: transactions,
		provider:     provider,
	}
}

// Process handles one webhook delivery. Notifications whose type is not
// "payment" are acknowledged without action (false, nil). Processing is safe
// to repeat: the status update is idempotent and the transaction append
// deduplicates on (order, payment, status), so gateway redeliveries converge.
func (p *WebhookProcessor) Process(ctx context.Context, n Notification) (bool, error) {
	if n.Type != "payment" {
		return false, nil
	}

	info, err := p.gateway.GetPayment(ctx, n.PaymentID)
	if err != nil {
		return false, errors.Wrapf(err, "fetch payment %s", n.PaymentID)
	}

	orderID, err := ParseExternalReference(info.ExternalReference)
	if err != nil {
		return false, errors.Wrap(err, "correlate payment to order")
	}

	if err := p.orders.UpdateStatus(ctx, orderID, MapStatus(info.Status)); err != nil {
		return false, errors.Wrapf(err, "update order %s", orderID)
	}

	if err := p.transactions.Append(ctx, &payment.Transaction{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		PaymentID: info.ID,
		Status:    info.Status,
		Amount:    info.Amount,
		Provider:  p.provider,
	}); err != nil {
		return false, errors.Wrapf(err, "record transaction for order %s", orderID)
	}

	return true, nil
}
