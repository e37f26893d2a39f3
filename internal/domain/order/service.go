package order

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/powerfit/powerfit-api/internal/domain/payment"
	"github.com/powerfit/powerfit-api/internal/domain/pricing"
	"github.com/powerfit/powerfit-api/internal/domain/product"
	"github.com/powerfit/powerfit-api/internal/domain/promo"
	"github.com/powerfit/powerfit-api/internal/domain/user"
)

// ProductNotFoundError indicates a carted product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// GatewayError indicates the payment provider call failed after the order
// was committed. The order remains pending; preference creation can be
// retried against OrderID.
type GatewayError struct {
	OrderID string
	Err     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway failed for order %s: %v", e.OrderID, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Config holds checkout policy knobs.
type Config struct {
	// ShippingFee is the flat fee charged for any non-empty cart.
	ShippingFee decimal.Decimal
	// Currency is the ISO currency code sent to the payment provider.
	Currency string
	// BaseURL is the public application URL used to build redirect and
	// notification callbacks.
	BaseURL string
	// Provider is the payment provider label recorded on transactions.
	Provider string
}

// LineItem is a carted product reference submitted at checkout.
type LineItem struct {
	ProductID string
	Quantity  int
}

// CheckoutRequest holds the input for placing an order.
type CheckoutRequest struct {
	UserID        string
	AddressID     string
	Items         []LineItem
	CouponCode    string
	PaymentMethod string
}

// CheckoutResult holds the persisted order and the payment preference the
// buyer should be redirected to. Preference is nil when phase two failed;
// in that case Checkout also returned a *GatewayError.
type CheckoutResult struct {
	Order      *Order
	Preference *payment.Preference
}

// Service orchestrates the checkout pipeline: resolve buyer and products,
// price the cart, apply coupons, persist atomically, and obtain a payment
// preference from the gateway.
type Service struct {
	products product.Repository
	users    user.Repository
	promos   promo.Validator
	orders   Repository
	gateway  payment.Gateway
	cfg      Config
}

// NewService creates a checkout Service with the required dependencies.
func NewService(
	products product.Repository,
	users user.Repository,
	promos promo.Validator,
	orders Repository,
	gateway payment.Gateway,
	cfg Config,
) *Service {
	return &Service{
		products: products,
		users:    users,
		promos:   promos,
		orders:   orders,
		gateway:  gateway,
		cfg:      cfg,
	}
}

// Checkout validates and prices the cart, persists the order atomically, and
// creates the provider-side payment preference.
//
// Order persistence and preference creation are two separate phases: when
// the gateway call fails the committed order stays pending and the error is
// a *GatewayError carrying the order id, so the caller can retry phase two
// via EnsurePreference instead of duplicating the order.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	buyer, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if _, err := s.users.GetAddress(ctx, buyer.ID, req.AddressID); err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	cart := make([]pricing.Item, len(req.Items))
	orderItems := make([]Item, len(req.Items))
	for i, item := range req.Items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}

		cart[i] = pricing.Item{
			ProductID: p.ID,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
		}
		orderItems[i] = Item{
			ID:           uuid.New().String(),
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductImage: p.Image,
			Quantity:     item.Quantity,
			Price:        p.Price,
		}
	}

	discount := decimal.Zero
	if req.CouponCode != "" {
		discount, err = s.promos.Validate(ctx, req.CouponCode, pricing.Subtotal(cart))
		if err != nil {
			return nil, fmt.Errorf("validate coupon: %w", err)
		}
	}

	quote := pricing.Calculate(cart, discount, s.cfg.ShippingFee)

	o := &Order{
		ID:            uuid.New().String(),
		UserID:        buyer.ID,
		AddressID:     req.AddressID,
		Status:        StatusPending,
		Fulfillment:   FulfillmentProcessing,
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
		Subtotal:      quote.Subtotal,
		Shipping:      quote.Shipping,
		Discount:      quote.Discount,
		Total:         quote.Total,
		Items:         orderItems,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	pref, err := s.EnsurePreference(ctx, o.ID)
	if err != nil {
		return &CheckoutResult{Order: o}, &GatewayError{OrderID: o.ID, Err: err}
	}

	return &CheckoutResult{Order: o, Preference: pref}, nil
}

// EnsurePreference returns the payment preference for an order, creating one
// at the gateway on first call and persisting its id. Subsequent calls fetch
// the already-created preference, making the operation safe to retry.
func (s *Service) EnsurePreference(ctx context.Context, orderID string) (*payment.Preference, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if o.PreferenceID != "" {
		pref, err := s.gateway.GetPreference(ctx, o.PreferenceID)
		if err != nil {
			return nil, fmt.Errorf("get preference: %w", err)
		}
		return pref, nil
	}

	buyer, err := s.users.GetByID(ctx, o.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	pref, err := s.gateway.CreatePreference(ctx, s.buildPreference(o, buyer))
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}

	if err := s.orders.SetPreference(ctx, o.ID, pref.ID); err != nil {
		return nil, fmt.Errorf("save preference id: %w", err)
	}

	return pref, nil
}

// buildPreference assembles the gateway request from the order snapshot and
// buyer profile. Redirect URLs carry the order id so the storefront can show
// the right order after the hosted payment flow.
func (s *Service) buildPreference(o *Order, buyer *user.User) *payment.PreferenceRequest {
	items := make([]payment.PreferenceItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = payment.PreferenceItem{
			ID:         item.ProductID,
			Title:      item.ProductName,
			Quantity:   item.Quantity,
			UnitPrice:  item.Price,
			CurrencyID: s.cfg.Currency,
			PictureURL: item.ProductImage,
		}
	}

	return &payment.PreferenceRequest{
		Items: items,
		Payer: payment.Payer{
			Name:  buyer.Name,
			Email: buyer.Email,
			Phone: buyer.Phone,
		},
		BackURLs: payment.BackURLs{
			Success: s.callbackURL("/checkout/success", o.ID),
			Failure: s.callbackURL("/checkout/failure", o.ID),
			Pending: s.callbackURL("/checkout/pending", o.ID),
		},
		ExternalReference: ExternalReference(o.ID),
		NotificationURL:   s.cfg.BaseURL + "/webhooks/payment",
	}
}

func (s *Service) callbackURL(path, orderID string) string {
	return s.cfg.BaseURL + path + "?order=" + url.QueryEscape(orderID)
}
