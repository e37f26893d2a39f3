// Package api exposes the HTTP surface of the store: catalog reads, coupon
// validation, checkout, payment webhooks, and the back-office endpoints.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/powerfit/powerfit-api/internal/domain/order"
	"github.com/powerfit/powerfit-api/internal/domain/payment"
	"github.com/powerfit/powerfit-api/internal/domain/product"
	"github.com/powerfit/powerfit-api/internal/domain/promo"
	"github.com/powerfit/powerfit-api/internal/domain/user"
)

// Handler wires HTTP routes to the domain services and repositories.
type Handler struct {
	checkout     *order.Service
	webhooks     *order.WebhookProcessor
	products     product.Repository
	filters      product.FilterRepository
	users        user.Repository
	promos       promo.Repository
	validator    promo.Validator
	orders       order.Repository
	transactions payment.TransactionRepository
	auth         *APIKeyAuth
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	checkout *order.Service,
	webhooks *order.WebhookProcessor,
	products product.Repository,
	filters product.FilterRepository,
	users user.Repository,
	promos promo.Repository,
	validator promo.Validator,
	orders order.Repository,
	transactions payment.TransactionRepository,
	auth *APIKeyAuth,
) *Handler {
	return &Handler{
		checkout:     checkout,
		webhooks:     webhooks,
		products:     products,
		filters:      filters,
		users:        users,
		promos:       promos,
		validator:    validator,
		orders:       orders,
		transactions: transactions,
		auth:         auth,
	}
}

// Routes builds the route tree. Back-office routes require an API key.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{productID}", h.GetProduct)
		r.Get("/filters", h.ListFilters)

		r.Post("/coupons/validate", h.ValidateCoupon)
		r.Post("/checkout", h.Checkout)

		r.Get("/orders/{orderID}", h.GetOrder)
		r.Post("/orders/{orderID}/preference", h.CreateOrderPreference)

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.auth.Middleware)

			r.Get("/promotions", h.ListPromotions)
			r.Post("/promotions", h.CreatePromotion)
			r.Put("/promotions/{promotionID}", h.UpdatePromotion)
			r.Delete("/promotions/{promotionID}", h.DeletePromotion)

			r.Put("/orders/{orderID}/fulfillment", h.SetFulfillment)
			r.Post("/filters/swap", h.SwapFilters)
		})
	})

	r.Post("/webhooks/payment", h.PaymentWebhook)

	return r
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Code: status, Message: message})
}

// writeDomainError maps domain errors onto HTTP statuses. Anything
// unrecognized is logged and reported as a 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalidQty   *order.InvalidQuantityError
		notFound     *order.ProductNotFoundError
		noStock      *order.InsufficientStockError
		minPurchase  *promo.MinPurchaseError
		gatewayFail  *order.GatewayError
	)

	switch {
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &invalidQty):
		writeError(w, http.StatusBadRequest, invalidQty.Error())
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, user.ErrAddressNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, product.ErrFilterNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &noStock):
		writeError(w, http.StatusConflict, noStock.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusUnprocessableEntity, notFound.Error())
	case errors.Is(err, product.ErrNotFound):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, promo.ErrInvalidPromo):
		writeError(w, http.StatusUnprocessableEntity, "invalid coupon code")
	case errors.As(err, &minPurchase):
		writeError(w, http.StatusUnprocessableEntity, minPurchase.Error())
	case errors.As(err, &gatewayFail):
		zctx.From(r.Context()).Error("payment gateway failure",
			zap.String("order_id", gatewayFail.OrderID), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, checkoutFailedResponse{
			Code:    http.StatusBadGateway,
			Message: "payment provider unavailable, retry preference creation",
			OrderID: gatewayFail.OrderID,
		})
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type checkoutFailedResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	OrderID string `json:"order_id"`
}
