package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/powerfit/powerfit-api/internal/domain/order"
)

// Checkout places an order and returns the payment redirect. When the order
// commits but the payment provider is unreachable the response is a 502 that
// carries the order id for a later preference retry.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.UserID == "" || req.AddressID == "" || req.PaymentMethod == "" {
		writeError(w, http.StatusBadRequest, "user_id, address_id and payment_method are required")
		return
	}

	items := make([]order.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.LineItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	result, err := h.checkout.Checkout(r.Context(), order.CheckoutRequest{
		UserID:        req.UserID,
		AddressID:     req.AddressID,
		Items:         items,
		CouponCode:    req.CouponCode,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	zctx.From(r.Context()).Info("order placed",
		zap.String("order_id", result.Order.ID),
		zap.String("user_id", result.Order.UserID),
		zap.String("total", result.Order.Total.StringFixed(2)),
	)

	writeJSON(w, http.StatusCreated, checkoutResponse{
		Order:   mapOrder(result.Order),
		Payment: mapPreference(result.Preference),
	})
}
