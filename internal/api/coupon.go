package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/powerfit/powerfit-api/internal/domain/promo"
)

// ValidateCoupon checks a coupon against a cart subtotal without placing an
// order. Rejections are a 200 with valid=false so the storefront can render
// the reason inline.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	subtotal, err := decimal.NewFromString(req.Subtotal)
	if err != nil || subtotal.IsNegative() {
		writeError(w, http.StatusBadRequest, "subtotal must be a non-negative amount")
		return
	}

	discount, err := h.validator.Validate(r.Context(), req.Code, subtotal)
	if err != nil {
		var minErr *promo.MinPurchaseError
		switch {
		case errors.Is(err, promo.ErrInvalidPromo):
			writeJSON(w, http.StatusOK, validateCouponResponse{Valid: false, Message: "invalid or expired coupon"})
		case errors.As(err, &minErr):
			writeJSON(w, http.StatusOK, validateCouponResponse{Valid: false, Message: minErr.Error()})
		default:
			writeDomainError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, validateCouponResponse{
		Valid:    true,
		Discount: discount.StringFixed(2),
	})
}
