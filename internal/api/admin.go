package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/powerfit/powerfit-api/internal/domain/order"
	"github.com/powerfit/powerfit-api/internal/domain/promo"
)

// ListPromotions returns all promotions, newest first.
func (h *Handler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := h.promos.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]promotionResponse, len(promos))
	for i, p := range promos {
		out[i] = mapPromotion(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreatePromotion adds a coupon campaign.
func (h *Handler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePromotion(w, r)
	if !ok {
		return
	}
	p.ID = uuid.New().String()

	if err := h.promos.Create(r.Context(), p); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapPromotion(*p))
}

// UpdatePromotion rewrites an existing promotion.
func (h *Handler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePromotion(w, r)
	if !ok {
		return
	}
	p.ID = chi.URLParam(r, "promotionID")

	if err := h.promos.Update(r.Context(), p); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPromotion(*p))
}

// DeletePromotion removes a promotion.
func (h *Handler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	if err := h.promos.Delete(r.Context(), chi.URLParam(r, "promotionID")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetFulfillment moves an order through the shipping pipeline.
func (h *Handler) SetFulfillment(w http.ResponseWriter, r *http.Request) {
	var body fulfillmentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	status, ok := order.ParseFulfillment(body.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "status must be processing, shipped or delivered")
		return
	}

	orderID := chi.URLParam(r, "orderID")
	if err := h.orders.SetFulfillment(r.Context(), orderID, status); err != nil {
		writeDomainError(w, r, err)
		return
	}

	o, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

// SwapFilters exchanges the display positions of two storefront filters.
func (h *Handler) SwapFilters(w http.ResponseWriter, r *http.Request) {
	var body swapFiltersBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if body.FilterA == "" || body.FilterB == "" || body.FilterA == body.FilterB {
		writeError(w, http.StatusBadRequest, "two distinct filter ids are required")
		return
	}

	if err := h.filters.SwapOrder(r.Context(), body.FilterA, body.FilterB); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodePromotion(w http.ResponseWriter, r *http.Request) (*promo.Promotion, bool) {
	var body promotionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return nil, false
	}

	if body.Name == "" || body.Code == "" {
		writeError(w, http.StatusBadRequest, "name and code are required")
		return nil, false
	}

	discountType := promo.DiscountType(body.DiscountType)
	if discountType != promo.DiscountPercentage && discountType != promo.DiscountFixed {
		writeError(w, http.StatusBadRequest, "discount_type must be percentage or fixed")
		return nil, false
	}

	value, err := decimal.NewFromString(body.DiscountValue)
	if err != nil || value.IsNegative() {
		writeError(w, http.StatusBadRequest, "discount_value must be a non-negative amount")
		return nil, false
	}

	minPurchase := decimal.Zero
	if body.MinPurchase != "" {
		minPurchase, err = decimal.NewFromString(body.MinPurchase)
		if err != nil || minPurchase.IsNegative() {
			writeError(w, http.StatusBadRequest, "min_purchase must be a non-negative amount")
			return nil, false
		}
	}

	if body.EndsAt.Before(body.StartsAt) {
		writeError(w, http.StatusBadRequest, "ends_at must not precede starts_at")
		return nil, false
	}

	// Codes are stored uppercase so the case-insensitive lookup can never
	// match two distinct rows.
	return &promo.Promotion{
		Name:          body.Name,
		Code:          strings.ToUpper(body.Code),
		DiscountType:  discountType,
		DiscountValue: value,
		StartsAt:      body.StartsAt,
		EndsAt:        body.EndsAt,
		Active:        body.Active,
		MinPurchase:   minPurchase,
	}, true
}
