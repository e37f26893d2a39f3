package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/powerfit/powerfit-api/internal/domain/user"
)

// GetOrder returns an order with its delivery address and payment history.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "orderID")

	o, err := h.orders.GetByID(ctx, orderID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := orderDetailResponse{orderResponse: mapOrder(o)}

	// A missing buyer or address row only blanks its section; any other
	// lookup failure is a real error and must not be masked.
	buyer, err := h.users.GetByID(ctx, o.UserID)
	switch {
	case err == nil:
		resp.Buyer = mapBuyer(buyer)
	case !errors.Is(err, user.ErrNotFound):
		writeDomainError(w, r, err)
		return
	}

	addr, err := h.users.GetAddress(ctx, o.UserID, o.AddressID)
	switch {
	case err == nil:
		resp.Address = mapAddress(addr)
	case !errors.Is(err, user.ErrAddressNotFound):
		writeDomainError(w, r, err)
		return
	}

	txs, err := h.transactions.ListByOrder(ctx, orderID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	resp.Transactions = mapTransactions(txs)

	writeJSON(w, http.StatusOK, resp)
}

// CreateOrderPreference retries payment preference creation for an order whose
// original checkout hit a gateway failure. Idempotent: an already created
// preference is returned as-is.
func (h *Handler) CreateOrderPreference(w http.ResponseWriter, r *http.Request) {
	pref, err := h.checkout.EnsurePreference(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPreference(pref))
}
