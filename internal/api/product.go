package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/powerfit/powerfit-api/internal/domain/product"
)

// ListProducts returns the full catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = mapProduct(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetProduct returns a single catalog item.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(*p))
}

// ListFilters returns storefront navigation filters ordered by category and
// position.
func (h *Handler) ListFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := h.filters.ListFilters(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]filterResponse, len(filters))
	for i, f := range filters {
		out[i] = filterResponse{ID: f.ID, Name: f.Name, Category: f.Category, SortOrder: f.SortOrder}
	}
	writeJSON(w, http.StatusOK, out)
}
