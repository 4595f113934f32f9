package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

// AddItemRequest is the JSON request body for adding a product to the cart.
// Quantity may not exceed cart.MaxQuantity; a missing or non-positive
// quantity adds one unit.
type AddItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"max=1000"` // cart.MaxQuantity
}

// UpdateQuantityRequest is the JSON request body for setting a line's
// quantity, at most cart.MaxQuantity. Zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"max=1000"` // cart.MaxQuantity
}

// GetCart handles GET /api/v1/cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	httputil.WriteData(w, http.StatusOK, s.Cart.Snapshot())
}

// AddCartItem handles POST /api/v1/cart/items. Name, price and image are
// taken from the catalog, never from the request.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.catalog.Product(r.Context(), domain.ProductID(req.ProductID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !product.IsActive || !product.IsInStock {
		h.writeError(w, r, apperrors.InvalidInput(product.Name+" is not available"))
		return
	}

	s := sessionFromContext(r.Context())
	s.Cart.Add(product, req.Quantity)
	httputil.WriteData(w, http.StatusOK, s.Cart.Snapshot())
}

// UpdateCartItem handles PUT /api/v1/cart/items/{productId}
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	s := sessionFromContext(r.Context())
	s.Cart.UpdateQuantity(domain.ProductID(id), req.Quantity)
	httputil.WriteData(w, http.StatusOK, s.Cart.Snapshot())
}

// RemoveCartItem handles DELETE /api/v1/cart/items/{productId}
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	s := sessionFromContext(r.Context())
	s.Cart.Remove(domain.ProductID(id))
	httputil.WriteData(w, http.StatusOK, s.Cart.Snapshot())
}

// ClearCart handles DELETE /api/v1/cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionFromContext(r.Context()).Cart.Clear()
	w.WriteHeader(http.StatusNoContent)
}
