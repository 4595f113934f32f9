package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
)

type wishlistStatus struct {
	ProductID  domain.ProductID `json:"product_id"`
	Wishlisted bool             `json:"wishlisted"`
}

// GetWishlist handles GET /api/v1/wishlist. It waits for an in-flight load.
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if err := s.Wishlist.Wait(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	// A failed load is retried once before reporting.
	if s.Wishlist.Err() != nil {
		if err := s.Wishlist.Refresh(r.Context()); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	entries := s.Wishlist.Entries()
	if entries == nil {
		entries = []domain.WishlistEntry{}
	}
	httputil.WriteData(w, http.StatusOK, entries)
}

// GetWishlistStatus handles GET /api/v1/wishlist/{productId}
func (h *Handler) GetWishlistStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	s := sessionFromContext(r.Context())
	if err := s.Wishlist.Wait(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, wishlistStatus{
		ProductID:  domain.ProductID(id),
		Wishlisted: s.Wishlist.IsWishlisted(domain.ProductID(id)),
	})
}

// AddToWishlist handles POST /api/v1/wishlist/{productId}
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	product, err := h.catalog.Product(r.Context(), domain.ProductID(id))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	s := sessionFromContext(r.Context())
	if err := s.AddToWishlist(r.Context(), product); err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, wishlistStatus{ProductID: product.ID, Wishlisted: true})
}

// RemoveFromWishlist handles DELETE /api/v1/wishlist/{productId}
func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	s := sessionFromContext(r.Context())
	if err := s.RemoveFromWishlist(r.Context(), domain.ProductID(id)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
