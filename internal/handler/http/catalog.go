package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/wishlist"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
)

// CreateReviewRequest is the JSON request body for reviewing a product.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// ListCategories handles GET /api/v1/catalog/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	httputil.WriteData(w, http.StatusOK, categories)
}

// GetCategory handles GET /api/v1/catalog/categories/{id}
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	category, err := h.catalog.Category(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, category)
}

// ListProducts handles GET /api/v1/catalog/products?page&search&category
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := domain.ProductFilter{
		Page:   params.Page,
		Search: r.URL.Query().Get("search"),
	}
	if c := r.URL.Query().Get("category"); c != "" {
		id, err := strconv.Atoi(c)
		if err != nil || id <= 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "invalid category: " + c},
			})
			return
		}
		filter.CategoryID = id
	}

	page, err := h.catalog.Products(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(page.Results, page, params))
}

// GetProduct handles GET /api/v1/catalog/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.catalog.Product(r.Context(), domain.ProductID(id))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// ListReviews handles GET /api/v1/catalog/products/{id}/reviews
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	reviews, err := h.catalog.Reviews(r.Context(), domain.ProductID(id))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	httputil.WriteData(w, http.StatusOK, reviews)
}

// CreateReview handles POST /api/v1/catalog/products/{id}/reviews
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req CreateReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	review, err := h.catalog.CreateReview(r.Context(), domain.ProductID(id), req.Rating, req.Comment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, review)
}

// Dashboard handles GET /api/v1/dashboard. Catalog totals come from the
// remote API; a signed-in session adds its own cart and wishlist counts.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	ctx, _, authErr := s.AuthContext(r.Context())
	stats, err := h.catalog.DashboardStats(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if authErr == nil {
		items := s.Cart.ItemCount()
		stats.CartItems = &items
		if s.Wishlist.Wait(ctx) == nil && s.Wishlist.State() == wishlist.Ready {
			saved := len(s.Wishlist.Entries())
			stats.WishlistItems = &saved
		}
	}
	httputil.WriteData(w, http.StatusOK, stats)
}
