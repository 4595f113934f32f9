package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/validator"
)

const maxBodyBytes = 1 << 20

// Catalog is the part of the remote API served as one-shot reads, plus the
// account endpoints that need no session state.
type Catalog interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Category(ctx context.Context, id int) (domain.Category, error)
	Products(ctx context.Context, f domain.ProductFilter) (pagination.Page[domain.Product], error)
	Product(ctx context.Context, id domain.ProductID) (domain.Product, error)
	Reviews(ctx context.Context, id domain.ProductID) ([]domain.Review, error)
	CreateReview(ctx context.Context, id domain.ProductID, rating int, comment string) (domain.Review, error)
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
	Orders(ctx context.Context, page int) (pagination.Page[domain.Order], error)
	Order(ctx context.Context, id int) (domain.Order, error)
	Profile(ctx context.Context) (domain.Profile, error)
	UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (domain.Profile, error)
}

// Handler serves the storefront API.
type Handler struct {
	sessions *session.Manager
	catalog  Catalog
	logger   *slog.Logger
}

// NewHandler creates a storefront HTTP handler.
func NewHandler(sessions *session.Manager, catalog Catalog, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
	}
}

// decode reads a JSON body into dst and validates it. On failure it writes
// the error response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return false
	}
	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err, h.logger)
}
