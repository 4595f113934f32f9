package http

import (
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

type sessionResponse struct {
	Handle string `json:"handle"`
	Status string `json:"status"`
}

// MeResponse reports the route guard's view of the session.
type MeResponse struct {
	Status     string           `json:"status"`
	User       *domain.Identity `json:"user,omitempty"`
	RedirectTo string           `json:"redirect_to,omitempty"`
}

// CreateSession handles POST /api/v1/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, handle, err := h.sessions.Create(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set(middleware.SessionHeader, handle)
	httputil.WriteData(w, http.StatusCreated, sessionResponse{
		Handle: handle,
		Status: s.Evaluate().Status.String(),
	})
}

// DestroySession handles DELETE /api/v1/sessions
func (h *Handler) DestroySession(w http.ResponseWriter, r *http.Request) {
	id := middleware.SessionIDFromContext(r.Context())
	if err := h.sessions.Destroy(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
