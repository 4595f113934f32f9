package http

import (
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
)

// LoginRequest is the JSON request body for signing in.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	s := sessionFromContext(r.Context())
	id, err := s.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusOK, MeResponse{Status: "ready", User: &id})
}

// Register handles POST /api/v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.Registration
	if !h.decode(w, r, &req) {
		return
	}

	s := sessionFromContext(r.Context())
	id, err := s.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteData(w, http.StatusCreated, MeResponse{Status: "ready", User: &id})
}

// Logout handles POST /api/v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionFromContext(r.Context()).Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	d := sessionFromContext(r.Context()).Evaluate()

	resp := MeResponse{Status: d.Status.String(), User: d.Identity}
	if d.Redirected || d.Identity == nil {
		resp.RedirectTo = d.Redirect
	}
	httputil.WriteData(w, http.StatusOK, resp)
}
