package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/storefront/internal/apiclient"
	"github.com/utafrali/storefront/internal/guard"
	"github.com/utafrali/storefront/internal/session"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
)

type contextKey string

const sessionKey contextKey = "session"

// retryAfterSeconds is advertised while a session's identity is resolving.
const retryAfterSeconds = "1"

// LoadSession attaches the live session named by the validated handle.
// It must run after middleware.Session.
func (h *Handler) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := middleware.SessionIDFromContext(r.Context())
		s := h.sessions.Get(r.Context(), id)
		ctx := context.WithValue(r.Context(), sessionKey, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}

// RequireIdentity runs the session's route guard. A resolving session gets
// 503 with Retry-After; a signed-out one gets 401 naming the login route,
// with a Location header on the first denial only. Signed-in requests carry
// the access token onward.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := sessionFromContext(r.Context())
		if s == nil {
			httputil.WriteError(w, r, apperrors.Unauthenticated("no session"), nil)
			return
		}

		d := s.Evaluate()
		switch d.Status {
		case guard.Pending:
			w.Header().Set("Retry-After", retryAfterSeconds)
			httputil.WriteError(w, r, apperrors.ErrPending, nil)
		case guard.Denied:
			if d.Redirected {
				w.Header().Set("Location", d.Redirect)
			}
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:       "UNAUTHENTICATED",
					Message:    "sign in required",
					RedirectTo: d.Redirect,
					RequestID:  logger.CorrelationIDFromContext(r.Context()),
				},
			})
		default:
			ctx := apiclient.WithToken(r.Context(), d.Identity.Token)
			ctx = logger.WithUserID(ctx, d.Identity.UserID())
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("user_id", d.Identity.UserID())))
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	})
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
