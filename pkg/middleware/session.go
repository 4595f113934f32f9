package middleware

import (
	"context"
	"net/http"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// SessionHeader carries the signed session handle issued at session creation.
const SessionHeader = "X-Session-ID"

// SessionValidator verifies a session handle and returns the session id it
// names.
type SessionValidator func(handle string) (sessionID string, err error)

// Session rejects requests without a valid session handle and stores the
// session id in the request context for the logger and downstream handlers.
func Session(validate SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handle := r.Header.Get(SessionHeader)
			if handle == "" {
				writeSessionError(w, "missing "+SessionHeader+" header")
				return
			}

			id, err := validate(handle)
			if err != nil {
				writeSessionError(w, "invalid or expired session")
				return
			}

			ctx := logger.WithSessionID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the session id stored by Session.
func SessionIDFromContext(ctx context.Context) string {
	return logger.SessionIDFromContext(ctx)
}

func writeSessionError(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_SESSION", Message: message},
	})
}
