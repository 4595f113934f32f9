package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// Response is the standard JSON response envelope.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	RedirectTo string            `json:"redirect_to,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData wraps data in the standard envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Data: data})
}

// WriteError renders err in the standard envelope. AppErrors keep their code
// and status; bare sentinels are mapped through apperrors.HTTPStatus.
// Upstream failures and internal errors are logged with the request-scoped
// logger when one is present, else with fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = fromSentinel(err)
	}

	switch {
	case appErr.Status >= http.StatusInternalServerError && appErr.Status != http.StatusBadGateway &&
		appErr.Status != http.StatusServiceUnavailable:
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	case appErr.Status == http.StatusBadGateway:
		l.WarnContext(r.Context(), "upstream failure",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, appErr.Status, Response{
		Error: &ErrorResponse{Code: appErr.Code, Message: appErr.Message, RequestID: requestID},
	})
}

func fromSentinel(err error) *apperrors.AppError {
	status := apperrors.HTTPStatus(err)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return &apperrors.AppError{Code: "NOT_FOUND", Message: "resource not found", Status: status}
	case errors.Is(err, apperrors.ErrConflict):
		return &apperrors.AppError{Code: "CONFLICT", Message: err.Error(), Status: status}
	case errors.Is(err, apperrors.ErrInvalidInput):
		return &apperrors.AppError{Code: "INVALID_INPUT", Message: err.Error(), Status: status}
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return &apperrors.AppError{Code: "UNAUTHENTICATED", Message: "authentication required", Status: status}
	case errors.Is(err, apperrors.ErrForbidden):
		return &apperrors.AppError{Code: "FORBIDDEN", Message: "forbidden", Status: status}
	case errors.Is(err, apperrors.ErrEmptyCart):
		return &apperrors.AppError{Code: "EMPTY_CART", Message: "cart has no items", Status: status}
	case errors.Is(err, apperrors.ErrPending):
		return &apperrors.AppError{Code: "PENDING", Message: "identity is still being resolved", Status: status}
	case errors.Is(err, apperrors.ErrRemote):
		return &apperrors.AppError{Code: "REMOTE_FAILURE", Message: "upstream request failed", Status: status}
	default:
		return &apperrors.AppError{Code: "INTERNAL_ERROR", Message: "an internal error occurred", Status: status}
	}
}

// WriteValidationError writes a 400 with field-level messages when err
// carries them.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{
		Error: &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
	})
}

// ParseID parses a positive integer path parameter. On failure it writes a
// 400 with code INVALID_PARAMETER and returns false.
func ParseID(w http.ResponseWriter, param string) (int, bool) {
	id, err := strconv.Atoi(param)
	if err != nil || id <= 0 {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "INVALID_PARAMETER",
				Message: "invalid id: " + param,
			},
		})
		return 0, false
	}
	return id, true
}
