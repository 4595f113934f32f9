package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// upstreamErrorBody covers the error shapes the catalog API returns:
// {"detail": "..."}, {"error": "..."} and field maps such as
// {"non_field_errors": ["..."]} or {"quantity": ["Only 2 items in stock"]}.
type upstreamErrorBody map[string]json.RawMessage

// ParseResponseError reads the body of a non-2xx response and translates it
// into an AppError carrying the upstream message. The body is fully consumed
// and closed.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Remote(
			fmt.Sprintf("%s returned status %d", upstream, resp.StatusCode),
			fmt.Errorf("read body: %w", err),
		)
	}

	message := extractMessage(bodyBytes)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return mapUpstreamError(resp.StatusCode, message, upstream)
}

func extractMessage(body []byte) string {
	var parsed upstreamErrorBody
	if json.Unmarshal(body, &parsed) != nil {
		return strings.TrimSpace(string(body))
	}

	for _, key := range []string{"detail", "error", "message"} {
		if raw, ok := parsed[key]; ok {
			if msg := flatten(raw); msg != "" {
				return msg
			}
		}
	}

	// Field errors: report them in a stable order.
	keys := make([]string, 0, len(parsed))
	for k := range parsed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		msg := flatten(parsed[k])
		if msg == "" {
			continue
		}
		if k == "non_field_errors" {
			parts = append(parts, msg)
		} else {
			parts = append(parts, k+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

// flatten renders a JSON string or array of strings as plain text.
func flatten(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, ", ")
	}
	return ""
}

// mapUpstreamError translates an upstream status and message into an AppError.
func mapUpstreamError(status int, message, upstream string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusUnauthorized:
		return apperrors.Unauthenticated(qualifiedMsg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualifiedMsg)
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream+" resource", message)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualifiedMsg)
	default:
		return apperrors.Remote(qualifiedMsg, fmt.Errorf("status %d", status))
	}
}
