// Package apiclient is the typed client for the remote catalog and order
// REST API. Every call carries the caller's token, runs inside a client
// span, and has its response checked against the expected shape before it
// is turned into domain types.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/pkg/validator"
)

const (
	upstreamName = "catalog api"

	// DefaultAuthScheme is the Authorization scheme the backend expects.
	DefaultAuthScheme = "Token"

	maxResponseBytes = 4 << 20
)

type tokenKey struct{}

// WithToken returns a context whose API calls are authorized with token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token set by WithToken, or "".
func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey{}).(string); ok {
		return v
	}
	return ""
}

// Client talks to the remote API through an httpclient.Doer, normally the
// circuit-breaking client.
type Client struct {
	doer       httpclient.Doer
	base       *url.URL
	authScheme string
	tracer     trace.Tracer
	logger     *slog.Logger
}

// New creates a Client for the API rooted at baseURL.
func New(doer httpclient.Doer, baseURL, authScheme string, logger *slog.Logger) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", baseURL)
	}
	if authScheme == "" {
		authScheme = DefaultAuthScheme
	}
	return &Client{
		doer:       doer,
		base:       base,
		authScheme: authScheme,
		tracer:     tracing.Tracer("storefront/apiclient"),
		logger:     logger,
	}, nil
}

// call describes one request to the remote API.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

// resolve turns a relative path or an absolute pagination link into a URL.
// Absolute links must point at the configured API host so that the token is
// never sent elsewhere.
func (c *Client) resolve(path string, query url.Values) (string, error) {
	u, err := c.base.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	if u.Host != c.base.Host {
		return "", fmt.Errorf("link %q leaves api host %q", path, c.base.Host)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// do executes cl and decodes a 2xx body into out. out may be nil when the
// response body is of no interest.
func (c *Client) do(ctx context.Context, cl call, out any) (err error) {
	ctx, span := tracing.StartClientSpan(ctx, c.tracer, "apiclient."+cl.op,
		attribute.String("http.request.method", cl.method),
		attribute.String("storefront.api.path", cl.path),
	)
	start := time.Now()
	defer func() {
		observe(cl.op, start, err)
		tracing.End(span, err)
	}()

	target, err := c.resolve(cl.path, cl.query)
	if err != nil {
		return apperrors.Remote(cl.op+": bad request target", err)
	}

	var body io.Reader = http.NoBody
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", cl.op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", c.authScheme+" "+token)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		req.Header.Set("X-Correlation-ID", cid)
	}

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return apperrors.Remote(cl.op+": request failed", err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, upstreamName)
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		c.logger.WarnContext(ctx, "malformed api response",
			slog.String("op", cl.op),
			slog.String("error", err.Error()),
		)
		return apperrors.Remote(cl.op+": malformed response", err)
	}
	return nil
}

// fetchOne performs cl and validates the decoded object.
func fetchOne[W any](ctx context.Context, c *Client, cl call) (W, error) {
	var w W
	if err := c.do(ctx, cl, &w); err != nil {
		return w, err
	}
	if err := validator.Validate(&w); err != nil {
		return w, apperrors.Remote(cl.op+": unexpected response shape", err)
	}
	return w, nil
}

// fetchPage performs cl and validates every item of the decoded list.
func fetchPage[W any](ctx context.Context, c *Client, cl call) (pagination.Page[W], error) {
	var page pagination.Page[W]
	if err := c.do(ctx, cl, &page); err != nil {
		return page, err
	}
	if err := validator.ValidateSlice(page.Results); err != nil {
		return page, apperrors.Remote(cl.op+": unexpected response shape", err)
	}
	return page, nil
}

// convertPage maps a validated wire page onto domain values.
func convertPage[W, D any](page pagination.Page[W], conv func(W) D) pagination.Page[D] {
	out := pagination.Page[D]{
		Count:    page.Count,
		Next:     page.Next,
		Previous: page.Previous,
		Results:  make([]D, len(page.Results)),
	}
	for i, w := range page.Results {
		out.Results[i] = conv(w)
	}
	return out
}
