package pagination

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page int `json:"page"`
}

// DefaultParams returns the first page.
func DefaultParams() Params {
	return Params{Page: 1}
}

// FromRequest extracts pagination parameters from an HTTP request.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	return p
}

// Page is one page of a remote list. The catalog API answers either with a
// page envelope {count, next, previous, results} or, for unpaginated
// endpoints, with a bare JSON array; both decode into a Page.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// UnmarshalJSON accepts the envelope or a bare array.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}

	var env struct {
		Count    int     `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []T     `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	if env.Results == nil {
		return errors.New("page envelope has no results")
	}
	*p = Page[T]{Count: env.Count, Next: env.Next, Previous: env.Previous, Results: env.Results}
	return nil
}

// HasNext reports whether the server advertised a following page.
func (p Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// Result wraps a paginated response.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewResult creates a paginated result from a remote page.
func NewResult[T any](data []T, page Page[T], params Params) Result[T] {
	if data == nil {
		data = []T{}
	}
	return Result[T]{
		Data:       data,
		TotalCount: page.Count,
		Page:       params.Page,
		HasNext:    page.HasNext(),
		HasPrev:    page.Previous != nil && *page.Previous != "",
	}
}

// FetchFunc loads the page at url. An empty url means the first page.
type FetchFunc[T any] func(ctx context.Context, url string) (Page[T], error)

// CollectAll follows next links from the first page and returns every item.
// maxPages bounds the walk; a server that keeps returning next links past it
// yields an error rather than an endless loop.
func CollectAll[T any](ctx context.Context, maxPages int, fetch FetchFunc[T]) ([]T, error) {
	var (
		all  []T
		next string
	)
	for i := 0; i < maxPages; i++ {
		page, err := fetch(ctx, next)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if !page.HasNext() {
			return all, nil
		}
		next = *page.Next
	}
	return nil, fmt.Errorf("more than %d pages", maxPages)
}
