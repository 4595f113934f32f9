package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/pagination"
)

// Categories lists every category.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	page, err := fetchPage[wireCategory](ctx, c, call{op: "categories", method: http.MethodGet, path: "categories/"})
	if err != nil {
		return nil, err
	}
	return convertPage(page, wireCategory.toDomain).Results, nil
}

// Category fetches one category.
func (c *Client) Category(ctx context.Context, id int) (domain.Category, error) {
	w, err := fetchOne[wireCategory](ctx, c, call{
		op:     "category",
		method: http.MethodGet,
		path:   fmt.Sprintf("categories/%d/", id),
	})
	if err != nil {
		return domain.Category{}, err
	}
	return w.toDomain(), nil
}

// Products returns one page of active products matching f.
func (c *Client) Products(ctx context.Context, f domain.ProductFilter) (pagination.Page[domain.Product], error) {
	q := url.Values{}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.CategoryID > 0 {
		q.Set("category", strconv.Itoa(f.CategoryID))
	}

	page, err := fetchPage[wireProduct](ctx, c, call{
		op:     "products",
		method: http.MethodGet,
		path:   "products/",
		query:  q,
	})
	if err != nil {
		return pagination.Page[domain.Product]{}, err
	}
	return convertPage(page, wireProduct.toDomain), nil
}

// Product fetches one product.
func (c *Client) Product(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	w, err := fetchOne[wireProduct](ctx, c, call{
		op:     "product",
		method: http.MethodGet,
		path:   fmt.Sprintf("products/%d/", id),
	})
	if err != nil {
		return domain.Product{}, err
	}
	return w.toDomain(), nil
}

// Reviews lists the reviews of a product, newest first.
func (c *Client) Reviews(ctx context.Context, id domain.ProductID) ([]domain.Review, error) {
	page, err := fetchPage[wireReview](ctx, c, call{
		op:     "reviews",
		method: http.MethodGet,
		path:   fmt.Sprintf("products/%d/reviews/", id),
	})
	if err != nil {
		return nil, err
	}
	reviews := convertPage(page, wireReview.toDomain).Results
	for i := range reviews {
		reviews[i].ProductID = id
	}
	return reviews, nil
}

// CreateReview posts a rating for a product.
func (c *Client) CreateReview(ctx context.Context, id domain.ProductID, rating int, comment string) (domain.Review, error) {
	w, err := fetchOne[wireReview](ctx, c, call{
		op:     "create_review",
		method: http.MethodPost,
		path:   "reviews/create/",
		body: map[string]any{
			"product_id": int(id),
			"rating":     rating,
			"comment":    comment,
		},
	})
	if err != nil {
		return domain.Review{}, err
	}
	r := w.toDomain()
	r.ProductID = id
	return r, nil
}

// DashboardStats returns catalog counts, plus the caller's own counts when
// ctx carries a token.
func (c *Client) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	w, err := fetchOne[wireStats](ctx, c, call{op: "dashboard_stats", method: http.MethodGet, path: "dashboard/stats/"})
	if err != nil {
		return domain.DashboardStats{}, err
	}
	return domain.DashboardStats{
		TotalProducts:   w.TotalProducts,
		TotalCategories: w.TotalCategories,
		CartItems:       w.CartItems,
		WishlistItems:   w.WishlistItems,
		TotalOrders:     w.TotalOrders,
	}, nil
}
