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

// ServerCart returns the cart the backend holds for the caller.
func (c *Client) ServerCart(ctx context.Context) ([]domain.CartLine, error) {
	page, err := fetchPage[wireCartItem](ctx, c, call{op: "cart", method: http.MethodGet, path: "cart/"})
	if err != nil {
		return nil, err
	}
	return convertPage(page, wireCartItem.toDomain).Results, nil
}

// AddToServerCart adds quantity units of a product to the backend cart.
func (c *Client) AddToServerCart(ctx context.Context, id domain.ProductID, quantity int) error {
	return c.do(ctx, call{
		op:     "cart_add",
		method: http.MethodPost,
		path:   "cart/add/",
		body:   map[string]int{"product_id": int(id), "quantity": quantity},
	}, nil)
}

// ClearServerCart empties the backend cart.
func (c *Client) ClearServerCart(ctx context.Context) error {
	return c.do(ctx, call{op: "cart_clear", method: http.MethodDelete, path: "cart/clear/"}, nil)
}

// CreateOrder turns the backend cart into an order. An empty address makes
// the backend fall back to the profile address.
func (c *Client) CreateOrder(ctx context.Context, shippingAddress string) (domain.Order, error) {
	w, err := fetchOne[wireOrder](ctx, c, call{
		op:     "create_order",
		method: http.MethodPost,
		path:   "orders/create/",
		body:   map[string]string{"shipping_address": shippingAddress},
	})
	if err != nil {
		return domain.Order{}, err
	}
	return w.toDomain(), nil
}

// Orders returns one page of the caller's orders, newest first.
func (c *Client) Orders(ctx context.Context, page int) (pagination.Page[domain.Order], error) {
	var q url.Values
	if page > 1 {
		q = url.Values{"page": {strconv.Itoa(page)}}
	}
	p, err := fetchPage[wireOrder](ctx, c, call{op: "orders", method: http.MethodGet, path: "orders/", query: q})
	if err != nil {
		return pagination.Page[domain.Order]{}, err
	}
	return convertPage(p, wireOrder.toDomain), nil
}

// Order fetches one of the caller's orders.
func (c *Client) Order(ctx context.Context, id int) (domain.Order, error) {
	w, err := fetchOne[wireOrder](ctx, c, call{
		op:     "order",
		method: http.MethodGet,
		path:   fmt.Sprintf("orders/%d/", id),
	})
	if err != nil {
		return domain.Order{}, err
	}
	return w.toDomain(), nil
}
