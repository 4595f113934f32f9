package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/pagination"
)

// maxWishlistPages bounds how many pages a full wishlist fetch follows.
const maxWishlistPages = 50

// WishlistPage fetches the wishlist page at link, or the first page when
// link is empty.
func (c *Client) WishlistPage(ctx context.Context, link string) (pagination.Page[domain.WishlistEntry], error) {
	if link == "" {
		link = "wishlist/"
	}
	page, err := fetchPage[wireWishlistEntry](ctx, c, call{op: "wishlist", method: http.MethodGet, path: link})
	if err != nil {
		return pagination.Page[domain.WishlistEntry]{}, err
	}
	return convertPage(page, wireWishlistEntry.toDomain), nil
}

// Wishlist fetches the caller's whole wishlist, following next links.
func (c *Client) Wishlist(ctx context.Context) ([]domain.WishlistEntry, error) {
	entries, err := pagination.CollectAll[domain.WishlistEntry](ctx, maxWishlistPages, c.WishlistPage)
	if err != nil {
		return nil, fmt.Errorf("fetch wishlist: %w", err)
	}
	return entries, nil
}

// AddToWishlist saves a product and returns the created entry.
func (c *Client) AddToWishlist(ctx context.Context, id domain.ProductID) (domain.WishlistEntry, error) {
	w, err := fetchOne[wireWishlistEntry](ctx, c, call{
		op:     "wishlist_add",
		method: http.MethodPost,
		path:   "wishlist/add/",
		body:   map[string]int{"product_id": int(id)},
	})
	if err != nil {
		return domain.WishlistEntry{}, err
	}
	return w.toDomain(), nil
}

// RemoveFromWishlist deletes a wishlist entry by its entry id.
func (c *Client) RemoveFromWishlist(ctx context.Context, entryID int) error {
	return c.do(ctx, call{
		op:     "wishlist_remove",
		method: http.MethodDelete,
		path:   fmt.Sprintf("wishlist/%d/delete/", entryID),
	}, nil)
}
