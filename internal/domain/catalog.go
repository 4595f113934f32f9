package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/pkg/slug"
)

// ProductID identifies a product in the remote catalog.
type ProductID int

// Category groups products in the catalog.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Product is a catalog product as last fetched from the remote API.
type Product struct {
	ID            ProductID       `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	Category      *Category       `json:"category,omitempty"`
	Image         string          `json:"image,omitempty"`
	IsActive      bool            `json:"is_active"`
	AverageRating float64         `json:"average_rating"`
	IsInStock     bool            `json:"is_in_stock"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductSlug builds the URL slug for a product.
func ProductSlug(name string, id ProductID) string {
	return slug.WithID(name, int(id))
}

// Review is a customer rating of a product.
type Review struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	ProductID ProductID `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Page       int
	Search     string
	CategoryID int
}

// DashboardStats summarises the catalog and, for a signed-in visitor,
// their own activity.
type DashboardStats struct {
	TotalProducts   int  `json:"total_products"`
	TotalCategories int  `json:"total_categories"`
	CartItems       *int `json:"cart_items,omitempty"`
	WishlistItems   *int `json:"wishlist_items,omitempty"`
	TotalOrders     *int `json:"total_orders,omitempty"`
}
