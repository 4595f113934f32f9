package apiclient

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
)

// Wire types mirror the remote JSON. Decimal fields backed by a database
// DecimalField arrive as strings; computed totals may arrive as numbers,
// which decimal.Decimal decodes either way.

type wireUser struct {
	ID        int    `json:"id" validate:"gt=0"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (w wireUser) toDomain() domain.User {
	return domain.User{
		ID:        w.ID,
		Username:  w.Username,
		Email:     w.Email,
		FirstName: w.FirstName,
		LastName:  w.LastName,
	}
}

type wireCategory struct {
	ID          int     `json:"id" validate:"gt=0"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

func (w wireCategory) toDomain() domain.Category {
	return domain.Category{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Image:       deref(w.Image),
	}
}

type wireProduct struct {
	ID            int           `json:"id" validate:"gt=0"`
	Name          string        `json:"name" validate:"required"`
	Description   string        `json:"description"`
	Price         string        `json:"price" validate:"required,nonnegdecimal"`
	Stock         int           `json:"stock" validate:"min=0"`
	Category      *wireCategory `json:"category"`
	Image         *string       `json:"image"`
	IsActive      bool          `json:"is_active"`
	AverageRating *float64      `json:"average_rating"`
	IsInStock     bool          `json:"is_in_stock"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (w wireProduct) toDomain() domain.Product {
	p := domain.Product{
		ID:          domain.ProductID(w.ID),
		Name:        w.Name,
		Slug:        domain.ProductSlug(w.Name, domain.ProductID(w.ID)),
		Description: w.Description,
		// Price passed nonnegdecimal validation.
		Price:     decimal.RequireFromString(w.Price),
		Stock:     w.Stock,
		Image:     deref(w.Image),
		IsActive:  w.IsActive,
		IsInStock: w.IsInStock,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	if w.AverageRating != nil {
		p.AverageRating = *w.AverageRating
	}
	if w.Category != nil {
		c := w.Category.toDomain()
		p.Category = &c
	}
	return p
}

type wireReview struct {
	ID        int          `json:"id" validate:"gt=0"`
	User      wireUser     `json:"user"`
	Product   *wireProduct `json:"product"`
	Rating    int          `json:"rating" validate:"min=1,max=5"`
	Comment   string       `json:"comment"`
	CreatedAt time.Time    `json:"created_at"`
}

func (w wireReview) toDomain() domain.Review {
	r := domain.Review{
		ID:        w.ID,
		Username:  w.User.Username,
		Rating:    w.Rating,
		Comment:   w.Comment,
		CreatedAt: w.CreatedAt,
	}
	if w.Product != nil {
		r.ProductID = domain.ProductID(w.Product.ID)
	}
	return r
}

type wireWishlistEntry struct {
	ID        int         `json:"id" validate:"gt=0"`
	Product   wireProduct `json:"product"`
	CreatedAt time.Time   `json:"created_at"`
}

func (w wireWishlistEntry) toDomain() domain.WishlistEntry {
	return domain.WishlistEntry{
		EntryID:   w.ID,
		Product:   w.Product.toDomain(),
		CreatedAt: w.CreatedAt,
	}
}

type wireCartItem struct {
	ID         int             `json:"id" validate:"gt=0"`
	Product    wireProduct     `json:"product"`
	Quantity   int             `json:"quantity" validate:"min=1"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func (w wireCartItem) toDomain() domain.CartLine {
	p := w.Product.toDomain()
	return domain.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageRef:  p.Image,
		Quantity:  w.Quantity,
	}
}

type wireOrderItem struct {
	ID         int             `json:"id" validate:"gt=0"`
	Product    wireProduct     `json:"product"`
	Quantity   int             `json:"quantity" validate:"min=1"`
	Price      string          `json:"price" validate:"required,nonnegdecimal"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type wireOrder struct {
	ID              int             `json:"id" validate:"gt=0"`
	Status          string          `json:"status" validate:"required"`
	TotalAmount     string          `json:"total_amount" validate:"required,nonnegdecimal"`
	ShippingAddress string          `json:"shipping_address"`
	Items           []wireOrderItem `json:"items" validate:"dive"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (w wireOrder) toDomain() domain.Order {
	o := domain.Order{
		ID:              w.ID,
		Status:          w.Status,
		TotalAmount:     decimal.RequireFromString(w.TotalAmount),
		ShippingAddress: w.ShippingAddress,
		Items:           make([]domain.OrderItem, len(w.Items)),
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
	for i, it := range w.Items {
		o.Items[i] = domain.OrderItem{
			ID:         it.ID,
			Product:    it.Product.toDomain(),
			Quantity:   it.Quantity,
			Price:      decimal.RequireFromString(it.Price),
			TotalPrice: it.TotalPrice,
		}
	}
	return o
}

type wireLogin struct {
	Token    string `json:"token" validate:"required"`
	UserID   int    `json:"user_id" validate:"gt=0"`
	Email    string `json:"email"`
	Username string `json:"username" validate:"required"`
}

type wireRegistration struct {
	User  wireUser `json:"user"`
	Token string   `json:"token" validate:"required"`
}

type wireProfile struct {
	ID          int      `json:"id" validate:"gt=0"`
	User        wireUser `json:"user"`
	Address     string   `json:"address"`
	PhoneNumber string   `json:"phone_number"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	PostalCode  string   `json:"postal_code"`
}

func (w wireProfile) toDomain() domain.Profile {
	return domain.Profile{
		ID:          w.ID,
		User:        w.User.toDomain(),
		Address:     w.Address,
		PhoneNumber: w.PhoneNumber,
		City:        w.City,
		Country:     w.Country,
		PostalCode:  w.PostalCode,
	}
}

type wireStats struct {
	TotalProducts   int  `json:"total_products" validate:"min=0"`
	TotalCategories int  `json:"total_categories" validate:"min=0"`
	CartItems       *int `json:"cart_items"`
	WishlistItems   *int `json:"wishlist_items"`
	TotalOrders     *int `json:"total_orders"`
}

type wireMessage struct {
	Message string `json:"message"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
