package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed order as recorded by the remote API.
type Order struct {
	ID              int             `json:"id"`
	Status          string          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is one product line of an order, priced at order time.
type OrderItem struct {
	ID         int             `json:"id"`
	Product    Product         `json:"product"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}
