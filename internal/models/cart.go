package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine pairs one inventory item with a strictly positive quantity.
type CartLine struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	InventoryID string    `json:"inventoryId" gorm:"type:varchar(36);not null;uniqueIndex"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// TableName pins the table name used by the cart queries.
func (CartLine) TableName() string {
	return "cart"
}

// CartLineView is a cart line joined with its inventory item.
type CartLineView struct {
	ID                string          `json:"id"`
	InventoryID       string          `json:"inventoryId"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	Name              string          `json:"name"`
	Image             string          `json:"image"`
	InventoryQuantity int             `json:"inventoryQuantity"`
}

// Subtotal is the line's contribution to the cart total.
func (v CartLineView) Subtotal() decimal.Decimal {
	return v.Price.Mul(decimal.NewFromInt(int64(v.Quantity)))
}

// CartView is the derived, never persisted, view of the whole cart.
type CartView struct {
	CartItems []CartLineView  `json:"cartItems"`
	Total     decimal.Decimal `json:"total"`
}

// NewCartView builds a view from joined lines and computes the grand total.
func NewCartView(lines []CartLineView) *CartView {
	if lines == nil {
		lines = []CartLineView{}
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return &CartView{CartItems: lines, Total: total}
}

// StockLookup is the result of looking up an item together with the cart
// line that references it, if any.
type StockLookup struct {
	InventoryID string
	Name        string
	Price       decimal.Decimal
	Stock       int
	CartLineID  *string
}

// InCart reports whether a cart line already references the item.
func (s StockLookup) InCart() bool {
	return s.CartLineID != nil && *s.CartLineID != ""
}
