package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem represents a sellable item in the catalog.
// Quantity is the catalog stock; cart activity never changes it.
type InventoryItem struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Image       string          `json:"image" gorm:"type:varchar(512)"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null;default:0"`
	Quantity    int             `json:"quantity" gorm:"not null;default:0"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

// TableName pins the table name used by the catalog queries.
func (InventoryItem) TableName() string {
	return "inventory"
}
