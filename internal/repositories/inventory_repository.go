package repositories

import (
	"context"

	"inventorycart/internal/models"
)

// InventoryRepository defines the interface for catalog data access.
type InventoryRepository interface {
	GetAll(ctx context.Context) ([]models.InventoryItem, error)
	GetByID(ctx context.Context, id string) (*models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) error
	// Update replaces every field of the item. It reports not found when no
	// row matched instead of reading the record first.
	Update(ctx context.Context, item *models.InventoryItem) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
