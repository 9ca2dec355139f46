package repositories

import (
	"context"

	"inventorycart/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// ListLines returns every line joined with its inventory item, oldest first.
	ListLines(ctx context.Context) ([]models.CartLineView, error)
	// LookupStock returns the item and, if present, the cart line that
	// references it. Not found when the item does not exist.
	LookupStock(ctx context.Context, inventoryID string) (*models.StockLookup, error)
	// LineStock returns the current stock of the item a cart line references.
	LineStock(ctx context.Context, lineID string) (int, error)
	AddQuantity(ctx context.Context, inventoryID string, delta int) error
	CreateLine(ctx context.Context, line *models.CartLine) error
	SetQuantity(ctx context.Context, lineID string, quantity int) error
	DeleteLine(ctx context.Context, lineID string) error
	DeleteAll(ctx context.Context) error
	// Transaction runs fn against a repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(repo CartRepository) error) error
}
