package repositories

import (
	"context"
	"slices"
	"sync"
	"time"

	"inventorycart/internal/apperror"
	"inventorycart/internal/models"

	"github.com/google/uuid"
)

// MemoryCartRepository is an in-memory implementation of CartRepository that
// joins against a MemoryInventoryRepository.
type MemoryCartRepository struct {
	inventory *MemoryInventoryRepository
	lines     map[string]models.CartLine
	order     []string
	mu        sync.RWMutex
	// txMu serializes Transaction callers; plain methods only take mu.
	txMu sync.Mutex
}

// NewMemoryCartRepository creates a new instance of MemoryCartRepository.
func NewMemoryCartRepository(inventory *MemoryInventoryRepository) *MemoryCartRepository {
	return &MemoryCartRepository{
		inventory: inventory,
		lines:     make(map[string]models.CartLine),
	}
}

// ListLines returns lines joined with their items in insertion order.
func (r *MemoryCartRepository) ListLines(_ context.Context) ([]models.CartLineView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	views := make([]models.CartLineView, 0, len(r.order))
	for _, id := range r.order {
		line := r.lines[id]
		item, ok := r.inventory.get(line.InventoryID)
		if !ok {
			continue
		}
		views = append(views, models.CartLineView{
			ID:                line.ID,
			InventoryID:       line.InventoryID,
			Quantity:          line.Quantity,
			Price:             item.Price,
			Name:              item.Name,
			Image:             item.Image,
			InventoryQuantity: item.Quantity,
		})
	}
	return views, nil
}

// LookupStock returns the item and the line referencing it, if any.
func (r *MemoryCartRepository) LookupStock(_ context.Context, inventoryID string) (*models.StockLookup, error) {
	item, ok := r.inventory.get(inventoryID)
	if !ok {
		return nil, apperror.NotFound("inventory item %s not found", inventoryID)
	}
	lookup := &models.StockLookup{
		InventoryID: item.ID,
		Name:        item.Name,
		Price:       item.Price,
		Stock:       item.Quantity,
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if line, ok := r.lineFor(inventoryID); ok {
		id := line.ID
		lookup.CartLineID = &id
	}
	return lookup, nil
}

// LineStock returns the stock of the item referenced by a line.
func (r *MemoryCartRepository) LineStock(_ context.Context, lineID string) (int, error) {
	r.mu.RLock()
	line, ok := r.lines[lineID]
	r.mu.RUnlock()
	if !ok {
		return 0, apperror.NotFound("cart line %s not found", lineID)
	}
	item, ok := r.inventory.get(line.InventoryID)
	if !ok {
		return 0, apperror.NotFound("cart line %s not found", lineID)
	}
	return item.Quantity, nil
}

// AddQuantity increments the line referencing the item.
func (r *MemoryCartRepository) AddQuantity(_ context.Context, inventoryID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line, ok := r.lineFor(inventoryID)
	if !ok {
		return apperror.NotFound("cart line for inventory item %s not found", inventoryID)
	}
	line.Quantity += delta
	line.UpdatedAt = time.Now()
	r.lines[line.ID] = line
	return nil
}

// CreateLine adds a new line. A second line for the same item violates the
// one-line-per-item constraint.
func (r *MemoryCartRepository) CreateLine(_ context.Context, line *models.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lineFor(line.InventoryID); exists {
		return apperror.Conflict("cart line for inventory item %s already exists", line.InventoryID)
	}
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	now := time.Now()
	line.CreatedAt = now
	line.UpdatedAt = now
	r.lines[line.ID] = *line
	r.order = append(r.order, line.ID)
	return nil
}

// SetQuantity overwrites a line's quantity.
func (r *MemoryCartRepository) SetQuantity(_ context.Context, lineID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line, ok := r.lines[lineID]
	if !ok {
		return apperror.NotFound("cart line %s not found", lineID)
	}
	line.Quantity = quantity
	line.UpdatedAt = time.Now()
	r.lines[lineID] = line
	return nil
}

// DeleteLine removes a line.
func (r *MemoryCartRepository) DeleteLine(_ context.Context, lineID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lines[lineID]; !ok {
		return apperror.NotFound("cart line %s not found", lineID)
	}
	delete(r.lines, lineID)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == lineID })
	return nil
}

// DeleteAll empties the cart.
func (r *MemoryCartRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = make(map[string]models.CartLine)
	r.order = nil
	return nil
}

// Transaction runs fn while holding the repository's transaction lock. There
// is no rollback: fn must validate before it writes.
func (r *MemoryCartRepository) Transaction(_ context.Context, fn func(repo CartRepository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	return fn(r)
}

// lineFor finds the line referencing an item. Callers hold mu.
func (r *MemoryCartRepository) lineFor(inventoryID string) (models.CartLine, bool) {
	for _, line := range r.lines {
		if line.InventoryID == inventoryID {
			return line, true
		}
	}
	return models.CartLine{}, false
}
