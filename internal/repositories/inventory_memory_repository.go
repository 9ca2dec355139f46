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

// MemoryInventoryRepository is an in-memory implementation of InventoryRepository.
type MemoryInventoryRepository struct {
	items map[string]models.InventoryItem
	order []string
	mu    sync.RWMutex
}

// NewMemoryInventoryRepository creates a new instance of MemoryInventoryRepository.
func NewMemoryInventoryRepository() *MemoryInventoryRepository {
	return &MemoryInventoryRepository{
		items: make(map[string]models.InventoryItem),
	}
}

// GetAll returns all items in insertion order.
func (r *MemoryInventoryRepository) GetAll(_ context.Context) ([]models.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.InventoryItem, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.items[id])
	}
	return list, nil
}

// GetByID returns an item by its ID.
func (r *MemoryInventoryRepository) GetByID(_ context.Context, id string) (*models.InventoryItem, error) {
	item, ok := r.get(id)
	if !ok {
		return nil, apperror.NotFound("inventory item %s not found", id)
	}
	return &item, nil
}

func (r *MemoryInventoryRepository) get(id string) (models.InventoryItem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok
}

// Create adds a new item.
func (r *MemoryInventoryRepository) Create(_ context.Context, item *models.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	if _, exists := r.items[item.ID]; !exists {
		r.order = append(r.order, item.ID)
	}
	r.items[item.ID] = *item
	return nil
}

// Update replaces an existing item.
func (r *MemoryInventoryRepository) Update(_ context.Context, item *models.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[item.ID]
	if !ok {
		return apperror.NotFound("inventory item %s not found", item.ID)
	}
	current.Name = item.Name
	current.Image = item.Image
	current.Description = item.Description
	current.Price = item.Price
	current.Quantity = item.Quantity
	current.UpdatedAt = time.Now()
	r.items[item.ID] = current
	return nil
}

// Delete removes an item by its ID.
func (r *MemoryInventoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return apperror.NotFound("inventory item %s not found", id)
	}
	delete(r.items, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return nil
}

// Ping always succeeds.
func (r *MemoryInventoryRepository) Ping(_ context.Context) error {
	return nil
}
