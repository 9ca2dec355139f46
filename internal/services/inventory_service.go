package services

import (
	"context"

	"inventorycart/internal/events"
	"inventorycart/internal/models"
	"inventorycart/internal/repositories"
)

// InventoryService handles the catalog operations.
type InventoryService struct {
	repo      repositories.InventoryRepository
	publisher events.Publisher
}

// NewInventoryService creates a new InventoryService. publisher may be nil.
func NewInventoryService(repo repositories.InventoryRepository, publisher events.Publisher) *InventoryService {
	return &InventoryService{
		repo:      repo,
		publisher: publisher,
	}
}

// ListItems retrieves every inventory item.
func (s *InventoryService) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	return items, nil
}

// GetItem retrieves a single inventory item by its ID.
func (s *InventoryService) GetItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateItem stores a new item under a freshly assigned ID.
func (s *InventoryService) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	item.ID = ""
	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.InventoryCreated, item.ID, itemPayload(item)))
	return nil
}

// UpdateItem replaces every field of an existing item.
func (s *InventoryService) UpdateItem(ctx context.Context, item *models.InventoryItem) error {
	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.InventoryUpdated, item.ID, itemPayload(item)))
	return nil
}

// DeleteItem removes an item. Cart lines referencing it are not touched.
func (s *InventoryService) DeleteItem(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.InventoryDeleted, id, nil))
	return nil
}

// Ping reports whether the catalog storage is reachable.
func (s *InventoryService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func itemPayload(item *models.InventoryItem) map[string]any {
	return map[string]any{
		"name":     item.Name,
		"price":    item.Price,
		"quantity": item.Quantity,
	}
}
