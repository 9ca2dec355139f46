package repositories

import (
	"context"
	"errors"

	"inventorycart/internal/apperror"
	"inventorycart/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMInventoryRepository is a GORM implementation of InventoryRepository.
type GORMInventoryRepository struct {
	db *gorm.DB
}

// NewGORMInventoryRepository creates a new instance of GORMInventoryRepository.
func NewGORMInventoryRepository(db *gorm.DB) *GORMInventoryRepository {
	return &GORMInventoryRepository{
		db: db,
	}
}

// GetAll retrieves all inventory items, oldest first.
func (r *GORMInventoryRepository) GetAll(ctx context.Context) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, apperror.Storage(err, "failed to get inventory items")
	}
	return items, nil
}

// GetByID retrieves a single inventory item by its ID.
func (r *GORMInventoryRepository) GetByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("inventory item %s not found", id)
		}
		return nil, apperror.Storage(err, "failed to get inventory item %s", id)
	}
	return &item, nil
}

// Create inserts a new inventory item, assigning an ID when none is set.
func (r *GORMInventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return apperror.Storage(err, "failed to create inventory item")
	}
	return nil
}

// Update overwrites all fields of an existing inventory item.
func (r *GORMInventoryRepository) Update(ctx context.Context, item *models.InventoryItem) error {
	res := r.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("id = ?", item.ID).Updates(map[string]any{
		"name":        item.Name,
		"image":       item.Image,
		"description": item.Description,
		"price":       item.Price,
		"quantity":    item.Quantity,
	})
	if res.Error != nil {
		return apperror.Storage(res.Error, "failed to update inventory item %s", item.ID)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("inventory item %s not found", item.ID)
	}
	return nil
}

// Delete removes an inventory item by its ID. Cart lines that reference the
// item are left in place.
func (r *GORMInventoryRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.InventoryItem{}, "id = ?", id)
	if res.Error != nil {
		return apperror.Storage(res.Error, "failed to delete inventory item %s", id)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("inventory item %s not found", id)
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *GORMInventoryRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return apperror.Storage(err, "failed to get database handle")
	}
	return apperror.Storage(sqlDB.PingContext(ctx), "database ping failed")
}
