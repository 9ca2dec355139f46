package repositories

import (
	"context"

	"inventorycart/internal/apperror"
	"inventorycart/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// ListLines joins every cart line with its inventory item. Lines whose item
// was deleted drop out of the join.
func (r *GORMCartRepository) ListLines(ctx context.Context) ([]models.CartLineView, error) {
	lines := []models.CartLineView{}
	err := r.db.WithContext(ctx).
		Table("cart").
		Select("cart.id, cart.inventory_id, cart.quantity, inventory.price, inventory.name, inventory.image, inventory.quantity AS inventory_quantity").
		Joins("INNER JOIN inventory ON cart.inventory_id = inventory.id").
		Order("cart.created_at ASC, cart.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, apperror.Storage(err, "failed to list cart lines")
	}
	return lines, nil
}

// LookupStock reads the item and its cart line in one outer join, locking the
// inventory row for the rest of the transaction.
func (r *GORMCartRepository) LookupStock(ctx context.Context, inventoryID string) (*models.StockLookup, error) {
	var row struct {
		ID       string
		Name     string
		Price    decimal.Decimal
		Quantity int
		CartID   *string
	}
	res := r.db.WithContext(ctx).
		Table("inventory").
		Select("inventory.id, inventory.name, inventory.price, inventory.quantity, cart.id AS cart_id").
		Joins("LEFT JOIN cart ON cart.inventory_id = inventory.id").
		Where("inventory.id = ?", inventoryID).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "inventory"}}).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, apperror.Storage(res.Error, "failed to look up stock for inventory item %s", inventoryID)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("inventory item %s not found", inventoryID)
	}
	return &models.StockLookup{
		InventoryID: row.ID,
		Name:        row.Name,
		Price:       row.Price,
		Stock:       row.Quantity,
		CartLineID:  row.CartID,
	}, nil
}

// LineStock returns the stock of the item referenced by a cart line, locking
// the line row.
func (r *GORMCartRepository) LineStock(ctx context.Context, lineID string) (int, error) {
	var row struct {
		InventoryQuantity int
	}
	res := r.db.WithContext(ctx).
		Table("cart").
		Select("inventory.quantity AS inventory_quantity").
		Joins("INNER JOIN inventory ON cart.inventory_id = inventory.id").
		Where("cart.id = ?", lineID).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "cart"}}).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return 0, apperror.Storage(res.Error, "failed to look up stock for cart line %s", lineID)
	}
	if res.RowsAffected == 0 {
		return 0, apperror.NotFound("cart line %s not found", lineID)
	}
	return row.InventoryQuantity, nil
}

// AddQuantity increments the quantity of the line that references the item.
func (r *GORMCartRepository) AddQuantity(ctx context.Context, inventoryID string, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("inventory_id = ?", inventoryID).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return apperror.Storage(res.Error, "failed to increment cart line for inventory item %s", inventoryID)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("cart line for inventory item %s not found", inventoryID)
	}
	return nil
}

// CreateLine inserts a new cart line, assigning an ID when none is set.
func (r *GORMCartRepository) CreateLine(ctx context.Context, line *models.CartLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return apperror.Storage(err, "failed to create cart line")
	}
	return nil
}

// SetQuantity overwrites the quantity of a cart line.
func (r *GORMCartRepository) SetQuantity(ctx context.Context, lineID string, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", quantity)
	if res.Error != nil {
		return apperror.Storage(res.Error, "failed to update cart line %s", lineID)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("cart line %s not found", lineID)
	}
	return nil
}

// DeleteLine removes a single cart line.
func (r *GORMCartRepository) DeleteLine(ctx context.Context, lineID string) error {
	res := r.db.WithContext(ctx).Delete(&models.CartLine{}, "id = ?", lineID)
	if res.Error != nil {
		return apperror.Storage(res.Error, "failed to delete cart line %s", lineID)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("cart line %s not found", lineID)
	}
	return nil
}

// DeleteAll empties the cart.
func (r *GORMCartRepository) DeleteAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.CartLine{}).Error
	if err != nil {
		return apperror.Storage(err, "failed to clear cart")
	}
	return nil
}

// Transaction runs fn inside a database transaction.
func (r *GORMCartRepository) Transaction(ctx context.Context, fn func(repo CartRepository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GORMCartRepository{db: tx})
	})
	return apperror.Storage(err, "cart transaction failed")
}
