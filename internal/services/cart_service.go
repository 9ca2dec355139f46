package services

import (
	"context"

	"inventorycart/internal/apperror"
	"inventorycart/internal/events"
	"inventorycart/internal/logging"
	"inventorycart/internal/metrics"
	"inventorycart/internal/models"
	"inventorycart/internal/repositories"
)

// CartService keeps cart quantities consistent with catalog stock.
//
// Stock is catalog-wide availability: adding to the cart never decrements it,
// and each add is checked against the stock figure alone, not against what is
// already in the cart.
type CartService struct {
	repo      repositories.CartRepository
	publisher events.Publisher
}

// NewCartService creates a new CartService. publisher may be nil.
func NewCartService(repo repositories.CartRepository, publisher events.Publisher) *CartService {
	return &CartService{
		repo:      repo,
		publisher: publisher,
	}
}

// GetCart returns every line joined with its item and the grand total.
func (s *CartService) GetCart(ctx context.Context) (*models.CartView, error) {
	lines, err := s.repo.ListLines(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewCartView(lines), nil
}

// AddToCart adds quantity units of an item, merging into the existing line
// when the item is already in the cart.
func (s *CartService) AddToCart(ctx context.Context, inventoryID string, quantity int) error {
	var lineID string
	merged := false

	err := s.repo.Transaction(ctx, func(repo repositories.CartRepository) error {
		lookup, err := repo.LookupStock(ctx, inventoryID)
		if err != nil {
			return err
		}
		if quantity > lookup.Stock {
			metrics.StockConflicts.WithLabelValues("add").Inc()
			return apperror.Conflict("insufficient stock for %s: requested %d, available %d", lookup.Name, quantity, lookup.Stock)
		}

		if lookup.InCart() {
			merged = true
			lineID = *lookup.CartLineID
			return repo.AddQuantity(ctx, inventoryID, quantity)
		}
		line := &models.CartLine{InventoryID: inventoryID, Quantity: quantity}
		if err := repo.CreateLine(ctx, line); err != nil {
			return err
		}
		lineID = line.ID
		return nil
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Debug().
		Str("inventory_id", inventoryID).
		Str("cart_line_id", lineID).
		Int("quantity", quantity).
		Bool("merged", merged).
		Msg("added to cart")
	publish(ctx, s.publisher, events.New(events.CartItemAdded, inventoryID, map[string]any{
		"cartLineId": lineID,
		"quantity":   quantity,
		"merged":     merged,
	}))
	return nil
}

// SetLineQuantity overwrites a line's quantity. A quantity of zero or less
// removes the line.
func (s *CartService) SetLineQuantity(ctx context.Context, lineID string, quantity int) error {
	err := s.repo.Transaction(ctx, func(repo repositories.CartRepository) error {
		stock, err := repo.LineStock(ctx, lineID)
		if err != nil {
			return err
		}
		if quantity > stock {
			metrics.StockConflicts.WithLabelValues("set").Inc()
			return apperror.Conflict("insufficient stock: requested %d, available %d", quantity, stock)
		}
		if quantity > 0 {
			return repo.SetQuantity(ctx, lineID, quantity)
		}
		return repo.DeleteLine(ctx, lineID)
	})
	if err != nil {
		return err
	}

	if quantity > 0 {
		publish(ctx, s.publisher, events.New(events.CartLineUpdated, lineID, map[string]any{"quantity": quantity}))
	} else {
		publish(ctx, s.publisher, events.New(events.CartLineRemoved, lineID, nil))
	}
	return nil
}

// RemoveLine deletes a single cart line.
func (s *CartService) RemoveLine(ctx context.Context, lineID string) error {
	if err := s.repo.DeleteLine(ctx, lineID); err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.CartLineRemoved, lineID, nil))
	return nil
}

// ClearCart deletes every line. Clearing an empty cart succeeds.
func (s *CartService) ClearCart(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.CartCleared, "", nil))
	return nil
}
