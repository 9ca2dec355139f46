package services_test

import (
	"context"

	"inventorycart/internal/events"
	"inventorycart/internal/models"
	"inventorycart/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockInventoryRepository is a mock implementation of repositories.InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) GetAll(ctx context.Context) ([]models.InventoryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) GetByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryRepository) Update(ctx context.Context, item *models.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInventoryRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCartRepository is a mock implementation of repositories.CartRepository.
// Transaction runs the callback against the mock itself.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) ListLines(ctx context.Context) ([]models.CartLineView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartLineView), args.Error(1)
}

func (m *MockCartRepository) LookupStock(ctx context.Context, inventoryID string) (*models.StockLookup, error) {
	args := m.Called(ctx, inventoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockLookup), args.Error(1)
}

func (m *MockCartRepository) LineStock(ctx context.Context, lineID string) (int, error) {
	args := m.Called(ctx, lineID)
	return args.Int(0), args.Error(1)
}

func (m *MockCartRepository) AddQuantity(ctx context.Context, inventoryID string, delta int) error {
	args := m.Called(ctx, inventoryID, delta)
	return args.Error(0)
}

func (m *MockCartRepository) CreateLine(ctx context.Context, line *models.CartLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockCartRepository) SetQuantity(ctx context.Context, lineID string, quantity int) error {
	args := m.Called(ctx, lineID, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteLine(ctx context.Context, lineID string) error {
	args := m.Called(ctx, lineID)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCartRepository) Transaction(_ context.Context, fn func(repo repositories.CartRepository) error) error {
	return fn(m)
}

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func eventOfType(eventType string) any {
	return mock.MatchedBy(func(e events.Event) bool { return e.Type == eventType })
}
