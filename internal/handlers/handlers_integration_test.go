package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"inventorycart/internal/apperror"
	"inventorycart/internal/events"
	"inventorycart/internal/handlers"
	"inventorycart/internal/models"
	"inventorycart/internal/repositories"
	"inventorycart/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// setupApp sets up a Fiber app backed by a private in-memory SQLite database.
func setupApp(t *testing.T) (*fiber.App, *recordingPublisher) {
	app, publisher, _ := setupAppWithDB(t)
	return app, publisher
}

func setupAppWithDB(t *testing.T) (*fiber.App, *recordingPublisher, *sql.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.InventoryItem{}, &models.CartLine{}))

	publisher := &recordingPublisher{}
	inventoryService := services.NewInventoryService(repositories.NewGORMInventoryRepository(db), publisher)
	cartService := services.NewCartService(repositories.NewGORMCartRepository(db), publisher)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	handlers.NewInventoryHandler(inventoryService).RegisterRoutes(app)
	handlers.NewCartHandler(cartService).RegisterRoutes(app)
	handlers.NewHealthHandler(inventoryService, "none").RegisterRoutes(app)
	return app, publisher, sqlDB
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createItem(t *testing.T, app *fiber.App, name string, price float64, quantity int) string {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/inventory", map[string]any{
		"name": name, "image": name + ".png", "description": "test item", "price": price, "quantity": quantity,
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	items := decode[[]models.InventoryItem](t, doRequest(t, app, http.MethodGet, "/inventory", nil))
	for _, it := range items {
		if it.Name == name {
			return it.ID
		}
	}
	t.Fatalf("created item %s not listed", name)
	return ""
}

func getCart(t *testing.T, app *fiber.App) models.CartView {
	t.Helper()
	resp := doRequest(t, app, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[models.CartView](t, resp)
}

func TestInventoryEndpoints(t *testing.T) {
	app, publisher := setupApp(t)

	// Empty catalog is an empty array.
	resp := doRequest(t, app, http.MethodGet, "/inventory", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `[]`, string(raw))

	id := createItem(t, app, "Lamp", 19.5, 4)

	resp = doRequest(t, app, http.MethodGet, "/inventory/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	item := decode[models.InventoryItem](t, resp)
	assert.Equal(t, "Lamp", item.Name)
	assert.Equal(t, "Lamp.png", item.Image)
	assert.Equal(t, 4, item.Quantity)

	resp = doRequest(t, app, http.MethodPut, "/inventory/"+id, map[string]any{
		"name": "Lamp Pro", "image": "pro.png", "description": "brighter", "price": 25, "quantity": 9,
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	item = decode[models.InventoryItem](t, doRequest(t, app, http.MethodGet, "/inventory/"+id, nil))
	assert.Equal(t, "Lamp Pro", item.Name)
	assert.Equal(t, 9, item.Quantity)

	resp = doRequest(t, app, http.MethodDelete, "/inventory/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, "/inventory/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	errResp := decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, apperror.KindNotFound, errResp.Kind)
	assert.NotEmpty(t, errResp.Message)

	assert.Equal(t, []string{events.InventoryCreated, events.InventoryUpdated, events.InventoryDeleted}, publisher.types())
}

func TestInventoryEndpoints_NotFoundAndInvalid(t *testing.T) {
	app, _ := setupApp(t)

	resp := doRequest(t, app, http.MethodPut, "/inventory/missing", map[string]any{"name": "x", "price": 1, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodDelete, "/inventory/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/inventory", map[string]any{"name": "", "price": -1, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, apperror.KindInvalid, errResp.Kind)
	assert.Contains(t, errResp.Message, "Name")
	assert.Contains(t, errResp.Message, "Price")
}

func TestCartEndpoints_Scenario(t *testing.T) {
	app, publisher := setupApp(t)

	cart := getCart(t, app)
	assert.Empty(t, cart.CartItems)
	assert.True(t, cart.Total.IsZero())

	a := createItem(t, app, "A", 10.00, 5)

	resp := doRequest(t, app, http.MethodPost, "/cart", map[string]any{"inventoryId": a, "quantity": 3})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	cart = getCart(t, app)
	require.Len(t, cart.CartItems, 1)
	assert.Equal(t, 3, cart.CartItems[0].Quantity)
	assert.Equal(t, a, cart.CartItems[0].InventoryID)
	assert.Equal(t, "A", cart.CartItems[0].Name)
	assert.Equal(t, 5, cart.CartItems[0].InventoryQuantity)
	assert.Equal(t, "30", cart.Total.String())

	// Each add is checked against stock on its own.
	resp = doRequest(t, app, http.MethodPost, "/cart", map[string]any{"inventoryId": a, "quantity": 3})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	cart = getCart(t, app)
	require.Len(t, cart.CartItems, 1)
	assert.Equal(t, 6, cart.CartItems[0].Quantity)
	assert.Equal(t, "60", cart.Total.String())

	resp = doRequest(t, app, http.MethodPost, "/cart", map[string]any{"inventoryId": a, "quantity": 6})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errResp := decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, apperror.KindConflict, errResp.Kind)
	assert.Contains(t, errResp.Message, "insufficient stock")
	assert.Equal(t, 6, getCart(t, app).CartItems[0].Quantity)

	resp = doRequest(t, app, http.MethodPost, "/cart", map[string]any{"inventoryId": "missing", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, []string{events.InventoryCreated, events.CartItemAdded, events.CartItemAdded}, publisher.types())
}

func TestCartEndpoints_LineUpdates(t *testing.T) {
	app, _ := setupApp(t)

	b := createItem(t, app, "B", 5.00, 3)
	resp := doRequest(t, app, http.MethodPost, "/cart", map[string]any{"inventoryId": b, "quantity": 2})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	lineID := getCart(t, app).CartItems[0].ID

	resp = doRequest(t, app, http.MethodPut, "/cart/"+lineID, map[string]any{"quantity": 10})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 2, getCart(t, app).CartItems[0].Quantity)

	resp = doRequest(t, app, http.MethodPut, "/cart/"+lineID, map[string]any{"quantity": 3})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	cart := getCart(t, app)
	assert.Equal(t, 3, cart.CartItems[0].Quantity)
	assert.Equal(t, "15", cart.Total.String())

	resp = doRequest(t, app, http.MethodPut, "/cart/"+lineID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPut, "/cart/"+lineID, map[string]any{"quantity": 0})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	assert.Empty(t, getCart(t, app).CartItems)

	resp = doRequest(t, app, http.MethodPut, "/cart/"+lineID, map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodDelete, "/cart/"+lineID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCartEndpoints_RemoveAndClear(t *testing.T) {
	app, _ := setupApp(t)

	a := createItem(t, app, "A", 1.25, 10)
	b := createItem(t, app, "B", 2.00, 10)
	for _, id := range []string{a, b} {
		resp := doRequest(t, app, http.MethodPost, "/cart", map[string]any{"inventoryId": id, "quantity": 2})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()
	}
	cart := getCart(t, app)
	require.Len(t, cart.CartItems, 2)
	assert.Equal(t, "6.5", cart.Total.String())

	resp := doRequest(t, app, http.MethodDelete, "/cart/"+cart.CartItems[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	assert.Len(t, getCart(t, app).CartItems, 1)

	resp = doRequest(t, app, http.MethodDelete, "/cart", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Clearing an empty cart still succeeds.
	resp = doRequest(t, app, http.MethodDelete, "/cart", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, "/cart", nil)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `{"cartItems":[],"total":0}`, string(raw))
}

func TestCartEndpoints_AddValidation(t *testing.T) {
	app, _ := setupApp(t)
	a := createItem(t, app, "A", 1, 5)

	for _, body := range []map[string]any{
		{"inventoryId": a, "quantity": 0},
		{"inventoryId": a, "quantity": -1},
		{"quantity": 1},
	} {
		resp := doRequest(t, app, http.MethodPost, "/cart", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}

	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewReader([]byte("{broken")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	assert.Empty(t, getCart(t, app).CartItems)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	app, _ := setupApp(t)

	resp := doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "healthy", body["status"])

	resp = doRequest(t, app, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	errResp := decode[handlers.ErrorResponse](t, resp)
	assert.Equal(t, apperror.KindNotFound, errResp.Kind)
}

func TestCartEndpoints_TotalIsExactDecimal(t *testing.T) {
	app, _ := setupApp(t)

	for _, id := range []string{createItem(t, app, "dime", 0.1, 5), createItem(t, app, "two dimes", 0.2, 5)} {
		resp := doRequest(t, app, http.MethodPost, "/cart", map[string]any{"inventoryId": id, "quantity": 1})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doRequest(t, app, http.MethodGet, "/cart", nil)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var body struct {
		Total json.Number `json:"total"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "0.3", body.Total.String())
	assert.Contains(t, string(raw), `"price":0.1`)
}

func TestEndpoints_StorageFailureIsMasked(t *testing.T) {
	app, _, sqlDB := setupAppWithDB(t)
	require.NoError(t, sqlDB.Close())

	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/cart", nil},
		{http.MethodPost, "/cart", map[string]any{"inventoryId": "any", "quantity": 1}},
		{http.MethodGet, "/inventory", nil},
	} {
		resp := doRequest(t, app, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, "%s %s", tc.method, tc.path)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()
		assert.JSONEq(t, `{"kind":"storage","message":"internal storage error"}`, string(raw), "%s %s", tc.method, tc.path)
		assert.NotContains(t, string(raw), "database is closed")
	}
}
