package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"inventorycart/internal/apperror"
	"inventorycart/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// InventoryRequest is the body of create and update inventory calls. Price
// accepts a JSON number or a numeric string and is kept to two decimal places.
type InventoryRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Image       string          `json:"image" validate:"omitempty,max=512"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
}

func (r InventoryRequest) toModel(id string) *models.InventoryItem {
	return &models.InventoryItem{
		ID:          id,
		Name:        r.Name,
		Image:       r.Image,
		Description: r.Description,
		Price:       r.Price.Round(2),
		Quantity:    r.Quantity,
	}
}

// AddToCartRequest is the body of POST /cart.
type AddToCartRequest struct {
	InventoryID string `json:"inventoryId" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gte=1"`
}

// SetQuantityRequest is the body of PUT /cart/:cartId. Zero or negative
// quantities remove the line.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// newValidator returns a validator that checks decimal fields by their value.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, validate *validator.Validate, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperror.Invalid("invalid request body: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperror.Invalid("validation failed: %v", err)
		}
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
		return apperror.Invalid("validation failed: %s", strings.Join(msgs, "; "))
	}
	return nil
}
