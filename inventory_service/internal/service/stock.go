package service

import (
	"reflect"
	"strings"
	"time"

	"github.com/abgdnv/inventory/inventory_service/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// StockItemCreateDto represents the data transfer object for adding stock.
// Status is optional and defaults to active.
type StockItemCreateDto struct {
	Name      string          `json:"productName"      validate:"required,max=100"`
	Model     string          `json:"model"            validate:"required,max=100"`
	UnitPrice decimal.Decimal `json:"pricePerQuantity" validate:"gt=0"`
	Quantity  int32           `json:"unit"             validate:"gt=0"`
	Status    string          `json:"status"           validate:"omitempty,stock_status"`
}

// StockItemUpdateDto is a full replacement of an item's mutable fields.
type StockItemUpdateDto struct {
	Name      string          `json:"productName"      validate:"required,max=100"`
	Model     string          `json:"model"            validate:"required,max=100"`
	UnitPrice decimal.Decimal `json:"pricePerQuantity" validate:"gt=0"`
	Quantity  int32           `json:"unit"             validate:"min=0"`
	Status    string          `json:"status"           validate:"omitempty,stock_status"`
}

// StockItemDto represents a stored item.
type StockItemDto struct {
	ID         int64           `json:"productId"`
	Name       string          `json:"productName"`
	Model      string          `json:"model"`
	UnitPrice  decimal.Decimal `json:"pricePerQuantity"`
	Quantity   int32           `json:"unit"`
	TotalValue decimal.Decimal `json:"totalPrice"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"createdDate"`
	UpdatedAt  time.Time       `json:"updatedDate"`
}

// NewValidator returns a validator that understands decimal amounts and the stock_status rule.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("stock_status", func(fl validator.FieldLevel) bool {
		_, ok := normalizeStatus(fl.Field().String())
		return ok
	})
	return v
}

// normalizeStatus lower-cases status and defaults a blank one to active.
func normalizeStatus(status string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "":
		return store.StatusActive, true
	case store.StatusActive, store.StatusInactive:
		return s, true
	default:
		return "", false
	}
}

func toDto(item *store.StockItem) *StockItemDto {
	return &StockItemDto{
		ID:         item.ID,
		Name:       item.Name,
		Model:      item.Model,
		UnitPrice:  item.UnitPrice,
		Quantity:   item.Quantity,
		TotalValue: item.TotalValue,
		Status:     item.Status,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
}
