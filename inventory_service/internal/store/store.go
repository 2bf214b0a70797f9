// Package store provides storage for stock items.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// StockItem is one inventory record. TotalValue is always UnitPrice * Quantity once persisted.
type StockItem struct {
	ID         int64
	Name       string
	Model      string
	UnitPrice  decimal.Decimal
	Quantity   int32
	TotalValue decimal.Decimal
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TotalFor returns unitPrice * quantity rounded to cents.
func TotalFor(unitPrice decimal.Decimal, quantity int32) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt32(quantity)).Round(2)
}

// Store is an interface for stock storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type Store interface {
	// FindByID retrieves a single item by its identifier.
	// Returns ErrStockItemNotFound if no item exists with the given ID.
	FindByID(ctx context.Context, id int64) (*StockItem, error)

	// FindByModel returns the item with exactly this model.
	// Returns ErrStockItemNotFound if there is none.
	FindByModel(ctx context.Context, model string) (*StockItem, error)

	// FindByNameModel returns the lowest-id item whose name matches case-insensitively,
	// additionally filtered by a case-insensitive model match when model is not nil.
	// Returns ErrStockItemNotFound if nothing matches.
	FindByNameModel(ctx context.Context, name string, model *string) (*StockItem, error)

	// FindAll returns a page of items ordered by id.
	// Returns an empty slice if no items exist.
	FindAll(ctx context.Context, offset, limit int32) ([]StockItem, error)

	// Insert stores a new item, or adds its quantity to the existing item with the same model.
	// The merged flag reports which of the two happened.
	Insert(ctx context.Context, item StockItem) (stored *StockItem, merged bool, err error)

	// Update replaces every mutable field of the item with the given ID.
	// Returns false when no such item exists.
	Update(ctx context.Context, item StockItem) (bool, error)

	// ConditionalUpdate sets the quantity (and the total value) to newQuantity only if the stored
	// quantity still equals expectedQuantity. Every other field keeps its stored value.
	// Returns false when the item is gone or its quantity changed.
	ConditionalUpdate(ctx context.Context, id int64, expectedQuantity, newQuantity int32) (bool, error)

	// DeleteByID removes an item. Returns false when nothing was deleted.
	DeleteByID(ctx context.Context, id int64) (bool, error)
}
