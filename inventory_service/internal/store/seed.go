package store

import (
	"context"
	"errors"
	"fmt"

	inverrors "github.com/abgdnv/inventory/inventory_service/internal/errors"
	"github.com/shopspring/decimal"
)

// DemoItems is the catalogue inserted by Seed.
var DemoItems = []StockItem{
	{Name: "Microwave X100", Model: "MX-100", UnitPrice: decimal.RequireFromString("4999.00"), Quantity: 10, Status: StatusActive},
	{Name: "Phone Model A", Model: "PMA-2025", UnitPrice: decimal.RequireFromString("15999.00"), Quantity: 5, Status: StatusActive},
	{Name: "LED TV 42", Model: "LTV-42X", UnitPrice: decimal.RequireFromString("25999.00"), Quantity: 3, Status: StatusActive},
}

// Seed inserts every item whose model is not stored yet. It returns how many items were added.
// Existing items are left untouched, so running it on every start is safe.
func Seed(ctx context.Context, st Store, items []StockItem) (int, error) {
	added := 0
	for _, item := range items {
		_, err := st.FindByModel(ctx, item.Model)
		if err == nil {
			continue
		}
		if !errors.Is(err, inverrors.ErrStockItemNotFound) {
			return added, fmt.Errorf("seed lookup %s: %w", item.Model, err)
		}
		if _, _, err := st.Insert(ctx, item); err != nil {
			return added, fmt.Errorf("seed insert %s: %w", item.Model, err)
		}
		added++
	}
	return added, nil
}
