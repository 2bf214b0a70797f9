package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	inverrors "github.com/abgdnv/inventory/inventory_service/internal/errors"
	"github.com/abgdnv/inventory/inventory_service/internal/store"
)

// maxDeductAttempts bounds how often a deduction is re-evaluated after losing a compare-and-write race.
const maxDeductAttempts = 5

// OrderResult is what the engine decided: one outcome and the effects to run after commit.
type OrderResult struct {
	Outcome OrderOutcome
	Effects []Effect
}

// Engine places orders against a Store. It never sends notifications itself.
type Engine struct {
	store  store.Store
	logger *slog.Logger
}

func NewEngine(st store.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  st,
		logger: logger.With("component", "engine"),
	}
}

// PlaceOrder validates the request, resolves the product and deducts the quantity with a
// compare-and-write. Business rejections are returned as Rejected outcomes with a nil error.
// A non-nil error is a server-side fault and nothing has been written.
func (e *Engine) PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	qty, rej := parseQuantity(req)
	if rej != nil {
		return OrderResult{Outcome: *rej}, nil
	}
	ref, rej := parseRef(req)
	if rej != nil {
		return OrderResult{Outcome: *rej}, nil
	}

	for attempt := 1; attempt <= maxDeductAttempts; attempt++ {
		item, err := e.resolve(ctx, ref)
		if errors.Is(err, inverrors.ErrStockItemNotFound) {
			if attempt == 1 {
				return OrderResult{Outcome: notFound}, nil
			}
			return OrderResult{}, fmt.Errorf("product %v disappeared during deduction: %w", ref, inverrors.ErrStockConflict)
		}
		if err != nil {
			return OrderResult{}, fmt.Errorf("failed to resolve product %v: %w", ref, err)
		}

		if item.Quantity < qty {
			return OrderResult{Outcome: insufficient(item.Quantity)}, nil
		}

		next := *item
		next.Quantity = item.Quantity - qty
		next.TotalValue = store.TotalFor(next.UnitPrice, next.Quantity)

		ok, err := e.store.ConditionalUpdate(ctx, item.ID, item.Quantity, next.Quantity)
		if err != nil {
			return OrderResult{}, fmt.Errorf("failed to deduct stock for product %d: %w", item.ID, err)
		}
		if ok {
			e.logger.DebugContext(ctx, "Stock deducted",
				"productId", item.ID, "before", item.Quantity, "ordered", qty, "after", next.Quantity)
			return OrderResult{
				Outcome: Placed{ProductID: item.ID, Remaining: next.Quantity},
				Effects: orderEffects(req, next, qty),
			}, nil
		}

		e.logger.DebugContext(ctx, "Concurrent stock change, re-reading", "productId", item.ID, "attempt", attempt)
		ref = ByProductID{ID: item.ID}
	}
	return OrderResult{}, fmt.Errorf("giving up after %d attempts: %w", maxDeductAttempts, inverrors.ErrStockConflict)
}

func (e *Engine) resolve(ctx context.Context, ref ProductRef) (*store.StockItem, error) {
	switch r := ref.(type) {
	case ByProductID:
		return e.store.FindByID(ctx, r.ID)
	case ByNameModel:
		return e.store.FindByNameModel(ctx, r.Name, r.Model)
	default:
		return nil, fmt.Errorf("unsupported product reference %T", ref)
	}
}

func orderEffects(req OrderRequest, item store.StockItem, ordered int32) []Effect {
	effects := []Effect{NotifyOrderPlaced{
		ProductID:       item.ID,
		Name:            item.Name,
		Model:           item.Model,
		Ordered:         ordered,
		Remaining:       item.Quantity,
		CustomerName:    customerName(req),
		CustomerAddress: customerAddress(req),
	}}
	if isLowStock(item.Quantity) {
		effects = append(effects, lowStockEffect(&item))
	}
	return effects
}
