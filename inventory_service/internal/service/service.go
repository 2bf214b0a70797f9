// Package service provides the order placement and stock administration logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	inverrors "github.com/abgdnv/inventory/inventory_service/internal/errors"
	"github.com/abgdnv/inventory/inventory_service/internal/store"
	"go.opentelemetry.io/otel/metric"
)

// InventoryService defines the operations exposed by the transports.
type InventoryService interface {
	// PlaceOrder deducts the requested quantity and dispatches the resulting notifications.
	// Rejections are returned as Rejected outcomes. A non-nil error is a server-side fault.
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderOutcome, error)

	// FindByID retrieves a single item by its identifier.
	// Returns ErrStockItemNotFound if no item exists with the given ID.
	FindByID(ctx context.Context, id int64) (*StockItemDto, error)

	// FindAll returns a page of items.
	// Returns an empty slice if no items exist.
	FindAll(ctx context.Context, offset, limit int32) ([]StockItemDto, error)

	// Insert adds stock. An item with the same model has its quantity increased instead.
	// Returns ErrInvalidStockItem if the item is not acceptable.
	Insert(ctx context.Context, dto StockItemCreateDto) (*StockItemDto, error)

	// Update replaces the item with the given ID.
	// Returns ErrStockItemNotFound if no item exists with the given ID.
	Update(ctx context.Context, id int64, dto StockItemUpdateDto) (*StockItemDto, error)

	// DeleteByID removes an item. Returns false when nothing was deleted.
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// Service implements InventoryService.
type Service struct {
	store      store.Store
	engine     *Engine
	dispatcher *Dispatcher
	metrics    orderMetrics
	logger     *slog.Logger
}

// NewService creates a new Service. Notifications produced by committed changes go to dispatcher.
func NewService(st store.Store, dispatcher *Dispatcher, meter metric.Meter, logger *slog.Logger) *Service {
	return &Service{
		store:      st,
		engine:     NewEngine(st, logger),
		dispatcher: dispatcher,
		metrics:    newOrderMetrics(meter),
		logger:     logger.With("component", "service"),
	}
}

func (s *Service) PlaceOrder(ctx context.Context, req OrderRequest) (OrderOutcome, error) {
	result, err := s.engine.PlaceOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	s.metrics.record(ctx, result.Outcome)
	s.dispatcher.Dispatch(ctx, result.Effects)
	return result.Outcome, nil
}

func (s *Service) FindByID(ctx context.Context, id int64) (*StockItemDto, error) {
	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock item by ID %d: %w", id, err)
	}
	return toDto(item), nil
}

func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]StockItemDto, error) {
	items, err := s.store.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock items: %w", err)
	}
	dtos := make([]StockItemDto, len(items))
	for i := range items {
		dtos[i] = *toDto(&items[i])
	}
	return dtos, nil
}

// Insert fires a low stock alert whenever the stored quantity ends up at or below the threshold.
func (s *Service) Insert(ctx context.Context, dto StockItemCreateDto) (*StockItemDto, error) {
	status, ok := normalizeStatus(dto.Status)
	name := strings.TrimSpace(dto.Name)
	if !ok || name == "" || dto.Quantity <= 0 || !dto.UnitPrice.IsPositive() {
		return nil, inverrors.ErrInvalidStockItem
	}

	stored, merged, err := s.store.Insert(ctx, store.StockItem{
		Name:      name,
		Model:     strings.TrimSpace(dto.Model),
		UnitPrice: dto.UnitPrice,
		Quantity:  dto.Quantity,
		Status:    status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert stock item: %w", err)
	}
	s.logger.InfoContext(ctx, "Stock added", "productId", stored.ID, "merged", merged, "unit", stored.Quantity)

	if isLowStock(stored.Quantity) {
		s.dispatcher.Dispatch(ctx, []Effect{lowStockEffect(stored)})
	}
	return toDto(stored), nil
}

// Update fires a low stock alert only when the quantity moves down into the threshold
// or keeps falling inside it.
func (s *Service) Update(ctx context.Context, id int64, dto StockItemUpdateDto) (*StockItemDto, error) {
	status, ok := normalizeStatus(dto.Status)
	name := strings.TrimSpace(dto.Name)
	if !ok || name == "" || dto.Quantity < 0 || !dto.UnitPrice.IsPositive() {
		return nil, inverrors.ErrInvalidStockItem
	}

	old, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock item by ID %d: %w", id, err)
	}
	updated, err := s.store.Update(ctx, store.StockItem{
		ID:        id,
		Name:      name,
		Model:     strings.TrimSpace(dto.Model),
		UnitPrice: dto.UnitPrice,
		Quantity:  dto.Quantity,
		Status:    status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update stock item with ID %d: %w", id, err)
	}
	if !updated {
		return nil, fmt.Errorf("stock item with ID %d was removed: %w", id, inverrors.ErrStockItemNotFound)
	}
	stored, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read stock item with ID %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Stock updated", "productId", id, "before", old.Quantity, "after", stored.Quantity)

	if lowStockAfterUpdate(old.Quantity, stored.Quantity) {
		s.dispatcher.Dispatch(ctx, []Effect{lowStockEffect(stored)})
	}
	return toDto(stored), nil
}

func (s *Service) DeleteByID(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete stock item with ID %d: %w", id, err)
	}
	if deleted {
		s.logger.InfoContext(ctx, "Stock deleted", "productId", id)
	}
	return deleted, nil
}

func lowStockEffect(item *store.StockItem) NotifyLowStock {
	return NotifyLowStock{
		ProductID: item.ID,
		Name:      item.Name,
		Model:     item.Model,
		Remaining: item.Quantity,
	}
}
