package store

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	inverrors "github.com/abgdnv/inventory/inventory_service/internal/errors"
)

// MemoryStore implements Store using an in-memory map.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[int64]StockItem
	nextID int64
	now    func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:  make(map[int64]StockItem),
		nextID: 1,
		now:    time.Now,
	}
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (*StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, inverrors.ErrStockItemNotFound
	}
	return &item, nil
}

func (s *MemoryStore) FindByModel(_ context.Context, model string) (*StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.firstMatch(func(it StockItem) bool { return it.Model == model })
	if !ok {
		return nil, inverrors.ErrStockItemNotFound
	}
	return &item, nil
}

func (s *MemoryStore) FindByNameModel(_ context.Context, name string, model *string) (*StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.firstMatch(func(it StockItem) bool {
		if !strings.EqualFold(it.Name, name) {
			return false
		}
		return model == nil || strings.EqualFold(it.Model, *model)
	})
	if !ok {
		return nil, inverrors.ErrStockItemNotFound
	}
	return &item, nil
}

func (s *MemoryStore) FindAll(_ context.Context, offset, limit int32) ([]StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sortedIDs()
	list := make([]StockItem, 0, min(int(limit), len(ids)))
	for i := int(offset); i < len(ids) && len(list) < int(limit); i++ {
		list = append(list, s.items[ids[i]])
	}
	return list, nil
}

func (s *MemoryStore) Insert(_ context.Context, item StockItem) (*StockItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.firstMatch(func(it StockItem) bool { return it.Model == item.Model }); ok {
		sum := int64(existing.Quantity) + int64(item.Quantity)
		if sum < 0 || sum > math.MaxInt32 {
			return nil, false, fmt.Errorf("%w: quantity is out of range", inverrors.ErrInvalidStockItem)
		}
		existing.Quantity = int32(sum)
		existing.TotalValue = TotalFor(existing.UnitPrice, existing.Quantity)
		existing.UpdatedAt = now
		s.items[existing.ID] = existing
		return &existing, true, nil
	}

	item.ID = s.nextID
	item.TotalValue = TotalFor(item.UnitPrice, item.Quantity)
	item.CreatedAt = now
	item.UpdatedAt = now
	s.nextID++
	s.items[item.ID] = item
	return &item, false, nil
}

func (s *MemoryStore) Update(_ context.Context, item StockItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.items[item.ID]
	if !ok {
		return false, nil
	}
	if _, taken := s.firstMatch(func(it StockItem) bool { return it.Model == item.Model && it.ID != item.ID }); taken {
		return false, fmt.Errorf("%w: %s", inverrors.ErrDuplicateModel, item.Model)
	}
	s.write(old, item)
	return true, nil
}

func (s *MemoryStore) ConditionalUpdate(_ context.Context, id int64, expectedQuantity, newQuantity int32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.items[id]
	if !ok || old.Quantity != expectedQuantity {
		return false, nil
	}
	next := old
	next.Quantity = newQuantity
	s.write(old, next)
	return true, nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

// write stores item over old keeping the immutable fields. Callers hold the write lock.
func (s *MemoryStore) write(old, item StockItem) {
	item.CreatedAt = old.CreatedAt
	item.UpdatedAt = s.now()
	item.TotalValue = TotalFor(item.UnitPrice, item.Quantity)
	s.items[old.ID] = item
}

func (s *MemoryStore) firstMatch(match func(StockItem) bool) (StockItem, bool) {
	for _, id := range s.sortedIDs() {
		if it := s.items[id]; match(it) {
			return it, true
		}
	}
	return StockItem{}, false
}

func (s *MemoryStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
