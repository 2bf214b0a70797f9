package service

import (
	"context"
	"sync"
	"testing"

	"github.com/abgdnv/inventory/inventory_service/internal/notifier"
	"github.com/abgdnv/inventory/inventory_service/internal/store"
	"github.com/abgdnv/inventory/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

const testRecipient = "ops@example.com"

type sentMessage struct {
	Recipient string
	Subject   string
	Body      string
	Info      notifier.MessageInfo
	CtxErr    error
}

// recordingNotifier collects every message it is asked to send.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	info, _ := notifier.MessageInfoFrom(ctx)
	n.sent = append(n.sent, sentMessage{Recipient: recipient, Subject: subject, Body: body, Info: info, CtxErr: ctx.Err()})
	return n.err
}

func (n *recordingNotifier) subjects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	subjects := make([]string, 0, len(n.sent))
	for _, m := range n.sent {
		subjects = append(subjects, m.Subject)
	}
	return subjects
}

// mockStore is a testify mock of store.Store.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindByID(ctx context.Context, id int64) (*store.StockItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*store.StockItem)
	return item, args.Error(1)
}

func (m *mockStore) FindByModel(ctx context.Context, model string) (*store.StockItem, error) {
	args := m.Called(ctx, model)
	item, _ := args.Get(0).(*store.StockItem)
	return item, args.Error(1)
}

func (m *mockStore) FindByNameModel(ctx context.Context, name string, model *string) (*store.StockItem, error) {
	args := m.Called(ctx, name, model)
	item, _ := args.Get(0).(*store.StockItem)
	return item, args.Error(1)
}

func (m *mockStore) FindAll(ctx context.Context, offset, limit int32) ([]store.StockItem, error) {
	args := m.Called(ctx, offset, limit)
	items, _ := args.Get(0).([]store.StockItem)
	return items, args.Error(1)
}

func (m *mockStore) Insert(ctx context.Context, item store.StockItem) (*store.StockItem, bool, error) {
	args := m.Called(ctx, item)
	stored, _ := args.Get(0).(*store.StockItem)
	return stored, args.Bool(1), args.Error(2)
}

func (m *mockStore) Update(ctx context.Context, item store.StockItem) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) ConditionalUpdate(ctx context.Context, id int64, expectedQuantity, newQuantity int32) (bool, error) {
	args := m.Called(ctx, id, expectedQuantity, newQuantity)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func newTestDispatcher(n Notifier) *Dispatcher {
	return NewDispatcher(n, DispatcherConfig{Recipient: testRecipient}, logger.Discard(), noop.NewMeterProvider().Meter("test"))
}

func newTestService(st store.Store, n Notifier) *Service {
	return NewService(st, newTestDispatcher(n), noop.NewMeterProvider().Meter("test"), logger.Discard())
}

// seedItem inserts an item directly into st and returns its id.
func seedItem(t *testing.T, st store.Store, name, model string, price int64, qty int32) int64 {
	t.Helper()
	stored, _, err := st.Insert(context.Background(), store.StockItem{
		Name:      name,
		Model:     model,
		UnitPrice: decimal.NewFromInt(price),
		Quantity:  qty,
		Status:    store.StatusActive,
	})
	require.NoError(t, err)
	return stored.ID
}
