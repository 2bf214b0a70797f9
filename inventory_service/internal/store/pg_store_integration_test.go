package store

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	inverrors "github.com/abgdnv/inventory/inventory_service/internal/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "INVENTORY_SVC_SKIP_INTEGRATION_TESTS"

// PgStoreSuite is a test suite for the PgStore implementation.
type PgStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       *PgStore
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite starts PostgreSQL, applies the migrations and creates the store.
func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("inventory_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "../../../deploy/migrations/inventory_service")
	m, err := migrate.New("file://"+migrationsPath, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied")

	s.store = NewPgStore(s.dbPool)
}

// TearDownSuite releases the pool and the container.
func (s *PgStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest empties the table before each test.
func (s *PgStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE inventory_stock RESTART IDENTITY")
	require.NoError(s.T(), err, "Failed to truncate inventory_stock table")
}

// TestPgStoreIntegration runs the PgStore integration tests.
func TestPgStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PgStoreSuite))
}

func (s *PgStoreSuite) TestInsertComputesTotal() {
	// when
	item, merged, err := s.store.Insert(s.ctx, widget("W1", 5))

	// then
	s.Require().NoError(err)
	s.False(merged)
	s.Equal(int64(1), item.ID)
	s.True(decimal.NewFromInt(50).Equal(item.TotalValue), item.TotalValue.String())
	s.Equal(StatusActive, item.Status)
	s.False(item.CreatedAt.IsZero())
}

func (s *PgStoreSuite) TestInsertMergesByModel() {
	// given
	first, _, err := s.store.Insert(s.ctx, widget("W1", 5))
	s.Require().NoError(err)

	// when
	incoming := widget("W1", 2)
	incoming.UnitPrice = decimal.NewFromInt(99)
	second, merged, err := s.store.Insert(s.ctx, incoming)

	// then
	s.Require().NoError(err)
	s.True(merged)
	s.Equal(first.ID, second.ID)
	s.Equal(int32(7), second.Quantity)
	s.True(decimal.NewFromInt(10).Equal(second.UnitPrice), "price is unchanged by a merge")
	s.True(decimal.NewFromInt(70).Equal(second.TotalValue))
	all, err := s.store.FindAll(s.ctx, 0, 100)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *PgStoreSuite) TestInsertNewModel_ConcurrentSingleRow() {
	const writers = 8

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, merged, err := s.store.Insert(s.ctx, widget("W-NEW", 2))
			assert.NoError(s.T(), err)
			if err == nil && !merged {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, created)
	all, err := s.store.FindAll(s.ctx, 0, 100)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(int32(2*writers), all[0].Quantity)
}

func (s *PgStoreSuite) TestInsertMergeOverflowRejected() {
	item, _, err := s.store.Insert(s.ctx, widget("W1", math.MaxInt32))
	s.Require().NoError(err)

	_, _, err = s.store.Insert(s.ctx, widget("W1", 5))

	s.ErrorIs(err, inverrors.ErrInvalidStockItem)
	stored, err := s.store.FindByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(int32(math.MaxInt32), stored.Quantity)
}

func (s *PgStoreSuite) TestUpdateOntoTakenModel() {
	_, _, err := s.store.Insert(s.ctx, widget("W1", 5))
	s.Require().NoError(err)
	other, _, err := s.store.Insert(s.ctx, widget("W2", 3))
	s.Require().NoError(err)

	upd := *other
	upd.Model = "W1"
	_, err = s.store.Update(s.ctx, upd)

	s.ErrorIs(err, inverrors.ErrDuplicateModel)
	stored, err := s.store.FindByID(s.ctx, other.ID)
	s.Require().NoError(err)
	s.Equal("W2", stored.Model)
}

func (s *PgStoreSuite) TestFindByNameModel() {
	a, _, _ := s.store.Insert(s.ctx, StockItem{Name: "LED TV 42", Model: "LTV-42X", UnitPrice: decimal.NewFromInt(1), Quantity: 3, Status: StatusActive})
	b, _, _ := s.store.Insert(s.ctx, StockItem{Name: "Led Tv 42", Model: "LTV-42Y", UnitPrice: decimal.NewFromInt(1), Quantity: 3, Status: StatusActive})

	found, err := s.store.FindByNameModel(s.ctx, "led tv 42", nil)
	s.Require().NoError(err)
	s.Equal(a.ID, found.ID)

	model := "ltv-42y"
	found, err = s.store.FindByNameModel(s.ctx, "LED TV 42", &model)
	s.Require().NoError(err)
	s.Equal(b.ID, found.ID)

	_, err = s.store.FindByNameModel(s.ctx, "Radio", nil)
	s.ErrorIs(err, inverrors.ErrStockItemNotFound)
}

func (s *PgStoreSuite) TestConditionalUpdate() {
	item, _, err := s.store.Insert(s.ctx, widget("W1", 5))
	s.Require().NoError(err)

	ok, err := s.store.ConditionalUpdate(s.ctx, item.ID, 4, 1)
	s.Require().NoError(err)
	s.False(ok, "stale expected quantity must not write")

	ok, err = s.store.ConditionalUpdate(s.ctx, item.ID, 5, 1)
	s.Require().NoError(err)
	s.True(ok)

	stored, err := s.store.FindByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(int32(1), stored.Quantity)
	s.True(decimal.NewFromInt(10).Equal(stored.TotalValue))

	ok, err = s.store.ConditionalUpdate(s.ctx, 12345, 1, 0)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PgStoreSuite) TestConditionalUpdate_WritesOnlyQuantity() {
	item, _, err := s.store.Insert(s.ctx, widget("W1", 5))
	s.Require().NoError(err)
	edited := *item
	edited.Name = "Widget Pro"
	edited.UnitPrice = decimal.NewFromInt(12)
	_, err = s.store.Update(s.ctx, edited)
	s.Require().NoError(err)

	ok, err := s.store.ConditionalUpdate(s.ctx, item.ID, 5, 3)

	s.Require().NoError(err)
	s.True(ok)
	stored, err := s.store.FindByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal("Widget Pro", stored.Name)
	s.Equal(int32(3), stored.Quantity)
	s.True(decimal.NewFromInt(36).Equal(stored.TotalValue), stored.TotalValue.String())
}

func (s *PgStoreSuite) TestConditionalUpdate_ConcurrentSingleWinner() {
	item, _, err := s.store.Insert(s.ctx, widget("W1", 1))
	s.Require().NoError(err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.store.ConditionalUpdate(s.ctx, item.ID, 1, 0)
			assert.NoError(s.T(), err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, wins)
}

func (s *PgStoreSuite) TestNegativeQuantityRejectedByConstraint() {
	item, _, err := s.store.Insert(s.ctx, widget("W1", 1))
	s.Require().NoError(err)
	next := *item
	next.Quantity = -1

	_, err = s.store.Update(s.ctx, next)

	s.ErrorIs(err, inverrors.ErrFailedToUpdateStock)
}

func (s *PgStoreSuite) TestUpdateAndDelete() {
	item, _, err := s.store.Insert(s.ctx, widget("W1", 5))
	s.Require().NoError(err)

	ok, err := s.store.Update(s.ctx, StockItem{ID: 999, Name: "x", Model: "x", UnitPrice: decimal.NewFromInt(1), Status: StatusActive})
	s.Require().NoError(err)
	s.False(ok)

	upd := *item
	upd.Name = "Widget Pro"
	upd.UnitPrice = decimal.RequireFromString("12.25")
	upd.Quantity = 2
	upd.Status = StatusInactive
	ok, err = s.store.Update(s.ctx, upd)
	s.Require().NoError(err)
	s.True(ok)

	stored, err := s.store.FindByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal("Widget Pro", stored.Name)
	s.Equal(StatusInactive, stored.Status)
	s.True(decimal.RequireFromString("24.50").Equal(stored.TotalValue))

	deleted, err := s.store.DeleteByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.True(deleted)
	deleted, err = s.store.DeleteByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.False(deleted)

	_, err = s.store.FindByID(s.ctx, item.ID)
	s.ErrorIs(err, inverrors.ErrStockItemNotFound)
}

func (s *PgStoreSuite) TestSeedIsIdempotent() {
	added, err := Seed(s.ctx, s.store, DemoItems)
	s.Require().NoError(err)
	s.Equal(3, added)

	added, err = Seed(s.ctx, s.store, DemoItems)
	s.Require().NoError(err)
	s.Equal(0, added)

	page, err := s.store.FindAll(s.ctx, 0, 10)
	s.Require().NoError(err)
	s.Len(page, 3)
	s.Equal("MX-100", page[0].Model)
}
