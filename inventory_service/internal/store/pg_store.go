package store

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	inverrors "github.com/abgdnv/inventory/inventory_service/internal/errors"
	"github.com/abgdnv/inventory/inventory_service/internal/store/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgreSQL error codes mapped to domain errors.
const (
	pgUniqueViolation   = "23505"
	pgNumericOutOfRange = "22003"
)

// PgStore implements Store using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
	q  *db.Queries
}

// NewPgStore creates a new instance of Store using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

func (p *PgStore) FindByID(ctx context.Context, id int64) (*StockItem, error) {
	row, err := p.q.FindByID(ctx, id)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return fromRow(row), nil
}

func (p *PgStore) FindByModel(ctx context.Context, model string) (*StockItem, error) {
	row, err := p.q.FindByModel(ctx, model)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return fromRow(row), nil
}

func (p *PgStore) FindByNameModel(ctx context.Context, name string, model *string) (*StockItem, error) {
	params := db.FindByNameModelParams{Name: name}
	if model != nil {
		params.Model = pgtype.Text{String: *model, Valid: true}
	}
	row, err := p.q.FindByNameModel(ctx, params)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return fromRow(row), nil
}

func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]StockItem, error) {
	rows, err := p.q.FindAll(ctx, db.FindAllParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", inverrors.ErrFailedToFindStock, err)
	}
	items := make([]StockItem, len(rows))
	for i, row := range rows {
		items[i] = *fromRow(row)
	}
	return items, nil
}

// Insert increments the item with the same model or creates a new one.
// Two inserts of a new model race on the unique model index. The loser retries once and merges.
func (p *PgStore) Insert(ctx context.Context, item StockItem) (*StockItem, bool, error) {
	stored, merged, err := p.insertOrMerge(ctx, item)
	if errors.Is(err, inverrors.ErrDuplicateModel) {
		stored, merged, err = p.insertOrMerge(ctx, item)
	}
	return stored, merged, err
}

// insertOrMerge locks the row with the same model, if any, and either increments it or creates a new row.
func (p *PgStore) insertOrMerge(ctx context.Context, item StockItem) (*StockItem, bool, error) {
	var stored db.InventoryStock
	var merged bool

	txErr := p.withTransaction(ctx, func(qtx *db.Queries) error {
		existing, err := qtx.FindByModelForUpdate(ctx, item.Model)
		switch {
		case err == nil:
			stored, err = qtx.IncrementUnits(ctx, db.IncrementUnitsParams{Delta: item.Quantity, ProductID: existing.ProductID})
			if err != nil {
				return mapWriteErr(inverrors.ErrFailedToUpdateStock, err)
			}
			merged = true
			return nil
		case errors.Is(err, pgx.ErrNoRows):
			stored, err = qtx.Create(ctx, db.CreateParams{
				ProductName:      item.Name,
				Model:            item.Model,
				PricePerQuantity: toNumeric(item.UnitPrice),
				Unit:             item.Quantity,
				Status:           item.Status,
			})
			if err != nil {
				return mapWriteErr(inverrors.ErrFailedToInsertStock, err)
			}
			return nil
		default:
			return fmt.Errorf("%w: %w", inverrors.ErrFailedToFindStock, err)
		}
	})
	if txErr != nil {
		return nil, false, txErr
	}
	return fromRow(stored), merged, nil
}

func (p *PgStore) Update(ctx context.Context, item StockItem) (bool, error) {
	count, err := p.q.Update(ctx, db.UpdateParams{
		ProductID:        item.ID,
		ProductName:      item.Name,
		Model:            item.Model,
		PricePerQuantity: toNumeric(item.UnitPrice),
		Unit:             item.Quantity,
		Status:           item.Status,
	})
	if err != nil {
		return false, mapWriteErr(inverrors.ErrFailedToUpdateStock, err)
	}
	return count > 0, nil
}

// ConditionalUpdate issues a single UPDATE guarded by the expected quantity, so the
// compare and the write happen atomically inside PostgreSQL.
func (p *PgStore) ConditionalUpdate(ctx context.Context, id int64, expectedQuantity, newQuantity int32) (bool, error) {
	count, err := p.q.ConditionalUpdate(ctx, db.ConditionalUpdateParams{
		NewUnit:      newQuantity,
		ProductID:    id,
		ExpectedUnit: expectedQuantity,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", inverrors.ErrFailedToUpdateStock, err)
	}
	return count == 1, nil
}

func (p *PgStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	count, err := p.q.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%w: %w", inverrors.ErrFailedToDeleteStock, err)
	}
	return count > 0, nil
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(qtx *db.Queries) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return inverrors.ErrTransactionBegin
	}
	qtx := p.q.WithTx(tx)

	err = fn(qtx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return inverrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return inverrors.ErrTransactionCommit
	}

	return nil
}

func mapFindErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return inverrors.ErrStockItemNotFound
	}
	return fmt.Errorf("%w: %w", inverrors.ErrFailedToFindStock, err)
}

// mapWriteErr turns constraint violations a client can fix into domain errors and wraps
// everything else in sentinel.
func mapWriteErr(sentinel, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", inverrors.ErrDuplicateModel, pgErr.Detail)
		case pgNumericOutOfRange:
			return fmt.Errorf("%w: quantity is out of range", inverrors.ErrInvalidStockItem)
		}
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

func fromRow(row db.InventoryStock) *StockItem {
	return &StockItem{
		ID:         row.ProductID,
		Name:       row.ProductName,
		Model:      row.Model,
		UnitPrice:  fromNumeric(row.PricePerQuantity),
		Quantity:   row.Unit,
		TotalValue: fromNumeric(row.TotalPrice),
		Status:     row.Status,
		CreatedAt:  row.CreatedDate.Time,
		UpdatedAt:  row.UpdatedDate.Time,
	}
}

func toNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: new(big.Int).Set(d.Coefficient()), Exp: d.Exponent(), Valid: true}
}

func fromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
