// Package errors provides sentinel errors for stock-related operations.
package errors

import "errors"

var ErrStockItemNotFound = errors.New("stock item not found")
var ErrInvalidStockItem = errors.New("invalid stock item")

// ErrDuplicateModel means another stock item already uses the model.
var ErrDuplicateModel = errors.New("a stock item with this model already exists")

// ErrStockConflict means a deduction could not be written, either because the record vanished
// between read and write or because concurrent writers kept winning. Callers may retry.
var ErrStockConflict = errors.New("stock changed concurrently, please retry")

var ErrFailedToFindStock = errors.New("failed to find stock item")
var ErrFailedToInsertStock = errors.New("failed to insert stock item")
var ErrFailedToUpdateStock = errors.New("failed to update stock item")
var ErrFailedToDeleteStock = errors.New("failed to delete stock item")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
