package repository

import (
	"context"

	"github.com/rinatiamaev/salesFactoryNew/internal/model"
)

// RowRepository stores order rows.  Every call is atomic on its own;
// ids are assigned on creation, increase monotonically and are never
// reused after deletion.
type RowRepository interface {
	Create(ctx context.Context, name string, price float64, tableNumber int64, note *string) (model.Row, error)
	ListAll(ctx context.Context) ([]model.Row, error)
	ListByTable(ctx context.Context, tableNumber int64) ([]model.Row, error)
	// GetTableNumber is the existence check.  ok is false when the row
	// does not exist.
	GetTableNumber(ctx context.Context, id int64) (tableNumber int64, ok bool, err error)
	// Update replaces all mutable fields of the row at once.
	Update(ctx context.Context, id int64, in model.RowInput) (model.Row, error)
	Delete(ctx context.Context, id int64) error
}

// TableRepository stores the table layout registry.
type TableRepository interface {
	// Create adds a free table without an owner.
	Create(ctx context.Context, rowIndex, colIndex int) (model.Table, error)
	ListAll(ctx context.Context) ([]model.Table, error)
	ListByOwner(ctx context.Context, username string) ([]model.Table, error)
}

var (
	_ RowRepository   = (*RowRepo)(nil)
	_ RowRepository   = (*MemoryRowRepo)(nil)
	_ TableRepository = (*TableRepo)(nil)
	_ TableRepository = (*MemoryTableRepo)(nil)
)
