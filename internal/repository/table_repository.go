package repository

import (
	"context"
	"database/sql"

	"github.com/rinatiamaev/salesFactoryNew/internal/model"
)

const (
	qTableInsert      = `INSERT INTO dining_tables (row_index, col_index, status) VALUES (?, ?, ?)`
	qTableSelectAll   = `SELECT id, row_index, col_index, status, owner FROM dining_tables ORDER BY row_index, col_index, id`
	qTableSelectOwner = `SELECT id, row_index, col_index, status, owner FROM dining_tables WHERE owner = ? ORDER BY row_index, col_index, id`
)

// TableRepo is the MySQL implementation of TableRepository.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo constructs a TableRepo with the given DB handle.
func NewTableRepo(db *sql.DB) *TableRepo {
	return &TableRepo{db: db}
}

// Create inserts a free, unowned table at the given layout position.
func (r *TableRepo) Create(ctx context.Context, rowIndex, colIndex int) (model.Table, error) {
	res, err := r.db.ExecContext(ctx, qTableInsert, rowIndex, colIndex, string(model.TableFree))
	if err != nil {
		return model.Table{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Table{}, err
	}
	return model.Table{ID: id, RowIndex: rowIndex, ColIndex: colIndex, Status: model.TableFree}, nil
}

// ListAll returns the whole layout ordered by grid position.
func (r *TableRepo) ListAll(ctx context.Context) ([]model.Table, error) {
	return r.query(ctx, qTableSelectAll)
}

// ListByOwner returns the tables occupied by username.
func (r *TableRepo) ListByOwner(ctx context.Context, username string) ([]model.Table, error) {
	return r.query(ctx, qTableSelectOwner, username)
}

func (r *TableRepo) query(ctx context.Context, q string, args ...any) ([]model.Table, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Table, 0)
	for rows.Next() {
		var (
			t      model.Table
			status string
			owner  sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.RowIndex, &t.ColIndex, &status, &owner); err != nil {
			return nil, err
		}
		t.Status = model.TableStatus(status)
		if owner.Valid {
			s := owner.String
			t.Owner = &s
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
