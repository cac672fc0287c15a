package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rinatiamaev/salesFactoryNew/internal/model"
)

const (
	qRowInsert      = `INSERT INTO order_rows (name, price, table_number, note) VALUES (?, ?, ?, ?)`
	qRowSelectAll   = `SELECT id, name, price, table_number, note FROM order_rows ORDER BY id`
	qRowSelectTable = `SELECT id, name, price, table_number, note FROM order_rows WHERE table_number = ? ORDER BY id`
	qRowTableNumber = `SELECT table_number FROM order_rows WHERE id = ?`
	qRowUpdate      = `UPDATE order_rows SET name = ?, price = ?, table_number = ?, note = ? WHERE id = ?`
	qRowDelete      = `DELETE FROM order_rows WHERE id = ?`
)

// RowRepo is the MySQL implementation of RowRepository.  Ids come from
// AUTO_INCREMENT, which never hands out a deleted id again.
type RowRepo struct {
	db *sql.DB
}

// NewRowRepo constructs a RowRepo with the given DB handle.
func NewRowRepo(db *sql.DB) *RowRepo {
	return &RowRepo{db: db}
}

// Create inserts a row and returns it with its new id.
func (r *RowRepo) Create(ctx context.Context, name string, price float64, tableNumber int64, note *string) (model.Row, error) {
	res, err := r.db.ExecContext(ctx, qRowInsert, name, price, tableNumber, nullString(note))
	if err != nil {
		return model.Row{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Row{}, err
	}
	return model.Row{ID: id, Name: name, Price: price, TableNumber: tableNumber, Note: note}, nil
}

// ListAll returns every row ordered by id.
func (r *RowRepo) ListAll(ctx context.Context) ([]model.Row, error) {
	return r.query(ctx, qRowSelectAll)
}

// ListByTable returns the rows of one table ordered by id.
func (r *RowRepo) ListByTable(ctx context.Context, tableNumber int64) ([]model.Row, error) {
	return r.query(ctx, qRowSelectTable, tableNumber)
}

// GetTableNumber looks the row up and reports the table it belongs to.
func (r *RowRepo) GetTableNumber(ctx context.Context, id int64) (int64, bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, qRowTableNumber, id).Scan(&n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return n, true, nil
}

// Update overwrites every mutable field in one statement, so readers see
// either the old row or the new one.  The DSN sets clientFoundRows, which
// makes an update with unchanged values still count as affected.
func (r *RowRepo) Update(ctx context.Context, id int64, in model.RowInput) (model.Row, error) {
	res, err := r.db.ExecContext(ctx, qRowUpdate, in.Name, in.Price, in.TableNumber, nullString(in.Note), id)
	if err != nil {
		return model.Row{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Row{}, ErrRowNotFound
	}
	return model.Row{ID: id, Name: in.Name, Price: in.Price, TableNumber: in.TableNumber, Note: in.Note}, nil
}

// Delete removes the row.  ErrRowNotFound is returned when nothing was
// deleted, which makes a second delete of the same id fail.
func (r *RowRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, qRowDelete, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRowNotFound
	}
	return nil
}

func (r *RowRepo) query(ctx context.Context, q string, args ...any) ([]model.Row, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Row, 0)
	for rows.Next() {
		var (
			row  model.Row
			note sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.Name, &row.Price, &row.TableNumber, &note); err != nil {
			return nil, err
		}
		if note.Valid {
			s := note.String
			row.Note = &s
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
