package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/rinatiamaev/salesFactoryNew/internal/model"
)

// MemoryRowRepo keeps rows in process memory.  A single RWMutex makes every
// call atomic, and the id counter only moves forward.
type MemoryRowRepo struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]model.Row
}

// NewMemoryRowRepo returns an empty MemoryRowRepo.
func NewMemoryRowRepo() *MemoryRowRepo {
	return &MemoryRowRepo{rows: make(map[int64]model.Row)}
}

func (r *MemoryRowRepo) Create(_ context.Context, name string, price float64, tableNumber int64, note *string) (model.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	row := model.Row{ID: r.nextID, Name: name, Price: price, TableNumber: tableNumber, Note: cloneString(note)}
	r.rows[row.ID] = row
	return cloneRow(row), nil
}

func (r *MemoryRowRepo) ListAll(_ context.Context) ([]model.Row, error) {
	return r.list(func(model.Row) bool { return true }), nil
}

func (r *MemoryRowRepo) ListByTable(_ context.Context, tableNumber int64) ([]model.Row, error) {
	return r.list(func(row model.Row) bool { return row.TableNumber == tableNumber }), nil
}

func (r *MemoryRowRepo) GetTableNumber(_ context.Context, id int64) (int64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	return row.TableNumber, ok, nil
}

func (r *MemoryRowRepo) Update(_ context.Context, id int64, in model.RowInput) (model.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return model.Row{}, ErrRowNotFound
	}
	row := model.Row{ID: id, Name: in.Name, Price: in.Price, TableNumber: in.TableNumber, Note: cloneString(in.Note)}
	r.rows[id] = row
	return cloneRow(row), nil
}

func (r *MemoryRowRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrRowNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryRowRepo) list(keep func(model.Row) bool) []model.Row {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Row, 0, len(r.rows))
	for _, row := range r.rows {
		if keep(row) {
			out = append(out, cloneRow(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MemoryTableRepo keeps the table layout in process memory.
type MemoryTableRepo struct {
	mu     sync.RWMutex
	nextID int64
	tables map[int64]model.Table
}

// NewMemoryTableRepo returns an empty MemoryTableRepo.
func NewMemoryTableRepo() *MemoryTableRepo {
	return &MemoryTableRepo{tables: make(map[int64]model.Table)}
}

func (r *MemoryTableRepo) Create(_ context.Context, rowIndex, colIndex int) (model.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t := model.Table{ID: r.nextID, RowIndex: rowIndex, ColIndex: colIndex, Status: model.TableFree}
	r.tables[t.ID] = t
	return t, nil
}

func (r *MemoryTableRepo) ListAll(_ context.Context) ([]model.Table, error) {
	return r.list(func(model.Table) bool { return true }), nil
}

func (r *MemoryTableRepo) ListByOwner(_ context.Context, username string) ([]model.Table, error) {
	return r.list(func(t model.Table) bool { return t.Owner != nil && *t.Owner == username }), nil
}

// Seed stores t as is, keeping its id, status and owner.  Tests use it to
// set up occupied tables, which the public API cannot create.
func (r *MemoryTableRepo) Seed(t model.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Owner = cloneString(t.Owner)
	r.tables[t.ID] = t
	if t.ID > r.nextID {
		r.nextID = t.ID
	}
	return nil
}

func (r *MemoryTableRepo) list(keep func(model.Table) bool) []model.Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Table, 0, len(r.tables))
	for _, t := range r.tables {
		if keep(t) {
			t.Owner = cloneString(t.Owner)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.RowIndex != b.RowIndex {
			return a.RowIndex < b.RowIndex
		}
		if a.ColIndex != b.ColIndex {
			return a.ColIndex < b.ColIndex
		}
		return a.ID < b.ID
	})
	return out
}

func cloneRow(r model.Row) model.Row {
	r.Note = cloneString(r.Note)
	return r
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
