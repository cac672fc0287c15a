// Package access decides who may read and write which order rows and
// tables.  Every decision is a pure function of the caller's principal,
// the requested parameters and, for mutations, the persisted record.  The
// package holds no state and needs no locking.
//
// Existence checks are not made here.  Callers must confirm a row exists
// before asking MutateRow, so that a missing row always yields not found
// and only an existing foreign row yields forbidden.
package access

import (
	"errors"

	"github.com/rinatiamaev/salesFactoryNew/internal/model"
)

// ErrForbidden is returned when the target exists but lies outside the
// caller's scope, or the caller's role lacks the capability.  Handlers
// translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// Verdict is the outcome of a mutate or create check.
type Verdict bool

const (
	Allow Verdict = true
	Deny  Verdict = false
)

// Err returns ErrForbidden for Deny and nil for Allow.
func (v Verdict) Err() error {
	if v == Deny {
		return ErrForbidden
	}
	return nil
}

func (v Verdict) String() string {
	if v == Allow {
		return "ALLOW"
	}
	return "DENY"
}

// RowFilter selects the rows visible to a caller.  All wins over
// TableNumber.
type RowFilter struct {
	All         bool
	TableNumber int64
}

// Matches reports whether r passes the filter.
func (f RowFilter) Matches(r model.Row) bool {
	return f.All || r.TableNumber == f.TableNumber
}

// TableFilter selects the tables visible to a caller.  Tables are keyed by
// the occupying username, not by table number; rows and tables are
// deliberately filtered on different keys.
type TableFilter struct {
	All   bool
	Owner string
}

// Matches reports whether t passes the filter.
func (f TableFilter) Matches(t model.Table) bool {
	if f.All {
		return true
	}
	return t.Owner != nil && *t.Owner == f.Owner
}

// TableOp names an operation on the table registry.
type TableOp int

const (
	ListTablesOp TableOp = iota
	CreateTableOp
)

// Decision is the combined answer for a table operation.  Filter is only
// meaningful for ListTablesOp.
type Decision struct {
	Verdict Verdict
	Filter  TableFilter
}

// Mediator is the access-control policy.  The zero value is ready to use.
type Mediator struct{}

// New returns a Mediator.
func New() Mediator { return Mediator{} }

// ListRows returns the filter of rows p may list.  It never fails.
func (Mediator) ListRows(p model.Principal) RowFilter {
	if p.IsOwner() {
		return RowFilter{All: true}
	}
	if p.TableNumber == nil {
		// table ids start at 1, so a malformed client sees nothing
		return RowFilter{TableNumber: 0}
	}
	return RowFilter{TableNumber: *p.TableNumber}
}

// CreateRow returns the table number a new row is stored under.  A
// client's request is clamped to its own table, whatever it asked for;
// an owner gets exactly what it asked for.
func (Mediator) CreateRow(p model.Principal, requested int64) int64 {
	if !p.IsOwner() && p.TableNumber != nil {
		return *p.TableNumber
	}
	return requested
}

// MutateRow decides whether p may update or delete existing.
func (Mediator) MutateRow(p model.Principal, existing model.Row) Verdict {
	if p.IsOwner() {
		return Allow
	}
	if p.TableNumber != nil && existing.TableNumber == *p.TableNumber {
		return Allow
	}
	return Deny
}

// MutateRowByTable is MutateRow for callers that only looked up the row's
// table number.
func (m Mediator) MutateRowByTable(p model.Principal, tableNumber int64) Verdict {
	return m.MutateRow(p, model.Row{TableNumber: tableNumber})
}

// ListTables returns the filter of tables p may list.
func (Mediator) ListTables(p model.Principal) TableFilter {
	if p.IsOwner() {
		return TableFilter{All: true}
	}
	return TableFilter{Owner: p.Username}
}

// CreateTable allows owners only.
func (Mediator) CreateTable(p model.Principal) Verdict {
	if p.IsOwner() {
		return Allow
	}
	return Deny
}

// Tables answers a table operation in one call.  Listing is always
// allowed and carries a filter; creation is owner-only.
func (m Mediator) Tables(p model.Principal, op TableOp) Decision {
	switch op {
	case ListTablesOp:
		return Decision{Verdict: Allow, Filter: m.ListTables(p)}
	case CreateTableOp:
		return Decision{Verdict: m.CreateTable(p)}
	}
	return Decision{Verdict: Deny}
}
