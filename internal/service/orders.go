// Package service runs the order workflows: it asks the access mediator
// what a caller may do, then touches the repositories accordingly.
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rinatiamaev/salesFactoryNew/internal/access"
	"github.com/rinatiamaev/salesFactoryNew/internal/model"
	"github.com/rinatiamaev/salesFactoryNew/internal/queue"
	"github.com/rinatiamaev/salesFactoryNew/internal/repository"
)

// EventPublisher receives an event after each successful write.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.OrderEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.OrderEvent) error { return nil }

var _ EventPublisher = (*queue.Publisher)(nil)

// Orders is the ordering workflow shared by every handler.
type Orders struct {
	mediator access.Mediator
	rows     repository.RowRepository
	tables   repository.TableRepository
	events   EventPublisher
	logger   *log.Logger
	now      func() time.Time
}

// NewOrders wires the workflow.  A nil events falls back to NopPublisher
// and a nil logger to the standard logger.
func NewOrders(rows repository.RowRepository, tables repository.TableRepository, events EventPublisher, logger *log.Logger) *Orders {
	if rows == nil || tables == nil {
		panic("nil repository passed to NewOrders")
	}
	if events == nil {
		events = NopPublisher{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Orders{
		mediator: access.New(),
		rows:     rows,
		tables:   tables,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// ListRows returns the rows visible to p, ordered by id.
func (o *Orders) ListRows(ctx context.Context, p model.Principal) ([]model.Row, error) {
	f := o.mediator.ListRows(p)
	if f.All {
		return o.rows.ListAll(ctx)
	}
	return o.rows.ListByTable(ctx, f.TableNumber)
}

// CreateRow stores a new row.  A client's row always lands on its own
// table, whatever table_number it sent; an owner must name the table.
func (o *Orders) CreateRow(ctx context.Context, p model.Principal, in model.RowInput) (model.Row, error) {
	in = in.Normalize()
	in.TableNumber = o.mediator.CreateRow(p, in.TableNumber)
	if err := in.Validate(); err != nil {
		return model.Row{}, err
	}
	row, err := o.rows.Create(ctx, in.Name, in.Price, in.TableNumber, in.Note)
	if err != nil {
		return model.Row{}, fmt.Errorf("create row: %w", err)
	}
	o.publish(ctx, p, rowEvent(queue.RowCreated, row))
	return row, nil
}

// UpdateRow replaces the mutable fields of row id.  A missing row is
// reported as not found before any permission check runs.
func (o *Orders) UpdateRow(ctx context.Context, p model.Principal, id int64, in model.RowInput) (model.Row, error) {
	if _, err := o.authorizeRow(ctx, p, id); err != nil {
		return model.Row{}, err
	}
	in = in.Normalize()
	in.TableNumber = o.mediator.CreateRow(p, in.TableNumber)
	if err := in.Validate(); err != nil {
		return model.Row{}, err
	}
	row, err := o.rows.Update(ctx, id, in)
	if err != nil {
		return model.Row{}, fmt.Errorf("update row %d: %w", id, err)
	}
	o.publish(ctx, p, rowEvent(queue.RowUpdated, row))
	return row, nil
}

// DeleteRow removes row id.  Deleting the same id twice yields not found
// the second time.
func (o *Orders) DeleteRow(ctx context.Context, p model.Principal, id int64) error {
	table, err := o.authorizeRow(ctx, p, id)
	if err != nil {
		return err
	}
	if err := o.rows.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete row %d: %w", id, err)
	}
	o.publish(ctx, p, queue.OrderEvent{Kind: queue.RowDeleted, RowID: id, TableNumber: table})
	return nil
}

// ListTables returns every table to an owner and only the tables a
// client occupies otherwise.
func (o *Orders) ListTables(ctx context.Context, p model.Principal) ([]model.Table, error) {
	d := o.mediator.Tables(p, access.ListTablesOp)
	if err := d.Verdict.Err(); err != nil {
		return nil, err
	}
	if d.Filter.All {
		return o.tables.ListAll(ctx)
	}
	return o.tables.ListByOwner(ctx, d.Filter.Owner)
}

// AuthorizeCreateTable reports whether p may create tables at all, so
// callers can refuse before decoding a payload.
func (o *Orders) AuthorizeCreateTable(p model.Principal) error {
	return o.mediator.Tables(p, access.CreateTableOp).Verdict.Err()
}

// CreateTable adds a free table.  Clients are refused before the payload
// is looked at.
func (o *Orders) CreateTable(ctx context.Context, p model.Principal, in model.TableInput) (model.Table, error) {
	if err := o.AuthorizeCreateTable(p); err != nil {
		return model.Table{}, err
	}
	if err := in.Validate(); err != nil {
		return model.Table{}, err
	}
	t, err := o.tables.Create(ctx, in.RowIndex, in.ColIndex)
	if err != nil {
		return model.Table{}, fmt.Errorf("create table: %w", err)
	}
	o.publish(ctx, p, queue.OrderEvent{
		Kind:     queue.TableCreated,
		TableID:  t.ID,
		Position: []int{t.RowIndex, t.ColIndex},
	})
	return t, nil
}

// AuthorizeRow reports whether p may change row id: ErrRowNotFound when it
// does not exist, access.ErrForbidden when it sits on another table.
func (o *Orders) AuthorizeRow(ctx context.Context, p model.Principal, id int64) error {
	_, err := o.authorizeRow(ctx, p, id)
	return err
}

// authorizeRow checks existence first, then permission, and returns the
// row's current table number.
func (o *Orders) authorizeRow(ctx context.Context, p model.Principal, id int64) (int64, error) {
	table, ok, err := o.rows.GetTableNumber(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("look up row %d: %w", id, err)
	}
	if !ok {
		return 0, fmt.Errorf("row %d: %w", id, repository.ErrRowNotFound)
	}
	if err := o.mediator.MutateRowByTable(p, table).Err(); err != nil {
		return 0, fmt.Errorf("row %d: %w", id, err)
	}
	return table, nil
}

// publish is best effort: a broker outage never fails a completed write.
func (o *Orders) publish(ctx context.Context, p model.Principal, ev queue.OrderEvent) {
	ev.Actor = p.Username
	ev.Role = string(p.Role)
	ev.OccurredAt = o.now().UTC().Format(time.RFC3339)
	if err := o.events.Publish(ctx, ev); err != nil {
		o.logger.Printf("orders: publish %s failed: %v", ev.Kind, err)
	}
}

func rowEvent(kind string, r model.Row) queue.OrderEvent {
	return queue.OrderEvent{
		Kind:        kind,
		RowID:       r.ID,
		Name:        r.Name,
		Price:       r.Price,
		TableNumber: r.TableNumber,
		Note:        r.Note,
	}
}
