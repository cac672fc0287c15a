// Package queue defines message payloads exchanged over the message broker.
package queue

// OrdersQueueName is the durable queue order events are published to.
const OrdersQueueName = "orders.events"

// Event kinds.
const (
	RowCreated   = "row.created"
	RowUpdated   = "row.updated"
	RowDeleted   = "row.deleted"
	TableCreated = "table.created"
)

// OrderEvent is published after a row or table write succeeds.  It carries
// enough for the kitchen log to be written without querying the database.
type OrderEvent struct {
	Kind        string  `json:"kind"`
	Actor       string  `json:"actor"`
	Role        string  `json:"role"`
	RowID       int64   `json:"row_id,omitempty"`
	Name        string  `json:"name,omitempty"`
	Price       float64 `json:"price,omitempty"`
	TableNumber int64   `json:"table_number,omitempty"`
	Note        *string `json:"note,omitempty"`
	TableID     int64   `json:"table_id,omitempty"`
	Position    []int   `json:"position,omitempty"`
	OccurredAt  string  `json:"occurred_at"`
}
