package model

import "fmt"

// TableStatus is the occupancy state of a physical table.
type TableStatus string

const (
	TableFree     TableStatus = "free"
	TableOccupied TableStatus = "occupied"
)

// Table is one seating unit in the layout registry.  RowIndex and ColIndex
// are grid coordinates only and have nothing to do with order rows.  The
// table's ID is the number order rows refer to as table_number.
//
// Fields:
//  ID       – primary key and table number.
//  RowIndex – layout row coordinate.
//  ColIndex – layout column coordinate.
//  Status   – free or occupied.
//  Owner    – username occupying the table; nil while free.
type Table struct {
	ID       int64       `json:"id"`
	RowIndex int         `json:"row_index"`
	ColIndex int         `json:"col_index"`
	Status   TableStatus `json:"status"`
	Owner    *string     `json:"owner"`
}

// TableInput is the payload of a table creation.
type TableInput struct {
	RowIndex int `json:"row_index"`
	ColIndex int `json:"col_index"`
}

// Validate rejects negative layout coordinates.
func (in TableInput) Validate() error {
	if in.RowIndex < 0 || in.ColIndex < 0 {
		return fmt.Errorf("%w: row_index and col_index must not be negative", ErrValidation)
	}
	return nil
}

// Validate checks that status and owner agree: free has no owner and
// occupied has one.
func (t Table) Validate() error {
	switch t.Status {
	case TableFree:
		if t.Owner != nil {
			return fmt.Errorf("%w: free table %d has an owner", ErrValidation, t.ID)
		}
	case TableOccupied:
		if t.Owner == nil {
			return fmt.Errorf("%w: occupied table %d has no owner", ErrValidation, t.ID)
		}
	default:
		return fmt.Errorf("%w: unknown table status %q", ErrValidation, t.Status)
	}
	return nil
}
