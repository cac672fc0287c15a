package model

import (
	"fmt"
	"math"
	"strings"
)

// Row is one order line-item (a dish) placed at a table.
//
// Fields:
//  ID          – primary key, assigned on creation, never reused.
//  Name        – dish name, non-empty.
//  Price       – non-negative price.
//  TableNumber – id of the table the row belongs to.
//  Note        – optional free text for the kitchen.
type Row struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	TableNumber int64   `json:"table_number"`
	Note        *string `json:"note"`
}

// RowInput carries the caller-supplied fields of a create or update.
type RowInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	TableNumber int64   `json:"table_number"`
	Note        *string `json:"note"`
}

// RowPayload is the wire form of a create or update body.  Pointers tell
// a missing field apart from a zero value.
type RowPayload struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	TableNumber *int64   `json:"table_number"`
	Note        *string  `json:"note"`
}

// Input converts the payload, rejecting a missing name or price.  A
// missing table_number becomes 0, which Validate refuses unless the
// caller's table is substituted first.
func (p RowPayload) Input() (RowInput, error) {
	if p.Name == nil {
		return RowInput{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.Price == nil {
		return RowInput{}, fmt.Errorf("%w: price is required", ErrValidation)
	}
	in := RowInput{Name: *p.Name, Price: *p.Price, Note: p.Note}
	if p.TableNumber != nil {
		in.TableNumber = *p.TableNumber
	}
	return in, nil
}

// Normalize trims the name and drops a blank note.
func (in RowInput) Normalize() RowInput {
	in.Name = strings.TrimSpace(in.Name)
	if in.Note != nil && strings.TrimSpace(*in.Note) == "" {
		in.Note = nil
	}
	return in
}

// Validate rejects an empty name, a negative or non-finite price and a
// table_number that cannot be a table id.
func (in RowInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.TableNumber < 1 {
		return fmt.Errorf("%w: table_number must be a table id (>= 1)", ErrValidation)
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return fmt.Errorf("%w: price must be a finite number", ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}
