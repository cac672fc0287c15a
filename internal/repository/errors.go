// Package repository persists order rows, tables and principals.  Each
// store comes as an interface with a MySQL implementation and an
// in-memory one.  The sentinel errors below let higher layers tell a
// missing record apart from a storage failure.
package repository

import "errors"

// ErrRowNotFound is returned when no order row has the requested id.
// Handlers translate it into HTTP 404.
var ErrRowNotFound = errors.New("row not found")

// ErrPrincipalNotFound is returned when a principal lookup yields no rows.
var ErrPrincipalNotFound = errors.New("principal not found")

// ErrConflict is returned when an insert collides with an existing record,
// such as a second principal with the same username.
var ErrConflict = errors.New("conflict")
