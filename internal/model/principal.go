package model

import (
	"fmt"
	"strings"
)

// Role names the capability set of a caller.  Owners see and manage
// everything; clients are scoped to the single table they sit at.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleClient Role = "client"
)

// ParseRole normalizes a stored or transmitted role name.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleOwner:
		return RoleOwner, nil
	case RoleClient:
		return RoleClient, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

// Principal is the resolved identity of an API caller for one request.
// It is built by an identity provider and never persisted.
//
// Fields:
//  Username    – unique login name.
//  Role        – owner or client.
//  TableNumber – the table a client is scoped to; always nil for owners.
type Principal struct {
	Username    string
	Role        Role
	TableNumber *int64
}

// NewOwner returns an owner principal.
func NewOwner(username string) Principal {
	return Principal{Username: username, Role: RoleOwner}
}

// NewClient returns a client principal scoped to table.
func NewClient(username string, table int64) Principal {
	t := table
	return Principal{Username: username, Role: RoleClient, TableNumber: &t}
}

// IsOwner reports whether p carries the owner role.
func (p Principal) IsOwner() bool { return p.Role == RoleOwner }

// Validate checks the role/table invariant: an owner has no table, a
// client has exactly one.
func (p Principal) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return fmt.Errorf("%w: principal username is empty", ErrValidation)
	}
	switch p.Role {
	case RoleOwner:
		if p.TableNumber != nil {
			return fmt.Errorf("%w: owner %q must not be scoped to a table", ErrValidation, p.Username)
		}
	case RoleClient:
		if p.TableNumber == nil {
			return fmt.Errorf("%w: client %q has no table", ErrValidation, p.Username)
		}
	default:
		return fmt.Errorf("%w: unknown role %q", ErrValidation, p.Role)
	}
	return nil
}
