package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/rinatiamaev/salesFactoryNew/internal/model"
	"github.com/rinatiamaev/salesFactoryNew/internal/utils"
)

// Account is one entry of a static registry.  Password is plain text on
// input and hashed by NewStaticProvider.
type Account struct {
	Principal model.Principal
	Password  string
}

// DefaultAccounts is the demo registry the frontend ships with.
func DefaultAccounts() []Account {
	return []Account{
		{Principal: model.NewOwner("admin"), Password: "admin"},
		{Principal: model.NewClient("client1", 1), Password: "123"},
	}
}

type staticEntry struct {
	principal model.Principal
	hash      string
}

// StaticProvider serves a fixed registry built once at startup.  It is
// read-only afterwards and needs no locking.
type StaticProvider struct {
	entries map[string]staticEntry
}

// NewStaticProvider validates accounts and hashes their secrets with the
// given bcrypt cost.  Duplicate usernames are rejected.
func NewStaticProvider(accounts []Account, cost int) (*StaticProvider, error) {
	entries := make(map[string]staticEntry, len(accounts))
	for _, a := range accounts {
		if err := a.Principal.Validate(); err != nil {
			return nil, err
		}
		name := a.Principal.Username
		if _, dup := entries[name]; dup {
			return nil, fmt.Errorf("duplicate principal %q", name)
		}
		hash, err := utils.HashPassword(a.Password, cost)
		if err != nil {
			return nil, fmt.Errorf("hash secret for %q: %w", name, err)
		}
		entries[name] = staticEntry{principal: a.Principal, hash: hash}
	}
	return &StaticProvider{entries: entries}, nil
}

func (s *StaticProvider) Resolve(_ context.Context, callerID string) (model.Principal, error) {
	e, ok := s.entries[strings.TrimSpace(callerID)]
	if !ok {
		return model.Principal{}, ErrUnknownPrincipal
	}
	return copyPrincipal(e.principal), nil
}

// Authenticate reports ErrInvalidCredentials for both an unknown username
// and a wrong secret so that logins cannot be used to discover usernames.
func (s *StaticProvider) Authenticate(_ context.Context, username, password string) (model.Principal, error) {
	e, ok := s.entries[strings.TrimSpace(username)]
	if !utils.CheckPassword(e.hash, password) || !ok {
		return model.Principal{}, ErrInvalidCredentials
	}
	return copyPrincipal(e.principal), nil
}

func copyPrincipal(p model.Principal) model.Principal {
	if p.TableNumber != nil {
		n := *p.TableNumber
		p.TableNumber = &n
	}
	return p
}
