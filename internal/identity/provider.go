// Package identity turns a raw caller identifier into a model.Principal.
// It is the only component that looks at credentials.  Implementations
// are swappable behind Provider: a fixed in-process registry, a SQL table,
// or a Redis-cached wrapper around either.
package identity

import (
	"context"
	"errors"

	"github.com/rinatiamaev/salesFactoryNew/internal/model"
)

// ErrUnknownPrincipal is returned when the identifier is not registered.
var ErrUnknownPrincipal = errors.New("unknown principal")

// ErrInvalidCredentials is returned when a username and secret do not
// match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Provider resolves callers.  Implementations must be safe for concurrent
// use and must only ever return principals that pass Validate.
type Provider interface {
	// Resolve maps a caller identifier (a username) to its principal.
	Resolve(ctx context.Context, callerID string) (model.Principal, error)
	// Authenticate checks a username and secret pair.
	Authenticate(ctx context.Context, username, password string) (model.Principal, error)
}

var (
	_ Provider = (*StaticProvider)(nil)
	_ Provider = (*SQLProvider)(nil)
	_ Provider = (*CachedProvider)(nil)
)
