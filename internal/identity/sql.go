package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/rinatiamaev/salesFactoryNew/internal/model"
	"github.com/rinatiamaev/salesFactoryNew/internal/repository"
	"github.com/rinatiamaev/salesFactoryNew/internal/utils"
)

// PrincipalStore is the lookup SQLProvider needs.  *repository.PrincipalRepo
// satisfies it.
type PrincipalStore interface {
	GetByUsername(ctx context.Context, username string) (repository.PrincipalRecord, error)
}

// SQLProvider resolves principals from the principals table.
type SQLProvider struct {
	store PrincipalStore
}

func NewSQLProvider(store PrincipalStore) *SQLProvider {
	return &SQLProvider{store: store}
}

func (p *SQLProvider) Resolve(ctx context.Context, callerID string) (model.Principal, error) {
	rec, err := p.store.GetByUsername(ctx, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrPrincipalNotFound) {
			return model.Principal{}, ErrUnknownPrincipal
		}
		return model.Principal{}, err
	}
	return rec.Principal()
}

func (p *SQLProvider) Authenticate(ctx context.Context, username, password string) (model.Principal, error) {
	rec, err := p.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrPrincipalNotFound) {
			utils.CheckPassword("", password)
			return model.Principal{}, ErrInvalidCredentials
		}
		return model.Principal{}, err
	}
	if !utils.CheckPassword(rec.PasswordHash, password) {
		return model.Principal{}, ErrInvalidCredentials
	}
	return rec.Principal()
}

// PrincipalWriter inserts principals.  *repository.PrincipalRepo
// satisfies it.
type PrincipalWriter interface {
	Create(ctx context.Context, p model.Principal, password string, cost int) error
}

// Seed inserts accounts that are not registered yet and returns how many
// were added.  Existing usernames are left untouched, so seeding on every
// start is safe.
func Seed(ctx context.Context, w PrincipalWriter, accounts []Account, cost int) (int, error) {
	added := 0
	for _, a := range accounts {
		err := w.Create(ctx, a.Principal, a.Password, cost)
		switch {
		case err == nil:
			added++
		case errors.Is(err, repository.ErrConflict):
		default:
			return added, fmt.Errorf("seed %q: %w", a.Principal.Username, err)
		}
	}
	return added, nil
}
