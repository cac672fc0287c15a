package utils

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordCost is returned for a bcrypt cost outside bcrypt's range.
var ErrPasswordCost = errors.New("bcrypt cost out of range")

// HashPassword hashes plain with bcrypt at cost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("%w: %d", ErrPasswordCost, cost)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches hash.  An empty hash means
// the account does not exist; plain is still compared against a fixed
// hash so the call takes as long as a wrong password.
func CheckPassword(hash, plain string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(unknownAccountHash(), []byte(plain))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var unknownAccountHash = sync.OnceValue(func() []byte {
	b, err := bcrypt.GenerateFromPassword([]byte("no such account"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return b
})
