package model

import "errors"

// ErrValidation marks a malformed payload or an entity that breaks one of
// its invariants.  Handlers translate it into HTTP 400.
var ErrValidation = errors.New("validation error")
