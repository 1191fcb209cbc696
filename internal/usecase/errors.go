package usecase

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record does not exist or is owned by
// another user. The two cases are deliberately indistinguishable so
// ownership checks fail closed without leaking existence.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or malformed field on a save
// request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
