package models

import (
	"errors"
	"fmt"
)

// ErrExternalIDConflict is returned by the user repository when an
// insert loses a race on a provider-ID unique constraint. The caller
// re-reads the winning row instead of failing the login.
var ErrExternalIDConflict = errors.New("external provider ID already linked")

// DuplicateEmailError is returned when a new login presents an email
// that already belongs to a user linked to a different provider.
// Accounts are not merged on email equality; the login fails.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email %q is already registered", e.Email)
}
