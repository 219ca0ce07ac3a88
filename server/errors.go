package server

import (
	"errors"
	"fmt"
)

// AuthorizationError is attached to the gin context when a validator
// rejects a request.
type AuthorizationError struct {
	// Alias is the header, form field or body key that was checked
	Alias  string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization failed for %q: %s", e.Alias, e.Reason)
}

// IsAuthorizationError checks if the error is an AuthorizationError.
func IsAuthorizationError(err error) bool {
	var e *AuthorizationError
	return errors.As(err, &e)
}
