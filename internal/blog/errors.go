package blog

import "errors"

// Domain errors. Callers match them with errors.Is; most are returned
// wrapped with detail.
var (
	// ErrUnauthenticated means the operation needs a signed-in user
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the user may not act on the resource
	ErrForbidden = errors.New("permission denied")
	// ErrNotFound means a referenced row does not exist
	ErrNotFound = errors.New("not found")
	// ErrValidation means the input was rejected before touching storage
	ErrValidation = errors.New("validation failed")
	// ErrConflict means a uniqueness rule was violated, e.g. a taken username
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials means the username or password is wrong
	ErrInvalidCredentials = errors.New("invalid username or password")
)
