package services

import "errors"

// Error taxonomy shared by the lifecycle services. Handlers map these to HTTP
// status codes; anything not wrapped here is a store failure and surfaces as
// a generic 500 after being logged with context.
var (
	// ErrValidation marks a caller fault; no mutation was attempted.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an entity that is absent or not owned by the
	// caller's organization. Cross-tenant misses report the same error so
	// existence never leaks across tenants.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a recoverable state conflict, e.g. a duplicate
	// subscription or a no-op status transition.
	ErrConflict = errors.New("conflict")
)
