package registry

import "errors"

// Domain-specific errors for registry lookups.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrObjectNotFound is returned when no object is registered under the
	// requested object_id. The dispatcher reports it as UnknownObject.
	ErrObjectNotFound = errors.New("registry: object not found")

	// ErrMethodNotFound is returned when the object exists but has no
	// invokable method of the requested name. Reported as UnknownMethod.
	ErrMethodNotFound = errors.New("registry: method not found")

	// ErrAlreadyRegistered is returned when an object_id is registered twice.
	ErrAlreadyRegistered = errors.New("registry: object already registered")
)
