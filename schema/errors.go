package schema

import "errors"

var (
	// ErrNoDefaultProfile indicates no default profile has been
	// resolved yet; await readiness before querying.
	ErrNoDefaultProfile = errors.New("no default profile resolved")
	// ErrProviderNotFound indicates no profile provider is registered
	// under the requested extension/provider pair.
	ErrProviderNotFound = errors.New("profile provider not found")
	// ErrInvalidProfileTitle indicates an empty or malformed profile title.
	ErrInvalidProfileTitle = errors.New("invalid profile title")
	// ErrInvalidExtension indicates an empty extension identifier.
	ErrInvalidExtension = errors.New("invalid extension identifier")
	// ErrInvalidProvider indicates an empty provider identifier.
	ErrInvalidProvider = errors.New("invalid provider identifier")
)
