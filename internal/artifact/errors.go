package artifact

import "errors"

var (
	// ErrAdapterNotFound is returned when no adapter serves a kind.
	ErrAdapterNotFound = errors.New("artifact: adapter not found")

	// ErrAdapterRegistered is returned when a kind is registered twice.
	ErrAdapterRegistered = errors.New("artifact: adapter already registered")
)
