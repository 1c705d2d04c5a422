package gateway

import "fmt"

var (
	// ErrNotFound is a normal outcome of a registry lookup, distinct from a
	// store failure.
	ErrNotFound = fmt.Errorf("not found")

	// ErrUnauthorized means the terminal is unknown, inactive, or not
	// authorized. Surfaced to the HTTP boundary as 401.
	ErrUnauthorized = fmt.Errorf("equipment not authorized")

	// ErrDeviceUnavailable means a terminal passed the authorization check
	// but its record vanished before headers could be derived.
	ErrDeviceUnavailable = fmt.Errorf("equipment unavailable")
)
