package coordinator

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailed marks a refresh cycle or control write that could not
	// authenticate. The coordinator keeps running and retries on the next
	// scheduled tick.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited marks a call refused by rate-limit admission. It is a
	// soft skip, not a failure.
	ErrRateLimited = errors.New("rate limit reached")

	// errUnavailable marks an optional endpoint answering 400/403; the
	// source is stored empty and the condition is not treated as an error.
	errUnavailable = errors.New("endpoint not available")
)

// ComponentNotFoundError reports a control write against a component that is
// absent from the last-fetched component map.
type ComponentNotFoundError struct {
	DeviceID    string
	ComponentID string
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component %s not found on device %s", e.ComponentID, e.DeviceID)
}
