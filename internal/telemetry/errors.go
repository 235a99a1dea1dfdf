package telemetry

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected is wrapped by outcomes where the server answered with a
	// status other than 204.
	ErrRejected = errors.New("telemetry: write rejected")

	// ErrNetwork is wrapped by outcomes where no HTTP status was received.
	ErrNetwork = errors.New("telemetry: network failure")

	// ErrQueryFailed is returned when a database management query fails.
	ErrQueryFailed = errors.New("telemetry: query failed")
)

// statusError reports a 2xx status that is not the one the endpoint promises.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}
