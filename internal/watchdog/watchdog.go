package watchdog

import (
	"errors"
	"time"
)

// LongTimeout is the "effectively disabled" timeout used on halt paths.
const LongTimeout = 24 * time.Hour

// ErrWatchdog wraps failures talking to the watchdog.
var ErrWatchdog = errors.New("watchdog: operation failed")

// Watchdog is a timer that resets the device unless fed.
type Watchdog interface {
	// Arm (re)starts the timer with timeout. It may be called repeatedly.
	Arm(timeout time.Duration) error

	// Feed restarts the countdown with the current timeout.
	Feed() error

	// State reports the effective configuration, which may be lower than
	// the requested timeout when the hardware clamps it.
	State() State
}

// State is the last armed configuration.
type State struct {
	Armed   bool
	Timeout time.Duration
}
