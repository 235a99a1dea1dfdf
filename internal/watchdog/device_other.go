//go:build !linux

package watchdog

import (
	"fmt"
	"time"
)

// Device is unavailable off Linux.
type Device struct{}

// OpenDevice always fails off Linux.
func OpenDevice(path string) (*Device, error) {
	return nil, fmt.Errorf("%w: %s: hardware watchdog requires linux", ErrWatchdog, path)
}

// Arm is never reached.
func (d *Device) Arm(time.Duration) error { return ErrWatchdog }

// Feed is never reached.
func (d *Device) Feed() error { return ErrWatchdog }

// State is never reached.
func (d *Device) State() State { return State{} }
