//go:build linux

package watchdog

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Device drives a Linux watchdog character device.
//
// Opening the device starts the timer. The magic close character is never
// written, so closing or crashing leaves the timer running.
type Device struct {
	mu    sync.Mutex
	f     *os.File
	path  string
	state State
}

// OpenDevice opens the watchdog at path, for example /dev/watchdog.
func OpenDevice(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrWatchdog, path, err)
	}
	return &Device{f: f, path: path}, nil
}

// Arm sets the driver timeout and feeds once.
//
// A timeout beyond the driver's range is lowered to the largest value the
// driver accepts. The effective value is returned by State.
func (d *Device) Arm(timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	secs := int(timeout / time.Second)
	if secs <= 0 {
		return fmt.Errorf("%w: timeout %v", ErrWatchdog, timeout)
	}

	fd := int(d.f.Fd())
	accepted, err := setTimeoutClamped(secs, readMaxTimeout(sysfsClassDir, d.path), func(n int) error {
		return unix.IoctlSetPointerInt(fd, unix.WDIOC_SETTIMEOUT, n)
	})
	if err != nil {
		return fmt.Errorf("%w: set timeout %ds: %w", ErrWatchdog, secs, err)
	}

	effective := time.Duration(accepted) * time.Second
	if got, err := unix.IoctlGetInt(fd, unix.WDIOC_GETTIMEOUT); err == nil {
		effective = time.Duration(got) * time.Second
	}
	d.state = State{Armed: true, Timeout: effective}

	if err := unix.IoctlWatchdogKeepalive(fd); err != nil {
		return fmt.Errorf("%w: keepalive: %w", ErrWatchdog, err)
	}
	return nil
}

// Feed pings the watchdog.
func (d *Device) Feed() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := unix.IoctlWatchdogKeepalive(int(d.f.Fd())); err != nil {
		return fmt.Errorf("%w: keepalive: %w", ErrWatchdog, err)
	}
	return nil
}

// State returns the effective timeout after the last Arm.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}
