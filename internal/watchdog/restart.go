package watchdog

import (
	"fmt"
	"os"
)

// Reset modes.
const (
	ModeExit   = "exit"
	ModeReboot = "reboot"
)

// Restarter carries out a requested device reset. Restart does not return
// on success.
type Restarter interface {
	Restart() error
}

// ExitRestarter exits the process with a code the service manager treats
// as "restart me".
type ExitRestarter struct {
	Code int
	exit func(int)
}

// NewExitRestarter creates an ExitRestarter using os.Exit.
func NewExitRestarter(code int) *ExitRestarter {
	return &ExitRestarter{Code: code, exit: os.Exit}
}

// Restart exits the process.
func (r *ExitRestarter) Restart() error {
	r.exit(r.Code)
	return nil
}

// RebootRestarter syncs filesystems and reboots the machine.
type RebootRestarter struct {
	reboot func() error
}

// NewRebootRestarter creates a restarter that reboots through the kernel.
func NewRebootRestarter() *RebootRestarter {
	return &RebootRestarter{reboot: reboot}
}

// Restart reboots. It returns only on failure.
func (r *RebootRestarter) Restart() error {
	if err := r.reboot(); err != nil {
		return fmt.Errorf("rebooting: %w", err)
	}
	return nil
}

// NewRestarter returns the restarter for mode.
func NewRestarter(mode string, exitCode int) (Restarter, error) {
	switch mode {
	case ModeExit:
		return NewExitRestarter(exitCode), nil
	case ModeReboot:
		return NewRebootRestarter(), nil
	default:
		return nil, fmt.Errorf("unknown reset mode %q", mode)
	}
}
