package supervisor

import "fmt"

// State is a supervisor state.
type State int

// Supervisor states. The last three are terminal.
const (
	Bootstrapping State = iota
	SteadyCycle
	ResetRequested
	FatalHalt
	InterruptedHalt
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case Bootstrapping:
		return "bootstrapping"
	case SteadyCycle:
		return "steady_cycle"
	case ResetRequested:
		return "reset_requested"
	case FatalHalt:
		return "fatal_halt"
	case InterruptedHalt:
		return "interrupted_halt"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Process exit codes for the halt states.
const (
	ExitCodeInterrupted = 0
	ExitCodeFatal       = 1
)

// Exit is the terminal result of Run.
type Exit struct {
	// State is ResetRequested, FatalHalt, or InterruptedHalt.
	State State

	// Code is the process exit code for halts. It is unused for
	// ResetRequested, where the restarter decides.
	Code int

	// Err is the cause of a FatalHalt or ResetRequested.
	Err error
}
