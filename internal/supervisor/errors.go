package supervisor

import "errors"

// ErrCyclePanic wraps a panic recovered from a cycle.
var ErrCyclePanic = errors.New("supervisor: cycle panicked")
