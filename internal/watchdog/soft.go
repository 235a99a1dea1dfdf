package watchdog

import (
	"fmt"
	"sync"
	"time"
)

// Soft is an in-process watchdog backed by a timer.
//
// When the timer expires, onExpire runs on the timer's goroutine. It is
// expected to restart the process or device.
type Soft struct {
	mu       sync.Mutex
	timer    *time.Timer
	state    State
	onExpire func()
}

// NewSoft creates an unarmed software watchdog.
func NewSoft(onExpire func()) *Soft {
	return &Soft{onExpire: onExpire}
}

// Arm starts or restarts the timer with timeout.
func (s *Soft) Arm(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout %v", ErrWatchdog, timeout)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{Armed: true, Timeout: timeout}
	if s.timer == nil {
		s.timer = time.AfterFunc(timeout, s.expire)
		return nil
	}
	s.timer.Reset(timeout)
	return nil
}

// Feed restarts the countdown.
func (s *Soft) Feed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Armed {
		return fmt.Errorf("%w: feed before arm", ErrWatchdog)
	}
	s.timer.Reset(s.state.Timeout)
	return nil
}

// State returns the current configuration.
func (s *Soft) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Soft) expire() {
	if s.onExpire != nil {
		s.onExpire()
	}
}
