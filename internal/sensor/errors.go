package sensor

import "errors"

var (
	// ErrUnresolved is returned by Open when the configured kind is unknown
	// or its device cannot be found. It is a fatal configuration error.
	ErrUnresolved = errors.New("sensor: no driver resolved")

	// ErrReadFailed is returned when a reading cannot be taken.
	ErrReadFailed = errors.New("sensor: read failed")

	// ErrOutOfRange is returned when a reading is outside the sensor's
	// physical range. It always accompanies ErrReadFailed.
	ErrOutOfRange = errors.New("sensor: value out of range")
)

// outOfRange wraps both sentinels so either can be matched with errors.Is.
type outOfRange struct {
	msg string
}

func (e *outOfRange) Error() string { return "sensor: value out of range: " + e.msg }

func (e *outOfRange) Is(target error) bool {
	return target == ErrReadFailed || target == ErrOutOfRange
}
