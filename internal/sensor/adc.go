package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AnalogReader returns raw conversions from an ADC channel.
type AnalogReader interface {
	ReadRaw(channel int) (int, error)
}

// IIOADC reads an ADC exposed by the Linux industrial I/O subsystem.
type IIOADC struct {
	dir       string
	fullScale int
}

// NewIIOADC opens the IIO device at dir. fullScale is the largest raw count.
func NewIIOADC(dir string, fullScale int) (*IIOADC, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: adc %s: %w", ErrUnresolved, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: adc %s is not a directory", ErrUnresolved, dir)
	}
	return &IIOADC{dir: dir, fullScale: fullScale}, nil
}

// channelPath returns the sysfs attribute for channel.
func (a *IIOADC) channelPath(channel int) string {
	return filepath.Join(a.dir, fmt.Sprintf("in_voltage%d_raw", channel))
}

// Probe checks that channel exists.
func (a *IIOADC) Probe(channel int) error {
	if _, err := os.Stat(a.channelPath(channel)); err != nil {
		return fmt.Errorf("%w: adc channel %d: %w", ErrUnresolved, channel, err)
	}
	return nil
}

// ReadRaw returns the raw conversion for channel.
func (a *IIOADC) ReadRaw(channel int) (int, error) {
	data, err := os.ReadFile(a.channelPath(channel))
	if err != nil {
		return 0, fmt.Errorf("%w: adc channel %d: %w", ErrReadFailed, channel, err)
	}
	raw, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: adc channel %d: %w", ErrReadFailed, channel, err)
	}
	if raw < 0 || raw > a.fullScale {
		return 0, &outOfRange{msg: fmt.Sprintf("adc channel %d raw %d outside 0..%d", channel, raw, a.fullScale)}
	}
	return raw, nil
}
