package status

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// LED drives a success and a failure LED on GPIO pins.
//
// After each cycle exactly one LED is lit. Either pin may be absent.
type LED struct {
	success gpio.PinOut
	failure gpio.PinOut
	log     Logger
}

// OpenLED looks up the named pins through periph's GPIO registry.
// An empty name leaves that LED unused.
func OpenLED(successPin, failurePin string, log Logger) (*LED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialising host drivers: %w", err)
	}

	l := &LED{log: log}
	var err error
	if l.success, err = lookup(successPin); err != nil {
		return nil, err
	}
	if l.failure, err = lookup(failurePin); err != nil {
		return nil, err
	}
	return l, nil
}

// NewLED creates an indicator on already opened pins. Either may be nil.
func NewLED(success, failure gpio.PinOut, log Logger) *LED {
	return &LED{success: success, failure: failure, log: log}
}

func lookup(name string) (gpio.PinOut, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	return p, nil
}

// SignalSuccess lights the success LED.
func (l *LED) SignalSuccess() { l.set(gpio.High, gpio.Low) }

// SignalFailure lights the failure LED.
func (l *LED) SignalFailure() { l.set(gpio.Low, gpio.High) }

func (l *LED) set(success, failure gpio.Level) {
	l.drive(l.success, success)
	l.drive(l.failure, failure)
}

func (l *LED) drive(p gpio.PinOut, level gpio.Level) {
	if p == nil {
		return
	}
	if err := p.Out(level); err != nil && l.log != nil {
		l.log.Warn("status led write failed", "pin", p.Name(), "error", err)
	}
}
