package sensor

import (
	"fmt"
	"strings"
)

// Kind identifies a sensor driver.
type Kind string

// Supported sensor kinds.
const (
	KindLevel  Kind = "level"
	KindTMP36  Kind = "tmp36"
	KindTMP102 Kind = "tmp102"
	KindDHT22  Kind = "dht22"
)

// Field names reported by the drivers.
const (
	FieldInches     = "inches"
	FieldFahrenheit = "fahrenheit"
	FieldHumidity   = "humidity"
)

// fieldSets is the fixed field order per kind.
var fieldSets = map[Kind][]string{
	KindLevel:  {FieldInches},
	KindTMP36:  {FieldFahrenheit},
	KindTMP102: {FieldFahrenheit},
	KindDHT22:  {FieldFahrenheit, FieldHumidity},
}

// Fields returns the field names k reports, in wire order.
// It returns nil for an unknown kind.
func (k Kind) Fields() []string {
	return append([]string(nil), fieldSets[k]...)
}

// Valid reports whether k names a supported driver.
func (k Kind) Valid() bool {
	_, ok := fieldSets[k]
	return ok
}

// Calibrated reports whether k takes an operator ADC calibration.
func (k Kind) Calibrated() bool {
	return k == KindTMP36
}

// ParseKind normalises a configured kind string.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown sensor kind %q", ErrUnresolved, s)
	}
	return k, nil
}

// Field is one named measurement.
type Field struct {
	Name  string
	Value float64
}

// Reading is one sample from a sensor. Fields are in the kind's declared order.
type Reading struct {
	Kind   Kind
	Fields []Field
}

// newReading builds a Reading for k from values given in field order.
func newReading(k Kind, values ...float64) Reading {
	names := fieldSets[k]
	r := Reading{Kind: k, Fields: make([]Field, len(names))}
	for i, name := range names {
		r.Fields[i] = Field{Name: name, Value: values[i]}
	}
	return r
}

// Sensor is the capability every driver provides.
type Sensor interface {
	// Read takes one sample. It never sleeps or retries.
	Read() (Reading, error)

	// Kind returns the driver kind.
	Kind() Kind

	// Name returns a human-readable description for logs.
	Name() string

	// Close releases the underlying device.
	Close() error
}

// celsiusToFahrenheit converts a temperature.
func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}
