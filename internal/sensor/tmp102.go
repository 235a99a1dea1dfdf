package sensor

import (
	"fmt"
	"io"

	"periph.io/x/periph/conn/i2c"
)

// TMP102 bus constants.
const (
	tmp102Addr    = 0x48
	tmp102RegTemp = 0x00

	// tmp102Resolution is degrees Celsius per LSB of the 12-bit result.
	tmp102Resolution = 0.0625
)

// TMP102 reads a Texas Instruments TMP102 over I2C.
type TMP102 struct {
	dev    *i2c.Dev
	closer io.Closer
}

// NewTMP102 attaches to the sensor on bus and takes a probe reading.
// closer, if non-nil, is closed by Close.
func NewTMP102(bus i2c.Bus, closer io.Closer) (*TMP102, error) {
	t := &TMP102{
		dev:    &i2c.Dev{Bus: bus, Addr: tmp102Addr},
		closer: closer,
	}
	if _, err := t.Read(); err != nil {
		return nil, fmt.Errorf("%w: no TMP102 at 0x%02x: %w", ErrUnresolved, tmp102Addr, err)
	}
	return t, nil
}

// Read returns the temperature in degrees Fahrenheit.
func (t *TMP102) Read() (Reading, error) {
	var buf [2]byte
	if err := t.dev.Tx([]byte{tmp102RegTemp}, buf[:]); err != nil {
		return Reading{}, fmt.Errorf("%w: tmp102: %w", ErrReadFailed, err)
	}
	return newReading(KindTMP102, celsiusToFahrenheit(decodeTMP102(buf))), nil
}

// decodeTMP102 converts the temperature register to degrees Celsius.
// The register holds a left-justified 12-bit two's complement value.
func decodeTMP102(b [2]byte) float64 {
	raw := int16(uint16(b[0])<<8|uint16(b[1])) >> 4
	return float64(raw) * tmp102Resolution
}

// Kind returns KindTMP102.
func (t *TMP102) Kind() Kind { return KindTMP102 }

// Name returns the sensor description.
func (t *TMP102) Name() string { return "SparkFun TMP102 Temperature" }

// Close releases the I2C bus.
func (t *TMP102) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}
