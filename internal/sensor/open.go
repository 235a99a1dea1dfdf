package sensor

import (
	"fmt"

	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"

	"github.com/nerrad567/gray-logic-sensor/internal/settings"
)

// Hardware holds the per-image wiring for the sensor drivers.
type Hardware struct {
	// I2CBus is the periph bus name. Empty selects the first bus.
	I2CBus string

	// IIODir is the IIO ADC device directory.
	IIODir string

	// IIORoot is scanned for dht11 devices.
	IIORoot string

	ADCMax  int
	ADCVref float64
	Level   LevelConfig
}

// Open resolves the driver for kind and probes its device.
//
// Parameters:
//   - kind: Sensor kind, normalised by ParseKind
//   - hw: Board wiring
//   - sc: Operator sensor settings (pin, calibration)
//
// Returns:
//   - Sensor: The probed driver
//   - error: Wrapping ErrUnresolved when kind is unknown or the device is absent
func Open(k Kind, hw Hardware, sc settings.SensorConfig) (Sensor, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: unknown sensor kind %q", ErrUnresolved, k)
	}

	switch k {
	case KindLevel:
		adc, err := openADC(hw, LevelChannel)
		if err != nil {
			return nil, err
		}
		return NewLevel(adc, hw.Level), nil

	case KindTMP36:
		adc, err := openADC(hw, sc.Pin)
		if err != nil {
			return nil, err
		}
		return NewTMP36(adc, sc.Pin, hw.ADCMax, hw.ADCVref, sc.Calibration), nil

	case KindTMP102:
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("%w: initialising host drivers: %w", ErrUnresolved, err)
		}
		bus, err := i2creg.Open(hw.I2CBus)
		if err != nil {
			return nil, fmt.Errorf("%w: opening i2c bus %q: %w", ErrUnresolved, hw.I2CBus, err)
		}
		t, err := NewTMP102(bus, bus)
		if err != nil {
			bus.Close() //nolint:errcheck // Best effort cleanup on error path
			return nil, err
		}
		return t, nil

	case KindDHT22:
		d, err := NewDHT22(hw.IIORoot, sc.Pin)
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnresolved, k)
}

func openADC(hw Hardware, channel int) (*IIOADC, error) {
	adc, err := NewIIOADC(hw.IIODir, hw.ADCMax)
	if err != nil {
		return nil, err
	}
	if err := adc.Probe(channel); err != nil {
		return nil, err
	}
	return adc, nil
}
