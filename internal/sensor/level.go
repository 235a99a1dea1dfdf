package sensor

import "fmt"

// LevelChannel is the ADC channel wired to the eTape divider on the
// reference board. It is not operator-configurable.
const LevelChannel = 4

// levelTolerance is how far past either end of the tape, as a fraction of
// its length, a reading may fall before it is rejected.
const levelTolerance = 0.1

// LevelConfig describes the divider output at both ends of the tape.
type LevelConfig struct {
	EmptyRaw     int
	FullRaw      int
	LengthInches float64
}

// Level reads a Milone eTape liquid level sensor.
type Level struct {
	adc AnalogReader
	cfg LevelConfig
}

// NewLevel creates a level sensor on LevelChannel.
func NewLevel(adc AnalogReader, cfg LevelConfig) *Level {
	return &Level{adc: adc, cfg: cfg}
}

// Read returns the liquid level in inches.
func (l *Level) Read() (Reading, error) {
	raw, err := l.adc.ReadRaw(LevelChannel)
	if err != nil {
		return Reading{}, err
	}

	inches := float64(raw-l.cfg.EmptyRaw) * l.cfg.LengthInches / float64(l.cfg.FullRaw-l.cfg.EmptyRaw)

	slack := l.cfg.LengthInches * levelTolerance
	if inches < -slack || inches > l.cfg.LengthInches+slack {
		return Reading{}, &outOfRange{msg: fmt.Sprintf("level %.1f in (raw %d)", inches, raw)}
	}
	return newReading(KindLevel, inches), nil
}

// Kind returns KindLevel.
func (l *Level) Kind() Kind { return KindLevel }

// Name returns the sensor description.
func (l *Level) Name() string { return "Milone eTape Water Level" }

// Close is a no-op.
func (l *Level) Close() error { return nil }
