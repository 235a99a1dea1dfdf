package sensor

import (
	"fmt"

	"github.com/nerrad567/gray-logic-sensor/internal/settings"
)

// TMP36 datasheet constants.
const (
	tmp36OffsetVolts  = 0.5
	tmp36DegPerVolt   = 100.0
	tmp36MinCelsius   = -40.0
	tmp36MaxCelsius   = 125.0
	tmp36RangeMarginC = 10.0
)

// TMP36 reads an Analog Devices TMP36 on an ADC channel.
type TMP36 struct {
	adc     AnalogReader
	channel int
	adcMax  int
	vref    float64
	cal     *settings.Calibration
}

// NewTMP36 creates a TMP36 sensor. cal may be nil for a nominal conversion.
func NewTMP36(adc AnalogReader, channel, adcMax int, vref float64, cal *settings.Calibration) *TMP36 {
	return &TMP36{adc: adc, channel: channel, adcMax: adcMax, vref: vref, cal: cal}
}

// Read returns the temperature in degrees Fahrenheit.
//
// With calibration the raw count is mapped linearly onto the calibration's
// temperature range, which is taken to be in Fahrenheit. Without it the
// datasheet transfer function is used.
func (t *TMP36) Read() (Reading, error) {
	raw, err := t.adc.ReadRaw(t.channel)
	if err != nil {
		return Reading{}, err
	}

	if t.cal != nil {
		return newReading(KindTMP36, t.cal.Apply(raw)), nil
	}

	volts := float64(raw) / float64(t.adcMax) * t.vref
	celsius := (volts - tmp36OffsetVolts) * tmp36DegPerVolt
	if celsius < tmp36MinCelsius-tmp36RangeMarginC || celsius > tmp36MaxCelsius+tmp36RangeMarginC {
		return Reading{}, &outOfRange{msg: fmt.Sprintf("tmp36 %.1f C (raw %d)", celsius, raw)}
	}
	return newReading(KindTMP36, celsiusToFahrenheit(celsius)), nil
}

// Kind returns KindTMP36.
func (t *TMP36) Kind() Kind { return KindTMP36 }

// Name returns the sensor description.
func (t *TMP36) Name() string {
	if t.cal != nil {
		return "Analog Devices TMP36 Temperature (calibrated)"
	}
	return "Analog Devices TMP36 Temperature"
}

// Close is a no-op.
func (t *TMP36) Close() error { return nil }
