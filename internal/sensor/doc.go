// Package sensor reads the agent's single physical sensor.
//
// Exactly one driver is active per process. It is chosen by the configured
// sensor kind and resolved once at boot by Open, which also probes the
// hardware so that a missing device is reported as ErrUnresolved before the
// watchdog is armed for steady-state operation.
//
// Supported kinds:
//
//	level   Milone eTape liquid level, analog voltage divider  -> inches
//	tmp36   Analog Devices TMP36, analog, optional calibration  -> fahrenheit
//	tmp102  SparkFun TMP102, I2C 0x48                            -> fahrenheit
//	dht22   DHT22 via the Linux IIO dht11 driver                 -> fahrenheit, humidity
//
// Analog sensors are read through an AnalogReader. On Linux this is an IIO
// ADC exposed in sysfs. I2C access goes through periph.
//
// Read failures are never reported as a zero value: they wrap ErrReadFailed,
// and implausible values additionally wrap ErrOutOfRange.
package sensor
