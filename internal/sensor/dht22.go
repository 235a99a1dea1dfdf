package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// dhtDriverName is the IIO device name registered by the kernel driver,
// which serves both DHT11 and DHT22 parts.
const dhtDriverName = "dht11"

// DHT22 limits from the datasheet.
const (
	dhtMinCelsius = -40.0
	dhtMaxCelsius = 80.0
)

// DHT22 reads temperature and humidity through the Linux dht11 IIO driver.
type DHT22 struct {
	dir string
}

// NewDHT22 finds the dht11 IIO device bound to the given GPIO pin under root.
//
// A device matches when its device-tree node is named "<name>@<pin in hex>".
// If no node name matches and exactly one dht11 device exists, that device
// is used.
func NewDHT22(root string, pin int) (*DHT22, error) {
	dir, err := findDHT(root, pin)
	if err != nil {
		return nil, err
	}
	return &DHT22{dir: dir}, nil
}

func findDHT(root string, pin int) (string, error) {
	devices, err := filepath.Glob(filepath.Join(root, "iio:device*"))
	if err != nil {
		return "", fmt.Errorf("%w: scanning %s: %w", ErrUnresolved, root, err)
	}

	suffix := fmt.Sprintf("@%x", pin)
	var candidates []string
	for _, dir := range devices {
		name, err := os.ReadFile(filepath.Join(dir, "name"))
		if err != nil || strings.TrimSpace(string(name)) != dhtDriverName {
			continue
		}
		if node, err := os.Readlink(filepath.Join(dir, "of_node")); err == nil {
			if strings.HasSuffix(filepath.Base(node), suffix) {
				return dir, nil
			}
		}
		candidates = append(candidates, dir)
	}

	if len(candidates) == 1 {
		return candidates[0], nil
	}
	return "", fmt.Errorf("%w: no %s device for pin %d under %s (%d candidates)",
		ErrUnresolved, dhtDriverName, pin, root, len(candidates))
}

// Read returns the temperature in degrees Fahrenheit and relative humidity in percent.
func (d *DHT22) Read() (Reading, error) {
	milliC, err := readMilli(filepath.Join(d.dir, "in_temp_input"))
	if err != nil {
		return Reading{}, err
	}
	milliRH, err := readMilli(filepath.Join(d.dir, "in_humidityrelative_input"))
	if err != nil {
		return Reading{}, err
	}

	celsius := float64(milliC) / 1000
	humidity := float64(milliRH) / 1000
	if celsius < dhtMinCelsius || celsius > dhtMaxCelsius {
		return Reading{}, &outOfRange{msg: fmt.Sprintf("dht22 %.1f C", celsius)}
	}
	if humidity < 0 || humidity > 100 {
		return Reading{}, &outOfRange{msg: fmt.Sprintf("dht22 %.1f %%RH", humidity)}
	}
	return newReading(KindDHT22, celsiusToFahrenheit(celsius), humidity), nil
}

// readMilli reads an integer sysfs attribute in milli-units.
// The driver returns EIO or ETIMEDOUT when the sensor does not answer.
func readMilli(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrReadFailed, filepath.Base(path), err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrReadFailed, filepath.Base(path), err)
	}
	return v, nil
}

// Kind returns KindDHT22.
func (d *DHT22) Kind() Kind { return KindDHT22 }

// Name returns the sensor description.
func (d *DHT22) Name() string { return "DHT22 Temperature and Humidity" }

// Close is a no-op.
func (d *DHT22) Close() error { return nil }
