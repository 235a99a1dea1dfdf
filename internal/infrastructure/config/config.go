package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the sensor agent.
//
// It holds the hardware build settings that are fixed per device image.
// Operator-supplied settings (server, interval, token, pin, calibration)
// live in the persistent key store instead, see internal/settings.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Sensor   SensorConfig   `yaml:"sensor"`
	Watchdog WatchdogConfig `yaml:"watchdog"`
	Reset    ResetConfig    `yaml:"reset"`
	HTTP     HTTPConfig     `yaml:"http"`
	Status   StatusConfig   `yaml:"status"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StoreConfig contains the SQLite key store settings.
type StoreConfig struct {
	Path        string `yaml:"path"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// SensorConfig selects the sensor driver and its hardware parameters.
type SensorConfig struct {
	// Kind is one of "level", "tmp36", "tmp102", "dht22".
	Kind string `yaml:"kind"`

	// I2CBus is the periph bus name for I2C sensors. Empty selects the first bus.
	I2CBus string `yaml:"i2c_bus"`

	// IIODir is the sysfs IIO device directory of the ADC.
	IIODir string `yaml:"iio_dir"`

	// IIORoot is scanned for DHT devices bound by the dht11 kernel driver.
	IIORoot string `yaml:"iio_root"`

	// ADCMax is the full-scale raw ADC count (4095 for a 12-bit converter).
	ADCMax int `yaml:"adc_max"`

	// ADCVref is the ADC reference voltage in volts.
	ADCVref float64 `yaml:"adc_vref"`

	Level LevelConfig `yaml:"level"`
}

// LevelConfig describes the eTape voltage divider endpoints.
type LevelConfig struct {
	EmptyRaw     int     `yaml:"empty_raw"`
	FullRaw      int     `yaml:"full_raw"`
	LengthInches float64 `yaml:"length_inches"`
}

// WatchdogConfig contains hardware watchdog settings.
type WatchdogConfig struct {
	// Device is the watchdog character device. Empty uses the in-process
	// software watchdog.
	Device string `yaml:"device"`

	// Timeout is the steady-state watchdog timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// ResetConfig controls how a requested device reset is carried out.
type ResetConfig struct {
	// Mode is "exit" (leave restart to the service manager) or "reboot".
	Mode string `yaml:"mode"`

	// ExitCode is the process exit code used by the "exit" mode.
	ExitCode int `yaml:"exit_code"`
}

// HTTPConfig contains telemetry transport settings.
type HTTPConfig struct {
	// Timeout bounds a single request in seconds.
	Timeout int `yaml:"timeout"`
}

// StatusConfig contains the optional status indicators.
type StatusConfig struct {
	MQTT MQTTConfig `yaml:"mqtt"`
	LED  LEDConfig  `yaml:"led"`
}

// MQTTConfig contains MQTT broker connection settings for status publishing.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	// MaxDelay caps the reconnect backoff in seconds.
	MaxDelay int `yaml:"max_delay"`
}

// LEDConfig names the GPIO pins driving the status LEDs.
type LEDConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SuccessPin string `yaml:"success_pin"`
	FailurePin string `yaml:"failure_pin"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A missing file is not an error: a device image may rely on defaults and
// environment variables alone.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be parsed or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:        "/var/lib/sensoragent/key_store.db",
			BusyTimeout: 5,
		},
		Sensor: SensorConfig{
			IIODir:  "/sys/bus/iio/devices/iio:device0",
			IIORoot: "/sys/bus/iio/devices",
			ADCMax:  4095,
			ADCVref: 3.3,
			Level: LevelConfig{
				EmptyRaw:     3100,
				FullRaw:      1500,
				LengthInches: 15.0,
			},
		},
		Watchdog: WatchdogConfig{
			Timeout: 600,
		},
		Reset: ResetConfig{
			Mode:     "exit",
			ExitCode: 75,
		},
		HTTP: HTTPConfig{
			Timeout: 30,
		},
		Status: StatusConfig{
			MQTT: MQTTConfig{
				Broker: MQTTBrokerConfig{
					Host: "localhost",
					Port: 1883,
				},
				QoS: 1,
				Reconnect: MQTTReconnectConfig{
					MaxDelay: 60,
				},
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SENSORAGENT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SENSORAGENT_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SENSORAGENT_SENSOR_KIND"); v != "" {
		cfg.Sensor.Kind = v
	}
	if v := os.Getenv("SENSORAGENT_WATCHDOG_DEVICE"); v != "" {
		cfg.Watchdog.Device = v
	}
	if v := os.Getenv("SENSORAGENT_MQTT_HOST"); v != "" {
		cfg.Status.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SENSORAGENT_MQTT_PASSWORD"); v != "" {
		cfg.Status.MQTT.Auth.Password = v
	}
}

// Validate checks the configuration for errors.
//
// The sensor kind is deliberately not validated here: an unknown or empty
// kind is a sensor resolution failure handled by the supervisor.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Store.Path == "" {
		errs = append(errs, "store.path is required")
	}

	if c.Sensor.ADCMax <= 0 {
		errs = append(errs, "sensor.adc_max must be positive")
	}
	if c.Sensor.ADCVref <= 0 {
		errs = append(errs, "sensor.adc_vref must be positive")
	}
	if c.Sensor.Level.EmptyRaw == c.Sensor.Level.FullRaw {
		errs = append(errs, "sensor.level.empty_raw and full_raw must differ")
	}
	if !(c.Sensor.Level.LengthInches > 0) {
		errs = append(errs, "sensor.level.length_inches must be positive")
	}

	if c.Watchdog.Timeout <= 0 {
		errs = append(errs, "watchdog.timeout must be positive")
	}

	switch c.Reset.Mode {
	case "exit", "reboot":
	default:
		errs = append(errs, "reset.mode must be exit or reboot")
	}
	if c.Reset.Mode == "exit" && (c.Reset.ExitCode < 2 || c.Reset.ExitCode > 125) {
		errs = append(errs, "reset.exit_code must be between 2 and 125")
	}

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, "http.timeout must be positive")
	}

	if c.Status.MQTT.Enabled {
		if c.Status.MQTT.QoS < 0 || c.Status.MQTT.QoS > 2 {
			errs = append(errs, "status.mqtt.qos must be 0, 1, or 2")
		}
		if c.Status.MQTT.Broker.Port < 1 || c.Status.MQTT.Broker.Port > 65535 {
			errs = append(errs, "status.mqtt.broker.port must be between 1 and 65535")
		}
	}

	if c.Status.LED.Enabled && c.Status.LED.SuccessPin == "" && c.Status.LED.FailurePin == "" {
		errs = append(errs, "status.led needs at least one pin")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetWatchdogTimeout returns the steady-state watchdog timeout as a Duration.
func (c *Config) GetWatchdogTimeout() time.Duration {
	return time.Duration(c.Watchdog.Timeout) * time.Second
}

// GetHTTPTimeout returns the per-request HTTP timeout as a Duration.
func (c *Config) GetHTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.Timeout) * time.Second
}
