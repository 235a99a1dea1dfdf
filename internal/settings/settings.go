package settings

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-sensor/internal/keystore"
)

// Store keys.
const (
	KeyInfluxDB      = "influxdb"
	KeySleepInterval = "sleep_interval"
	KeySensorPin     = "sensor_pin"
	KeyToken         = "jwt"
	KeyTMP36         = "tmp36"
	KeyClientID      = "client_id"
)

// defaultTLSPort is omitted from generated URLs.
const defaultTLSPort = 443

// tlsPorts are the ports served by the TLS reverse proxy.
var tlsPorts = map[int]bool{443: true, 8443: true}

// tlsPathPrefix is where the reverse proxy mounts the write endpoint.
const tlsPathPrefix = "/influx"

// ConnectionConfig locates the InfluxDB endpoint.
type ConnectionConfig struct {
	Server      string
	Port        int
	Database    string
	Measurement string

	// Token is the bearer token. Empty means no authentication.
	Token string
}

// TLS reports whether the port is served over HTTPS.
func (c ConnectionConfig) TLS() bool {
	return tlsPorts[c.Port]
}

// Authenticated reports whether a bearer token is configured.
func (c ConnectionConfig) Authenticated() bool {
	return c.Token != ""
}

// BaseURL returns scheme://host[:port].
func (c ConnectionConfig) BaseURL() string {
	if c.TLS() {
		if c.Port == defaultTLSPort {
			return "https://" + c.Server
		}
		return "https://" + net.JoinHostPort(c.Server, strconv.Itoa(c.Port))
	}
	return "http://" + net.JoinHostPort(c.Server, strconv.Itoa(c.Port))
}

// WriteURL returns the line-protocol write endpoint.
//
//	http://influx.local:8086/write?db=garage
//	https://influx.example.com/influx/write?db=garage
func (c ConnectionConfig) WriteURL() string {
	prefix := ""
	if c.TLS() {
		prefix = tlsPathPrefix
	}
	return c.BaseURL() + prefix + "/write?db=" + url.QueryEscape(c.Database)
}

// QueryURL returns the query endpoint used to manage databases.
func (c ConnectionConfig) QueryURL() string {
	return c.BaseURL() + "/query"
}

// Calibration is a two-point linear map from raw ADC counts to temperature.
type Calibration struct {
	ADCMin  int
	ADCMax  int
	TempMin float64
	TempMax float64
}

// Apply maps raw onto the calibrated temperature range.
func (c Calibration) Apply(raw int) float64 {
	return c.TempMin + float64(raw-c.ADCMin)*(c.TempMax-c.TempMin)/float64(c.ADCMax-c.ADCMin)
}

// SensorConfig holds the operator's sensor parameters.
type SensorConfig struct {
	Pin int

	// Calibration is nil when the sensor runs uncalibrated.
	Calibration *Calibration
}

// Settings is the complete operator configuration, read-only after Load.
type Settings struct {
	Connection    ConnectionConfig
	SleepInterval int
	Sensor        SensorConfig
	ClientID      string
}

// Load resolves all settings from store, prompting for missing keys.
//
// Keys are resolved in dependency order: influxdb, sleep_interval,
// sensor_pin, jwt, then tmp36 when calibrated is set. The client_id is
// generated and stored if absent.
//
// Parameters:
//   - ctx: Context for cancellation
//   - store: The persistent key store
//   - prompter: Source of answers for missing keys
//   - calibrated: Whether the sensor takes an ADC calibration (tmp36)
//
// Returns:
//   - *Settings: Resolved settings
//   - error: keystore.ErrStorage, keystore.ErrConfigurationMissing, or
//     ErrInvalidSetting
func Load(ctx context.Context, store keystore.Store, prompter keystore.Prompter, calibrated bool) (*Settings, error) {
	var s Settings

	raw, err := keystore.Require(ctx, store, prompter, keystore.Question{
		Key:      KeyInfluxDB,
		Text:     "Enter InfluxDB server:port:database:measurement",
		Hint:     "Need to add settings to the key store...",
		Validate: func(v string) error { _, err := ParseConnection(v); return err },
	})
	if err != nil {
		return nil, err
	}
	if s.Connection, err = ParseConnection(raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSetting, KeyInfluxDB, err)
	}

	raw, err = keystore.Require(ctx, store, prompter, keystore.Question{
		Key:      KeySleepInterval,
		Text:     "How many seconds between sensor reads",
		Validate: validatePositive,
	})
	if err != nil {
		return nil, err
	}
	if s.SleepInterval, err = parsePositive(raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSetting, KeySleepInterval, err)
	}

	raw, err = keystore.Require(ctx, store, prompter, keystore.Question{
		Key:      KeySensorPin,
		Text:     "Enter sensor pin number",
		Validate: validatePin,
	})
	if err != nil {
		return nil, err
	}
	if s.Sensor.Pin, err = parsePin(raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSetting, KeySensorPin, err)
	}

	s.Connection.Token, err = keystore.Require(ctx, store, prompter, keystore.Question{
		Key:        KeyToken,
		Text:       "Enter JSON Web Token (JWT)",
		Hint:       "The token can be blank if InfluxDB does not use authentication",
		AllowEmpty: true,
	})
	if err != nil {
		return nil, err
	}

	if calibrated {
		raw, err = keystore.Require(ctx, store, prompter, keystore.Question{
			Key:        KeyTMP36,
			Text:       "Enter adc_min:adc_max:temp_min:temp_max",
			Hint:       "This field can be blank to read the sensor without calibration",
			AllowEmpty: true,
			Validate:   func(v string) error { _, err := ParseCalibration(v); return err },
		})
		if err != nil {
			return nil, err
		}
		if raw != "" {
			cal, err := ParseCalibration(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSetting, KeyTMP36, err)
			}
			s.Sensor.Calibration = &cal
		}
	}

	if s.ClientID, err = LoadClientID(ctx, store); err != nil {
		return nil, err
	}

	return &s, nil
}

// LoadClientID returns the stored device identity, generating it on first boot.
func LoadClientID(ctx context.Context, store keystore.Store) (string, error) {
	id, ok, err := store.Get(ctx, KeyClientID)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := store.Set(ctx, KeyClientID, id); err != nil {
		return "", err
	}
	return id, nil
}

// ParseConnection parses "server:port:database:measurement".
func ParseConnection(s string) (ConnectionConfig, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return ConnectionConfig{}, fmt.Errorf("%w: want server:port:database:measurement", keystore.ErrInvalidValue)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return ConnectionConfig{}, fmt.Errorf("%w: empty field in %q", keystore.ErrInvalidValue, s)
		}
	}

	port, err := strconv.Atoi(parts[1])
	if err != nil || port < 1 || port > 65535 {
		return ConnectionConfig{}, fmt.Errorf("%w: port %q", keystore.ErrInvalidValue, parts[1])
	}

	return ConnectionConfig{
		Server:      parts[0],
		Port:        port,
		Database:    parts[2],
		Measurement: parts[3],
	}, nil
}

// ParseCalibration parses "adc_min:adc_max:temp_min:temp_max".
func ParseCalibration(s string) (Calibration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return Calibration{}, fmt.Errorf("%w: want adc_min:adc_max:temp_min:temp_max", keystore.ErrInvalidValue)
	}

	var (
		c    Calibration
		errs [4]error
	)
	c.ADCMin, errs[0] = strconv.Atoi(parts[0])
	c.ADCMax, errs[1] = strconv.Atoi(parts[1])
	c.TempMin, errs[2] = strconv.ParseFloat(parts[2], 64)
	c.TempMax, errs[3] = strconv.ParseFloat(parts[3], 64)
	for i, err := range errs {
		if err != nil {
			return Calibration{}, fmt.Errorf("%w: field %d %q", keystore.ErrInvalidValue, i+1, parts[i])
		}
	}

	if c.ADCMin == c.ADCMax {
		return Calibration{}, fmt.Errorf("%w: adc_min and adc_max must differ", keystore.ErrInvalidValue)
	}
	return c, nil
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q is not a positive integer", keystore.ErrInvalidValue, s)
	}
	return n, nil
}

func validatePositive(s string) error {
	_, err := parsePositive(s)
	return err
}

func parsePin(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a pin number", keystore.ErrInvalidValue, s)
	}
	return n, nil
}

func validatePin(s string) error {
	_, err := parsePin(s)
	return err
}
