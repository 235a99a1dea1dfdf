package settings

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/nerrad567/gray-logic-sensor/internal/keystore"
)

type memStore struct {
	data map[string]string
	sets []string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.sets = append(m.sets, key)
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// answerPrompter answers by key and records the order questions were asked in.
type answerPrompter struct {
	answers map[string]string
	asked   []string
}

func (p *answerPrompter) Prompt(_ context.Context, q keystore.Question) (string, error) {
	p.asked = append(p.asked, q.Key)
	a, ok := p.answers[q.Key]
	if !ok {
		return "", keystore.ErrNoTerminal
	}
	return a, nil
}

func TestLoad_FirstBootThenPopulated(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	p := &answerPrompter{answers: map[string]string{
		KeyInfluxDB:      "influx.local:8086:garage:tank",
		KeySleepInterval: "60",
		KeySensorPin:     "32",
		KeyToken:         "",
	}}

	s, err := Load(ctx, store, p, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantOrder := []string{KeyInfluxDB, KeySleepInterval, KeySensorPin, KeyToken}
	if len(p.asked) != len(wantOrder) {
		t.Fatalf("asked %v, want %v", p.asked, wantOrder)
	}
	for i, k := range wantOrder {
		if p.asked[i] != k {
			t.Errorf("prompt %d = %s, want %s", i, p.asked[i], k)
		}
	}

	for _, k := range append(wantOrder, KeyClientID) {
		if _, ok := store.data[k]; !ok {
			t.Errorf("key %s not persisted", k)
		}
	}
	if s.ClientID == "" {
		t.Error("ClientID not generated")
	}
	if s.Connection.Authenticated() {
		t.Error("blank token should mean unauthenticated")
	}

	second := &answerPrompter{}
	again, err := Load(ctx, store, second, false)
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if len(second.asked) != 0 {
		t.Errorf("second boot prompted %v, want none", second.asked)
	}
	if again.ClientID != s.ClientID {
		t.Errorf("ClientID changed: %s -> %s", s.ClientID, again.ClientID)
	}
}

func TestLoad_Populated(t *testing.T) {
	store := newMemStore()
	store.data = map[string]string{
		KeyInfluxDB:      "influx.example.com:443:garage:dht",
		KeySleepInterval: "300",
		KeySensorPin:     "4",
		KeyToken:         "abc.def.ghi",
		KeyClientID:      "device-1",
	}

	s, err := Load(context.Background(), store, nil, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.Connection.Server != "influx.example.com" || s.Connection.Port != 443 {
		t.Errorf("Connection = %+v", s.Connection)
	}
	if s.Connection.Database != "garage" || s.Connection.Measurement != "dht" {
		t.Errorf("Connection = %+v", s.Connection)
	}
	if s.SleepInterval != 300 || s.Sensor.Pin != 4 {
		t.Errorf("SleepInterval = %d, Pin = %d", s.SleepInterval, s.Sensor.Pin)
	}
	if !s.Connection.Authenticated() {
		t.Error("token set should mean authenticated")
	}
	if s.ClientID != "device-1" {
		t.Errorf("ClientID = %s, want device-1", s.ClientID)
	}
	if len(store.sets) != 0 {
		t.Errorf("populated store was written: %v", store.sets)
	}
}

func TestLoad_TMP36Calibration(t *testing.T) {
	base := map[string]string{
		KeyInfluxDB:      "h:8086:d:m",
		KeySleepInterval: "60",
		KeySensorPin:     "33",
		KeyToken:         "",
	}

	t.Run("prompted only for tmp36", func(t *testing.T) {
		store := newMemStore()
		for k, v := range base {
			store.data[k] = v
		}
		p := &answerPrompter{answers: map[string]string{KeyTMP36: "0:1023:-40.0:125.0"}}

		s, err := Load(context.Background(), store, p, true)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(p.asked) != 1 || p.asked[0] != KeyTMP36 {
			t.Errorf("asked = %v, want [tmp36]", p.asked)
		}
		want := Calibration{ADCMin: 0, ADCMax: 1023, TempMin: -40, TempMax: 125}
		if s.Sensor.Calibration == nil || *s.Sensor.Calibration != want {
			t.Errorf("Calibration = %+v, want %+v", s.Sensor.Calibration, want)
		}
	})

	t.Run("blank means uncalibrated", func(t *testing.T) {
		store := newMemStore()
		for k, v := range base {
			store.data[k] = v
		}
		store.data[KeyTMP36] = ""

		s, err := Load(context.Background(), store, nil, true)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if s.Sensor.Calibration != nil {
			t.Errorf("Calibration = %+v, want nil", s.Sensor.Calibration)
		}
	})

	t.Run("not asked for other kinds", func(t *testing.T) {
		store := newMemStore()
		for k, v := range base {
			store.data[k] = v
		}
		p := &answerPrompter{}

		if _, err := Load(context.Background(), store, p, false); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(p.asked) != 0 {
			t.Errorf("asked = %v, want none", p.asked)
		}
	})
}

func TestLoad_CorruptStoredValue(t *testing.T) {
	store := newMemStore()
	store.data[KeyInfluxDB] = "not-a-connection-string"

	_, err := Load(context.Background(), store, nil, false)
	if !errors.Is(err, ErrInvalidSetting) {
		t.Errorf("Load() error = %v, want ErrInvalidSetting", err)
	}
}

func TestLoad_MissingWithoutPrompter(t *testing.T) {
	_, err := Load(context.Background(), newMemStore(), nil, false)
	if !errors.Is(err, keystore.ErrConfigurationMissing) {
		t.Errorf("Load() error = %v, want ErrConfigurationMissing", err)
	}
}

func TestConnectionConfig_URLs(t *testing.T) {
	tests := []struct {
		name      string
		port      int
		wantTLS   bool
		wantWrite string
		wantQuery string
	}{
		{"plain http", 8086, false, "http://influx.local:8086/write?db=garage", "http://influx.local:8086/query"},
		{"default tls", 443, true, "https://influx.local/influx/write?db=garage", "https://influx.local/query"},
		{"alternate tls", 8443, true, "https://influx.local:8443/influx/write?db=garage", "https://influx.local:8443/query"},
		{"port containing 443 digits", 4430, false, "http://influx.local:4430/write?db=garage", "http://influx.local:4430/query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ConnectionConfig{Server: "influx.local", Port: tt.port, Database: "garage", Measurement: "m"}
			if c.TLS() != tt.wantTLS {
				t.Errorf("TLS() = %v, want %v", c.TLS(), tt.wantTLS)
			}
			if got := c.WriteURL(); got != tt.wantWrite {
				t.Errorf("WriteURL() = %s, want %s", got, tt.wantWrite)
			}
			if got := c.QueryURL(); got != tt.wantQuery {
				t.Errorf("QueryURL() = %s, want %s", got, tt.wantQuery)
			}
		})
	}
}

func TestParseConnection_Invalid(t *testing.T) {
	for _, s := range []string{"", "a:b:c", "h:port:d:m", "h:0:d:m", "h:8086::m", "h:8086:d:m:extra"} {
		if _, err := ParseConnection(s); !errors.Is(err, keystore.ErrInvalidValue) {
			t.Errorf("ParseConnection(%q) error = %v, want ErrInvalidValue", s, err)
		}
	}
}

func TestParseCalibration_Invalid(t *testing.T) {
	for _, s := range []string{"1:2:3", "a:1023:-40:125", "0:1023:x:125", "5:5:0:1"} {
		if _, err := ParseCalibration(s); !errors.Is(err, keystore.ErrInvalidValue) {
			t.Errorf("ParseCalibration(%q) error = %v, want ErrInvalidValue", s, err)
		}
	}
}

func TestCalibration_Apply(t *testing.T) {
	c := Calibration{ADCMin: 0, ADCMax: 1023, TempMin: -40.0, TempMax: 125.0}

	// Reference two-point linear map.
	want := -40.0 + (511.0-0.0)*(125.0-(-40.0))/(1023.0-0.0)
	if got := c.Apply(511); math.Abs(got-want) > 1e-9 {
		t.Errorf("Apply(511) = %v, want %v", got, want)
	}
	if got := c.Apply(0); got != -40.0 {
		t.Errorf("Apply(0) = %v, want -40", got)
	}
	if got := c.Apply(1023); math.Abs(got-125.0) > 1e-9 {
		t.Errorf("Apply(1023) = %v, want 125", got)
	}
}
