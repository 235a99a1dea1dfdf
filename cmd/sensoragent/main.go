// Sensor Agent - unattended telemetry for a single sensor.
//
// The agent reads one sensor on a fixed interval and writes each reading to
// InfluxDB as a line-protocol point. A watchdog resets the device whenever a
// write does not succeed, so the device always converges back to a clean boot.
//
// Operator settings live in a persistent key store and are prompted for on
// first boot. Build-time hardware settings come from the YAML config file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/nerrad567/gray-logic-sensor/migrations"

	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-sensor/internal/keystore"
	"github.com/nerrad567/gray-logic-sensor/internal/sensor"
	"github.com/nerrad567/gray-logic-sensor/internal/settings"
	"github.com/nerrad567/gray-logic-sensor/internal/status"
	"github.com/nerrad567/gray-logic-sensor/internal/supervisor"
	"github.com/nerrad567/gray-logic-sensor/internal/telemetry"
	"github.com/nerrad567/gray-logic-sensor/internal/watchdog"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "/etc/sensoragent/config.yaml"

// result is the outcome of one run.
type result struct {
	exit      supervisor.Exit
	restarter watchdog.Restarter
}

func main() {
	// Cancels on Ctrl+C or SIGTERM; the supervisor treats it as an operator interrupt.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	res, err := run(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(supervisor.ExitCodeFatal)
	}

	if res.exit.State == supervisor.ResetRequested {
		if err := res.restarter.Restart(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(supervisor.ExitCodeFatal)
		}
	}
	os.Exit(res.exit.Code)
}

// run wires the agent and runs one boot.
//
// Resources are released before run returns, so a reset requested by the
// supervisor is carried out by main with the store already closed.
//
// Parameters:
//   - ctx: Context cancelled by an operator interrupt
//
// Returns:
//   - result: The supervisor's terminal state and the restarter for resets
//   - error: If the agent could not be wired at all
func run(ctx context.Context) (result, error) {
	log := logging.Default()
	log.Info("starting sensor agent",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return result{}, fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "sensor_kind", cfg.Sensor.Kind)

	restarter, err := watchdog.NewRestarter(cfg.Reset.Mode, cfg.Reset.ExitCode)
	if err != nil {
		return result{}, fmt.Errorf("creating restarter: %w", err)
	}

	db, err := database.Open(database.Config{
		Path:        cfg.Store.Path,
		BusyTimeout: cfg.Store.BusyTimeout,
	})
	if err != nil {
		return result{}, fmt.Errorf("opening key store: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing key store", "error", closeErr)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return result{}, fmt.Errorf("running migrations: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return result{}, fmt.Errorf("checking key store: %w", err)
	}
	log.Info("key store opened", "path", db.Path())
	store := keystore.NewSQLiteStore(db.DB)

	if keys := parseForget(os.Getenv("SENSORAGENT_FORGET")); len(keys) > 0 {
		if err := keystore.Forget(ctx, store, keys...); err != nil {
			return result{}, fmt.Errorf("forgetting keys: %w", err)
		}
		log.Info("forgot stored settings", "keys", keys)
	}

	wd, err := openWatchdog(cfg.Watchdog, restarter, log)
	if err != nil {
		return result{}, fmt.Errorf("opening watchdog: %w", err)
	}

	indicator, closeIndicator := openIndicator(ctx, cfg.Status, store, log)
	defer closeIndicator()

	hw := sensor.Hardware{
		I2CBus:  cfg.Sensor.I2CBus,
		IIODir:  cfg.Sensor.IIODir,
		IIORoot: cfg.Sensor.IIORoot,
		ADCMax:  cfg.Sensor.ADCMax,
		ADCVref: cfg.Sensor.ADCVref,
		Level: sensor.LevelConfig{
			EmptyRaw:     cfg.Sensor.Level.EmptyRaw,
			FullRaw:      cfg.Sensor.Level.FullRaw,
			LengthInches: cfg.Sensor.Level.LengthInches,
		},
	}
	httpTimeout := cfg.GetHTTPTimeout()

	sup := supervisor.New(supervisor.Options{
		SensorKind:   cfg.Sensor.Kind,
		ShortTimeout: cfg.GetWatchdogTimeout(),
	}, supervisor.Deps{
		Store:    store,
		Prompter: keystore.NewTerminalPrompter(),
		Watchdog: wd,
		OpenSensor: func(kind sensor.Kind, sc settings.SensorConfig) (sensor.Sensor, error) {
			return sensor.Open(kind, hw, sc)
		},
		NewClient: func(conn settings.ConnectionConfig) supervisor.Client {
			return telemetry.NewClient(conn, httpTimeout)
		},
		Indicator: indicator,
		Logger:    log,
	})

	exit := sup.Run(ctx)
	log.Info("sensor agent stopped", "state", exit.State, "code", exit.Code)

	return result{exit: exit, restarter: restarter}, nil
}

// getConfigPath returns the configuration file path.
// Uses SENSORAGENT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SENSORAGENT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// parseForget splits a comma-separated key list, dropping blanks.
func parseForget(v string) []string {
	var keys []string
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// openWatchdog opens the hardware watchdog, or a software one that fires
// the restarter when no device is configured.
func openWatchdog(cfg config.WatchdogConfig, restarter watchdog.Restarter, log *logging.Logger) (watchdog.Watchdog, error) {
	if cfg.Device != "" {
		dev, err := watchdog.OpenDevice(cfg.Device)
		if err != nil {
			return nil, err
		}
		log.Info("hardware watchdog opened", "device", cfg.Device)
		return dev, nil
	}

	log.Info("no watchdog device configured, using software watchdog")
	return watchdog.NewSoft(func() {
		log.Error("software watchdog expired, resetting")
		if err := restarter.Restart(); err != nil {
			log.Error("reset failed", "error", err)
		}
	}), nil
}

// openIndicator builds the configured status indicators. Indicator
// failures are logged and never stop the agent.
func openIndicator(ctx context.Context, cfg config.StatusConfig, store keystore.Store, log *logging.Logger) (status.Indicator, func()) {
	var inds []status.Indicator
	closers := []func(){}

	if cfg.MQTT.Enabled {
		if client, err := connectMQTT(ctx, cfg.MQTT, store); err != nil {
			log.Warn("MQTT status disabled", "error", err)
		} else {
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", client.ClientID(),
			)
			inds = append(inds, status.NewMQTT(client, log))
			closers = append(closers, func() {
				if closeErr := client.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			})
		}
	}

	if cfg.LED.Enabled {
		if led, err := status.OpenLED(cfg.LED.SuccessPin, cfg.LED.FailurePin, log); err != nil {
			log.Warn("LED status disabled", "error", err)
		} else {
			inds = append(inds, led)
		}
	}

	return status.Combine(inds...), func() {
		for _, c := range closers {
			c()
		}
	}
}

// connectMQTT connects using the device identity from the key store.
func connectMQTT(ctx context.Context, cfg config.MQTTConfig, store keystore.Store) (*mqtt.Client, error) {
	clientID, err := settings.LoadClientID(ctx, store)
	if err != nil {
		return nil, err
	}
	return mqtt.Connect(cfg, clientID)
}
