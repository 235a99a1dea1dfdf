package main

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-sensor/internal/status"
	"github.com/nerrad567/gray-logic-sensor/internal/supervisor"
	"github.com/nerrad567/gray-logic-sensor/internal/watchdog"
)

// TestRun_InvalidConfig verifies run fails with an unparsable config file.
func TestRun_InvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("store: [unclosed"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("SENSORAGENT_CONFIG", configPath)

	if _, err := run(context.Background()); err == nil {
		t.Fatal("run() should fail with invalid config")
	}
}

// TestRun_FirstBootWithoutTerminal verifies an unconfigured headless device halts fatally.
func TestRun_FirstBootWithoutTerminal(t *testing.T) {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		t.Skip("stdin is a terminal; run would prompt")
	}

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  path: ` + filepath.Join(tmpDir, "key_store.db") + `
sensor:
  kind: level
logging:
  level: error
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("SENSORAGENT_CONFIG", configPath)
	t.Setenv("SENSORAGENT_WATCHDOG_DEVICE", "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := run(ctx)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if res.exit.State != supervisor.FatalHalt {
		t.Errorf("exit = %v, want %v", res.exit.State, supervisor.FatalHalt)
	}
	if res.exit.Code != supervisor.ExitCodeFatal {
		t.Errorf("code = %d, want %d", res.exit.Code, supervisor.ExitCodeFatal)
	}
	if res.restarter == nil {
		t.Error("restarter = nil")
	}
}

// TestGetConfigPath_Default verifies the default path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("SENSORAGENT_CONFIG", "")

	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies the environment override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	t.Setenv("SENSORAGENT_CONFIG", "/custom/path/config.yaml")

	if got := getConfigPath(); got != "/custom/path/config.yaml" {
		t.Errorf("getConfigPath() = %q, want /custom/path/config.yaml", got)
	}
}

// TestParseForget verifies key list parsing.
func TestParseForget(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"jwt", []string{"jwt"}},
		{"jwt, influxdb", []string{"jwt", "influxdb"}},
		{" , jwt,,", []string{"jwt"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseForget(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("parseForget(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestOpenWatchdog_Software verifies the fallback when no device is configured.
func TestOpenWatchdog_Software(t *testing.T) {
	wd, err := openWatchdog(config.WatchdogConfig{}, watchdog.NewExitRestarter(75), logging.Discard())
	if err != nil {
		t.Fatalf("openWatchdog() error = %v", err)
	}
	soft, ok := wd.(*watchdog.Soft)
	if !ok {
		t.Fatalf("openWatchdog() = %T, want *watchdog.Soft", wd)
	}
	if soft.State().Armed {
		t.Error("software watchdog armed before use")
	}
}

// TestOpenWatchdog_MissingDevice verifies an absent device is an error.
func TestOpenWatchdog_MissingDevice(t *testing.T) {
	cfg := config.WatchdogConfig{Device: filepath.Join(t.TempDir(), "watchdog")}
	if _, err := openWatchdog(cfg, watchdog.NewExitRestarter(75), logging.Discard()); err == nil {
		t.Error("openWatchdog() should fail for a missing device")
	}
}

// TestOpenIndicator_Disabled verifies no indicators yields a no-op.
func TestOpenIndicator_Disabled(t *testing.T) {
	ind, closeFn := openIndicator(context.Background(), config.StatusConfig{}, nil, logging.Discard())
	defer closeFn()

	if _, ok := ind.(status.Nop); !ok {
		t.Errorf("openIndicator() = %T, want status.Nop", ind)
	}
}
