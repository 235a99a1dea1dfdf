package supervisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-sensor/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-sensor/internal/keystore"
	"github.com/nerrad567/gray-logic-sensor/internal/sensor"
	"github.com/nerrad567/gray-logic-sensor/internal/settings"
	"github.com/nerrad567/gray-logic-sensor/internal/status"
	"github.com/nerrad567/gray-logic-sensor/internal/telemetry"
	"github.com/nerrad567/gray-logic-sensor/internal/watchdog"
)

// Log attribute values separating misconfiguration from transient faults.
const (
	haltFatal     = "fatal"
	haltTransient = "transient"
)

// Client is the telemetry transport used by the supervisor.
type Client interface {
	Post(ctx context.Context, line string) telemetry.Outcome
	EnsureDatabase(ctx context.Context) (bool, error)
}

// SensorOpener resolves the sensor driver for kind.
type SensorOpener func(kind sensor.Kind, sc settings.SensorConfig) (sensor.Sensor, error)

// ClientFactory builds the telemetry client for a connection.
type ClientFactory func(conn settings.ConnectionConfig) Client

// Options holds the fixed parameters of a run.
type Options struct {
	// SensorKind is the configured driver kind, normalised by sensor.ParseKind.
	SensorKind string

	// ShortTimeout is the steady-state watchdog timeout.
	ShortTimeout time.Duration
}

// Deps are the collaborators of a run. Sleep, Reclaim, Now and Indicator
// default when nil.
type Deps struct {
	Store      keystore.Store
	Prompter   keystore.Prompter
	Watchdog   watchdog.Watchdog
	OpenSensor SensorOpener
	NewClient  ClientFactory
	Indicator  status.Indicator
	Logger     *logging.Logger

	// Sleep waits for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error

	// Reclaim runs before every sample.
	Reclaim func()

	Now func() time.Time
}

// Supervisor drives one boot of the agent.
type Supervisor struct {
	opts  Options
	deps  Deps
	log   *logging.Logger
	state State
}

// runtimeState is everything bootstrap resolves for the steady cycle.
type runtimeState struct {
	settings *settings.Settings
	sensor   sensor.Sensor
	client   Client
	interval time.Duration
}

// New creates a supervisor.
func New(opts Options, deps Deps) *Supervisor {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if deps.Indicator == nil {
		deps.Indicator = status.Nop{}
	}
	if deps.Sleep == nil {
		deps.Sleep = sleepContext
	}
	if deps.Reclaim == nil {
		log := deps.Logger
		deps.Reclaim = func() { ReclaimMemory(log) }
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Supervisor{
		opts:  opts,
		deps:  deps,
		log:   deps.Logger.With("component", "supervisor"),
		state: Bootstrapping,
	}
}

// State returns the current state.
func (s *Supervisor) State() State {
	return s.state
}

// Run boots the agent and runs cycles until a terminal state is reached.
//
// Cancelling ctx is the operator interrupt. It is observed at cycle
// boundaries, including during the inter-cycle sleep.
//
// Returns:
//   - Exit: The terminal state, exit code, and cause
func (s *Supervisor) Run(ctx context.Context) Exit {
	rt, exit := s.bootstrap(ctx)
	if exit != nil {
		return *exit
	}
	defer rt.sensor.Close() //nolint:errcheck // Process is ending

	return s.steady(ctx, rt)
}

// bootstrap resolves configuration, the sensor, and the client.
func (s *Supervisor) bootstrap(ctx context.Context) (*runtimeState, *Exit) {
	s.state = Bootstrapping
	s.log.Info("bootstrapping", "sensor_kind", s.opts.SensorKind)

	// Bound the boot itself, including any interactive prompts.
	if err := s.arm(s.opts.ShortTimeout); err != nil {
		return nil, s.fatal(ctx, fmt.Errorf("arming watchdog: %w", err))
	}

	kind, err := sensor.ParseKind(s.opts.SensorKind)
	if err != nil {
		return nil, s.fatal(ctx, fmt.Errorf("resolving sensor: %w", err))
	}

	cfg, err := settings.Load(ctx, s.deps.Store, s.deps.Prompter, kind.Calibrated())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, s.interrupted()
		}
		return nil, s.fatal(ctx, fmt.Errorf("loading settings: %w", err))
	}

	sens, err := s.deps.OpenSensor(kind, cfg.Sensor)
	if err != nil {
		return nil, s.fatal(ctx, fmt.Errorf("resolving sensor: %w", err))
	}

	rt := &runtimeState{
		settings: cfg,
		sensor:   sens,
		client:   s.deps.NewClient(cfg.Connection),
		interval: time.Duration(cfg.SleepInterval) * time.Second,
	}

	s.log.Info("agent configured",
		"sensor", sens.Name(),
		"sensor_pin", cfg.Sensor.Pin,
		"calibrated", cfg.Sensor.Calibration != nil,
		"interval", rt.interval,
		"client_id", cfg.ClientID,
		"server", fmt.Sprintf("%s:%d", cfg.Connection.Server, cfg.Connection.Port),
		"database", cfg.Connection.Database,
		"measurement", cfg.Connection.Measurement,
		"tls", cfg.Connection.TLS(),
	)

	s.checkToken(cfg.Connection.Token)

	if !cfg.Connection.Authenticated() {
		s.ensureDatabase(ctx, rt.client, cfg.Connection.Database)
	}

	if err := s.arm(s.opts.ShortTimeout); err != nil {
		sens.Close() //nolint:errcheck // Halting
		return nil, s.fatal(ctx, fmt.Errorf("arming watchdog: %w", err))
	}

	return rt, nil
}

// checkToken warns about expired bearer tokens. It never blocks boot.
func (s *Supervisor) checkToken(token string) {
	info := telemetry.InspectToken(token, s.deps.Now())
	switch {
	case info.Blank:
		s.log.Info("no bearer token configured, writing unauthenticated")
	case info.Expired:
		s.log.Warn("bearer token has expired, writes will be rejected",
			"expired_at", info.ExpiresAt, "username", info.Username)
	case info.ExpiresSoon:
		s.log.Warn("bearer token expires soon",
			"expires_at", info.ExpiresAt, "username", info.Username)
	}
}

// ensureDatabase creates the database on unauthenticated servers.
// Failure is logged; the first write reports any real problem.
func (s *Supervisor) ensureDatabase(ctx context.Context, c Client, name string) {
	created, err := c.EnsureDatabase(ctx)
	switch {
	case err != nil:
		s.log.Warn("could not ensure database exists", "database", name, "error", err)
	case created:
		s.log.Info("created database", "database", name)
	default:
		s.log.Info("using database", "database", name)
	}
}

// steady runs cycles until a terminal state.
func (s *Supervisor) steady(ctx context.Context, rt *runtimeState) Exit {
	s.state = SteadyCycle

	for {
		if ctx.Err() != nil {
			return *s.interrupted()
		}

		if err := s.cycle(ctx, rt); err != nil {
			s.deps.Indicator.SignalFailure()
			s.log.Warn("cycle failed, resetting after sleep",
				"halt", haltTransient,
				"error", err,
				"sleep", rt.interval,
			)
			if s.deps.Sleep(ctx, rt.interval) != nil {
				return *s.interrupted()
			}
			s.state = ResetRequested
			s.log.Warn("requesting device reset", "halt", haltTransient)
			return Exit{State: ResetRequested, Err: err}
		}

		if err := s.deps.Watchdog.Feed(); err != nil {
			s.log.Error("watchdog feed failed", "error", err)
		}
		s.deps.Indicator.SignalSuccess()

		if s.deps.Sleep(ctx, rt.interval) != nil {
			return *s.interrupted()
		}
	}
}

// cycle samples, encodes, and posts one point. A panic is a cycle failure.
func (s *Supervisor) cycle(ctx context.Context, rt *runtimeState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCyclePanic, r)
		}
	}()

	s.deps.Reclaim()

	reading, err := rt.sensor.Read()
	if err != nil {
		return fmt.Errorf("reading sensor: %w", err)
	}

	line := telemetry.Encode(rt.settings.Connection.Measurement, rt.settings.ClientID, reading)
	out := rt.client.Post(ctx, line)

	if out.OK() {
		s.log.Info("influxdb write: success", "line", line)
		return nil
	}
	if out.Kind == telemetry.Rejected {
		s.log.Warn("influxdb write: rejected", "line", line, "status", out.StatusCode)
	} else {
		s.log.Warn("influxdb write: network failure", "line", line)
	}
	return out.Err
}

// fatal enters FatalHalt.
//
// When the hardware clamped the long timeout, the watchdog is fed until
// LongTimeout has elapsed so the device does not reset straight back into
// the same misconfiguration.
func (s *Supervisor) fatal(ctx context.Context, err error) *Exit {
	s.state = FatalHalt
	s.armLong()
	s.log.Error("FATAL: halting",
		"halt", haltFatal,
		"error", err,
		"watchdog_timeout", s.deps.Watchdog.State().Timeout,
	)
	s.holdLong(ctx)
	return &Exit{State: FatalHalt, Code: ExitCodeFatal, Err: err}
}

// interrupted enters InterruptedHalt.
func (s *Supervisor) interrupted() *Exit {
	s.state = InterruptedHalt
	s.armLong()
	s.log.Info("interrupted by operator, halting without reset",
		"halt", "interrupt",
		"watchdog_timeout", s.deps.Watchdog.State().Timeout,
	)
	return &Exit{State: InterruptedHalt, Code: ExitCodeInterrupted}
}

// arm arms the watchdog and logs the timeout the hardware applied.
func (s *Supervisor) arm(timeout time.Duration) error {
	if err := s.deps.Watchdog.Arm(timeout); err != nil {
		return err
	}
	effective := s.deps.Watchdog.State().Timeout
	if effective != timeout {
		s.log.Warn("watchdog clamped timeout", "requested", timeout, "effective", effective)
	} else {
		s.log.Info("watchdog armed", "timeout", effective)
	}
	return nil
}

func (s *Supervisor) armLong() {
	if err := s.arm(watchdog.LongTimeout); err != nil {
		s.log.Error("could not extend watchdog timeout", "error", err)
	}
}

// holdLong feeds the watchdog at half its effective timeout until
// LongTimeout has passed. It returns at once when the long timeout is in
// effect, and early when ctx is done or a feed fails.
func (s *Supervisor) holdLong(ctx context.Context) {
	st := s.deps.Watchdog.State()
	if !st.Armed || st.Timeout >= watchdog.LongTimeout {
		return
	}

	interval := max(st.Timeout/2, time.Second)
	s.log.Warn("holding halt and feeding watchdog",
		"effective_timeout", st.Timeout,
		"hold", watchdog.LongTimeout,
	)
	for held := time.Duration(0); held < watchdog.LongTimeout; held += interval {
		if s.deps.Sleep(ctx, interval) != nil {
			return
		}
		if err := s.deps.Watchdog.Feed(); err != nil {
			s.log.Error("watchdog feed failed during halt", "error", err)
			return
		}
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
