// Package supervisor runs the agent's boot sequence and steady-state cycle.
//
// State machine:
//
//	Bootstrapping ──ok──▶ SteadyCycle ──success──▶ SteadyCycle
//	      │                    │
//	      │                    ├──failure/panic──▶ ResetRequested (after one sleep)
//	      │                    └──interrupt──────▶ InterruptedHalt
//	      └──misconfigured──▶ FatalHalt
//
// Every failure in the steady cycle ends the process with a reset request
// instead of an in-process retry: the next boot re-runs the whole bootstrap,
// including re-arming the watchdog. Both halt states re-arm the watchdog
// with watchdog.LongTimeout because it cannot be switched off.
//
// Lower layers report tagged results and never sleep, retry, or reset.
// All of that policy lives here.
package supervisor
