// Package status forwards cycle outcomes to optional indicators.
//
// Indicators are best-effort: they never return errors to the supervisor
// and an absent or broken indicator does not change the agent's behaviour.
package status
