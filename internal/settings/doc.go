// Package settings resolves the agent's operator settings from the key store.
//
// Settings are read once at boot and are immutable afterwards. Missing keys
// are prompted for in a fixed order (connection, interval, pin, token, then
// any sensor calibration) and persisted before the supervisory loop starts.
// The device identity is generated on first boot and never prompted for.
package settings
