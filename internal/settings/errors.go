package settings

import "errors"

var (
	// ErrInvalidSetting is returned when a stored value cannot be parsed.
	// The key must be forgotten and re-entered.
	ErrInvalidSetting = errors.New("settings: invalid stored value")
)
