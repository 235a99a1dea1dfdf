package keystore

import "errors"

// Domain errors for the keystore package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, keystore.ErrStorage) {
//	    // cannot persist configuration, abort boot
//	}
var (
	// ErrStorage is returned when the backing store cannot be read or written.
	ErrStorage = errors.New("keystore: storage failure")

	// ErrConfigurationMissing is returned when a required key is absent and
	// no value could be obtained from the operator.
	ErrConfigurationMissing = errors.New("keystore: configuration missing")

	// ErrNoTerminal is returned by TerminalPrompter when stdin is not a terminal.
	ErrNoTerminal = errors.New("keystore: no interactive terminal")

	// ErrInvalidValue is returned by a Question's validator.
	ErrInvalidValue = errors.New("keystore: invalid value")
)
