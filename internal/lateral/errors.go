package lateral

import (
	"errors"
	"fmt"
)

// Domain errors for configuration and arbitration.
var (
	// ErrInvalidController indicates an unknown controller id or name.
	ErrInvalidController = errors.New("lateral: invalid controller id")

	// ErrInvalidMode indicates an unknown blend mode.
	ErrInvalidMode = errors.New("lateral: invalid blend mode")

	// ErrInvalidBreakpoints indicates breakpoints that are not a strictly increasing pair.
	ErrInvalidBreakpoints = errors.New("lateral: breakpoints must be a strictly increasing pair")

	// ErrInvalidMethods indicates a method list that is not exactly three controllers.
	ErrInvalidMethods = errors.New("lateral: method list must hold exactly three controllers")

	// ErrInvalidTuning indicates a controller tuning that cannot be used.
	ErrInvalidTuning = errors.New("lateral: invalid controller tuning")

	// ErrNotConfigured indicates a controller id that has no constructed facade.
	ErrNotConfigured = errors.New("lateral: controller not configured")
)

// ConfigError wraps a configuration error with the offending field.
type ConfigError struct {
	Field   string
	Value   any
	Hint    string
	Wrapped error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s=%v: %v", e.Field, e.Value, e.Wrapped)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}
