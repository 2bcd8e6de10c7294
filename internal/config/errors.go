package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is matched by every ConfigError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a missing or out-of-range setting. It is always fatal and
// raised before any frame is processed.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
