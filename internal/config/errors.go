package config

import "github.com/san-kum/latctl/internal/lateral"

// ConfigError is re-exported so callers can match field errors without
// importing lateral.
type ConfigError = lateral.ConfigError
