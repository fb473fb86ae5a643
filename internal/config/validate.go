package config

import (
	"fmt"
	"strings"

	"github.com/jandubois/check-oceanstor/internal/oceanstor"
)

// UsageError reports an invocation that cannot run a check at all. It is
// not a monitoring state.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// Validate checks that every required setting is present.
// It does not modify cfg.
func Validate(cfg *Config) error {
	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "host")
	}
	if cfg.SystemID == "" {
		missing = append(missing, "system")
	}
	if cfg.Username == "" {
		missing = append(missing, "username")
	}
	if cfg.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return &UsageError{Msg: "missing required arguments: " + strings.Join(missing, ", ")}
	}

	if cfg.TimeoutSeconds < 0 {
		return &UsageError{Msg: fmt.Sprintf("timeout must be positive, got %d", cfg.TimeoutSeconds)}
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return &UsageError{Msg: fmt.Sprintf("port out of range: %d", cfg.Port)}
	}

	return nil
}

// Normalize fills in defaults for a validated config.
func Normalize(cfg *Config) {
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Port == 0 {
		cfg.Port = oceanstor.DefaultPort
	}
}
