// Package config holds the settings of one check invocation, merged from an
// optional YAML file, the environment and command-line flags.
package config

import (
	"time"

	"github.com/jandubois/check-oceanstor/internal/oceanstor"
)

// DefaultTimeoutSeconds is the overall check deadline.
const DefaultTimeoutSeconds = 10

// PasswordEnv is read when no password is given on the command line or in
// the config file.
const PasswordEnv = "OCEANSTOR_PASSWORD"

// Config holds the settings for a check.
type Config struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	SystemID       string `yaml:"system_id"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	TimeoutSeconds int    `yaml:"timeout"`
	FullOutput     bool   `yaml:"full_output"`
	VerifyTLS      bool   `yaml:"verify_tls"`
	PerfData       bool   `yaml:"perfdata"`
}

// Timeout returns the overall deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Client returns the connection settings for the array client. Each HTTP
// request is bounded by the overall deadline as well.
func (c *Config) Client() oceanstor.Config {
	return oceanstor.Config{
		Host:      c.Host,
		Port:      c.Port,
		SystemID:  c.SystemID,
		Username:  c.Username,
		Password:  c.Password,
		VerifyTLS: c.VerifyTLS,
		Timeout:   c.Timeout(),
	}
}
