// Package probe defines the check result model shared by the probe body,
// the execution guard and the reporter.
package probe

import nagios "github.com/atc0005/go-nagios"

// Status is the overall state of one check invocation, ordered by the
// Nagios plugin convention.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusCritical
	StatusUnknown
)

// String returns the upper-case label the monitoring system expects at the
// start of the output line.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return nagios.StateOKLabel
	case StatusWarning:
		return nagios.StateWARNINGLabel
	case StatusCritical:
		return nagios.StateCRITICALLabel
	default:
		return nagios.StateUNKNOWNLabel
	}
}

// ExitCode returns the process exit code for the status.
// Anything outside the known range reports UNKNOWN.
func (s Status) ExitCode() int {
	switch s {
	case StatusOK:
		return nagios.StateOKExitCode
	case StatusWarning:
		return nagios.StateWARNINGExitCode
	case StatusCritical:
		return nagios.StateCRITICALExitCode
	default:
		return nagios.StateUNKNOWNExitCode
	}
}

// Result is the final verdict of a check. Message is the complete output
// line, including the leading status label.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Metrics map[string]int `json:"metrics,omitempty"`
}

// ExitCode is shorthand for r.Status.ExitCode().
func (r *Result) ExitCode() int {
	return r.Status.ExitCode()
}

// Description is the self-description format for probes.
type Description struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	Arguments   Arguments `json:"arguments"`
}

// Arguments describes required and optional probe arguments.
type Arguments struct {
	Required map[string]ArgumentSpec `json:"required,omitempty"`
	Optional map[string]ArgumentSpec `json:"optional,omitempty"`
}

// ArgumentSpec describes a single argument.
type ArgumentSpec struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}
