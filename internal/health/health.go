// Package health classifies component statuses reported by the array and
// reduces them to a single verdict.
package health

// Raw status codes used by the array management API.
const (
	RawUnknown = 0
	RawNormal  = 1
	RawFault   = 2
)

// ComponentResult is the health of one physical or logical unit as
// reported by the array.
type ComponentResult struct {
	RawStatus  int
	Category   string // display label, e.g. "Disk" or "FC Port"
	Identifier string // serial number, location or array id; may be empty
}

// Severity is the normalized health of a single component.
type Severity int

const (
	Healthy Severity = iota
	Unknown
	Faulty
)

// String returns the word used in the output narrative.
func (s Severity) String() string {
	switch s {
	case Healthy:
		return "NORMAL"
	case Faulty:
		return "FAULTY"
	default:
		return "UNKNOWN"
	}
}

// Classify maps a raw status code to a Severity. Codes other than the
// three documented ones are Unknown, never Healthy.
func Classify(raw int) Severity {
	switch raw {
	case RawNormal:
		return Healthy
	case RawFault:
		return Faulty
	default:
		return Unknown
	}
}
