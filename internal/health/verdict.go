package health

import (
	"fmt"

	"github.com/jandubois/check-oceanstor/internal/probe"
)

// Resolve picks the overall status. Any faulty component makes the check
// CRITICAL; otherwise any unknown component makes it UNKNOWN; otherwise it
// is OK, including when no components were reported at all.
func Resolve(c *Counts) *probe.Result {
	result := &probe.Result{
		Metrics: map[string]int{
			"healthy": c.Healthy,
			"unknown": c.Unknown,
			"faulty":  c.Faulty,
			"total":   c.Total,
		},
	}

	switch {
	case c.Faulty > 0:
		result.Status = probe.StatusCritical
		result.Message = fmt.Sprintf("%s: %d/%d components reported FAULTY. %s",
			result.Status, c.Faulty, c.Total, c.Narrative())
	case c.Unknown > 0:
		result.Status = probe.StatusUnknown
		result.Message = fmt.Sprintf("%s: %d/%d components reported UNKNOWN. %s",
			result.Status, c.Unknown, c.Total, c.Narrative())
	default:
		result.Status = probe.StatusOK
		result.Message = fmt.Sprintf("%s: %d/%d components are healthy. %s",
			result.Status, c.Healthy, c.Total, c.Narrative())
	}

	return result
}
