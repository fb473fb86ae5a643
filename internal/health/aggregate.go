package health

import (
	"fmt"
	"strings"
)

// NarrativeSeparator precedes every narrative entry. Web front ends render
// it as a line break while the plugin output stays on one physical line.
const NarrativeSeparator = " </br>"

// Counts accumulates component severities in arrival order.
type Counts struct {
	Healthy int
	Unknown int
	Faulty  int
	Total   int

	fullOutput bool
	entries    []string
}

// NewCounts returns an empty accumulator. With fullOutput set every
// component gets a narrative entry, otherwise only non-healthy ones do.
func NewCounts(fullOutput bool) *Counts {
	return &Counts{fullOutput: fullOutput}
}

// Add folds one result into the counts.
func (c *Counts) Add(r ComponentResult) {
	sev := Classify(r.RawStatus)
	switch sev {
	case Healthy:
		c.Healthy++
	case Faulty:
		c.Faulty++
	default:
		c.Unknown++
	}
	c.Total++

	if c.fullOutput || sev != Healthy {
		c.entries = append(c.entries, fmt.Sprintf("%s %s reported status %s.", r.Identifier, r.Category, sev))
	}
}

// AddAll folds results in order.
func (c *Counts) AddAll(results []ComponentResult) {
	for _, r := range results {
		c.Add(r)
	}
}

// Entries returns a copy of the narrative entries.
func (c *Counts) Entries() []string {
	return append([]string(nil), c.entries...)
}

// Narrative renders the entries as one string.
func (c *Counts) Narrative() string {
	var sb strings.Builder
	for _, e := range c.entries {
		sb.WriteString(NarrativeSeparator)
		sb.WriteString(e)
	}
	return sb.String()
}

// Fold classifies and counts results.
func Fold(results []ComponentResult, fullOutput bool) *Counts {
	c := NewCounts(fullOutput)
	c.AddAll(results)
	return c
}
