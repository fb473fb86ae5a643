// Package report writes a check result in Nagios plugin format and exits
// with the matching code.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"

	nagios "github.com/atc0005/go-nagios"
	"github.com/jandubois/check-oceanstor/internal/probe"
)

// Reporter emits exactly one result per process.
type Reporter struct {
	// PerfData appends the component counts as performance data.
	PerfData bool

	out    io.Writer
	noExit bool
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithOutput redirects the plugin output, which goes to stdout by default.
func WithOutput(w io.Writer) Option {
	return func(r *Reporter) { r.out = w }
}

// WithoutExit makes Report return instead of terminating the process.
func WithoutExit() Option {
	return func(r *Reporter) { r.noExit = true }
}

// New creates a Reporter.
func New(perfData bool, opts ...Option) *Reporter {
	r := &Reporter{PerfData: perfData}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report writes the result and exits with its code. It only returns when
// the Reporter was created WithoutExit.
//
// Without performance data the message is written verbatim as one line.
// go-nagios trims trailing blanks from the service output and only ends the
// line when performance data follows, so it renders the perfdata form only.
func (r *Reporter) Report(result *probe.Result) {
	slog.Debug("reporting result", "status", result.Status, "exit_code", result.ExitCode())

	if r.PerfData && len(result.Metrics) > 0 {
		r.plugin(result).ReturnCheckResults()
		return
	}

	fmt.Fprintln(r.output(), result.Message)
	if !r.noExit {
		os.Exit(result.ExitCode())
	}
}

func (r *Reporter) output() io.Writer {
	if r.out == nil {
		return os.Stdout
	}
	return r.out
}

func (r *Reporter) plugin(result *probe.Result) *nagios.Plugin {
	plugin := nagios.NewPlugin()
	plugin.SetOutputTarget(r.output())
	if r.noExit {
		plugin.SkipOSExit()
	}

	plugin.ServiceOutput = result.Message
	plugin.ExitStatusCode = result.ExitCode()

	if err := plugin.AddPerfData(false, perfData(result.Metrics)...); err != nil {
		slog.Warn("failed to add performance data", "error", err)
	}
	return plugin
}

// Report writes the result to stdout and exits.
func Report(result *probe.Result, perfData bool) {
	New(perfData).Report(result)
}

func perfData(metrics map[string]int) []nagios.PerformanceData {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := make([]nagios.PerformanceData, 0, len(keys))
	for _, k := range keys {
		data = append(data, nagios.PerformanceData{
			Label: k,
			Value: strconv.Itoa(metrics[k]),
			Min:   "0",
		})
	}
	return data
}
