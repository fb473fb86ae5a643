// Package guard bounds the wall-clock time of a check and converts
// timeouts, interrupts and panics into UNKNOWN results.
package guard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	units "github.com/docker/go-units"
	"github.com/jandubois/check-oceanstor/internal/probe"
)

// TimeoutMessage is reported when the deadline elapses or the check is
// interrupted.
const TimeoutMessage = "UNKNOWN: Timeout contacting device or Ctrl+C"

// maxCleanup caps the part of the deadline reserved for the body to
// release its resources after it has been cancelled.
const maxCleanup = time.Second

// Body is the guarded work. It hands its verdict to deliver and may keep
// running afterwards to release resources. It must return promptly once ctx
// is done but is not required to.
type Body func(ctx context.Context, deliver func(*probe.Result))

// TimeoutResult returns the fixed result for an expired or interrupted check.
func TimeoutResult() *probe.Result {
	return &probe.Result{
		Status:  probe.StatusUnknown,
		Message: TimeoutMessage,
	}
}

// Run executes body under a deadline of timeout. A verdict delivered before
// the deadline is returned once body finishes its cleanup or the deadline
// passes, whichever comes first. If the deadline passes or parent is
// cancelled before a verdict arrives, Run returns TimeoutResult after the
// same bounded wait. A short cleanup reserve is carved out of the deadline,
// so the total time spent in Run never exceeds timeout. A panic in body is
// reported as UNKNOWN.
func Run(parent context.Context, timeout time.Duration, body Body) *probe.Result {
	deadline := time.Now().Add(timeout)
	cleanup := cleanupReserve(timeout)

	ctx, cancel := context.WithDeadline(parent, deadline.Add(-cleanup))
	defer cancel()

	delivered := make(chan *probe.Result, 1)
	var once sync.Once
	deliver := func(result *probe.Result) {
		once.Do(func() { delivered <- result })
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("check panicked", "panic", r)
				deliver(&probe.Result{
					Status:  probe.StatusUnknown,
					Message: fmt.Sprintf("%s: Internal error: %v", probe.StatusUnknown, r),
				})
			}
		}()
		body(ctx, deliver)
		deliver(nil)
	}()

	var result *probe.Result
	accepted := false
	select {
	case result = <-delivered:
		// A verdict delivered after cancellation reports on aborted work.
		accepted = ctx.Err() == nil
	case <-ctx.Done():
	}
	if !accepted {
		logCancelled(parent, timeout)
	}

	waitForCleanup(finished, deadline, cleanup)

	switch {
	case !accepted:
		return TimeoutResult()
	case result == nil:
		return &probe.Result{
			Status:  probe.StatusUnknown,
			Message: fmt.Sprintf("%s: Internal error: check produced no result", probe.StatusUnknown),
		}
	default:
		return result
	}
}

// waitForCleanup gives the body until deadline to release its session.
func waitForCleanup(finished <-chan struct{}, deadline time.Time, cleanup time.Duration) {
	wait := time.NewTimer(time.Until(deadline))
	defer wait.Stop()
	select {
	case <-finished:
	case <-wait.C:
		slog.Debug("abandoning cleanup at deadline", "reserve", cleanup)
	}
}

func logCancelled(parent context.Context, timeout time.Duration) {
	if parent.Err() != nil {
		slog.Warn("check interrupted")
		return
	}
	slog.Warn("check timed out", "timeout", units.HumanDuration(timeout))
}

func cleanupReserve(timeout time.Duration) time.Duration {
	return min(timeout/10, maxCleanup)
}
