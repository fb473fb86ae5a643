// Package check runs one health check against an array: login, one query
// per component category, aggregation and verdict.
package check

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jandubois/check-oceanstor/internal/guard"
	"github.com/jandubois/check-oceanstor/internal/health"
	"github.com/jandubois/check-oceanstor/internal/oceanstor"
	"github.com/jandubois/check-oceanstor/internal/probe"
)

// DefaultLogoutTimeout bounds the logout call made on every exit path.
const DefaultLogoutTimeout = 5 * time.Second

// Session is the array client used by a check.
type Session interface {
	// Login opens a session.
	Login(ctx context.Context) error
	// Logout releases the session. It must be safe to call after a failed
	// or partial login and must not block past ctx.
	Logout(ctx context.Context)
	// FetchCategory lists the components of one category.
	FetchCategory(ctx context.Context, cat oceanstor.Category) ([]health.ComponentResult, error)
}

// Options control a check run.
type Options struct {
	Categories    []oceanstor.Category // defaults to oceanstor.DefaultCategories
	FullOutput    bool
	LogoutTimeout time.Duration

	deliver func(*probe.Result)
}

// Body adapts Run to guard.Run. The verdict is delivered before the session
// is released, so a slow logout cannot turn it into a timeout.
func Body(s Session, opts Options) guard.Body {
	return func(ctx context.Context, deliver func(*probe.Result)) {
		opts.deliver = deliver
		Run(ctx, s, opts)
	}
}

// Run performs the check. Login and fetch failures are CRITICAL and stop
// the run; partial counts are never reported.
func Run(ctx context.Context, s Session, opts Options) *probe.Result {
	logoutTimeout := opts.LogoutTimeout
	if logoutTimeout == 0 {
		logoutTimeout = DefaultLogoutTimeout
	}

	// Logout also runs after a failed login, and after ctx is cancelled.
	defer func() {
		logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
		defer cancel()
		s.Logout(logoutCtx)
	}()

	result := evaluate(ctx, s, opts)
	if opts.deliver != nil {
		opts.deliver(result)
	}
	return result
}

func evaluate(ctx context.Context, s Session, opts Options) *probe.Result {
	categories := opts.Categories
	if categories == nil {
		categories = oceanstor.DefaultCategories
	}

	if err := s.Login(ctx); err != nil {
		slog.Info("login failed", "error", err)
		return &probe.Result{
			Status:  probe.StatusCritical,
			Message: fmt.Sprintf("%s: Login failed: %v", probe.StatusCritical, err),
		}
	}

	counts := health.NewCounts(opts.FullOutput)
	for _, cat := range categories {
		results, err := s.FetchCategory(ctx, cat)
		if err != nil {
			slog.Info("fetch failed", "category", cat.Name, "error", err)
			return &probe.Result{
				Status:  probe.StatusCritical,
				Message: fmt.Sprintf("%s: Exception while accessing the device: %v", probe.StatusCritical, err),
			}
		}
		counts.AddAll(results)
	}

	result := health.Resolve(counts)
	slog.Info("check completed",
		"status", result.Status,
		"healthy", counts.Healthy,
		"unknown", counts.Unknown,
		"faulty", counts.Faulty,
		"total", counts.Total,
	)
	return result
}
