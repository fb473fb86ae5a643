package check

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jandubois/check-oceanstor/internal/guard"
	"github.com/jandubois/check-oceanstor/internal/health"
	"github.com/jandubois/check-oceanstor/internal/oceanstor"
	"github.com/jandubois/check-oceanstor/internal/probe"
)

type fakeSession struct {
	loginErr   error
	components map[string][]health.ComponentResult
	fetchErr   map[string]error
	block      string // category whose fetch blocks until ctx is done
	slowLogout bool   // logout blocks until its ctx is done

	mu      sync.Mutex
	fetched []string
	logouts int
}

func (f *fakeSession) Login(ctx context.Context) error {
	return f.loginErr
}

func (f *fakeSession) Logout(ctx context.Context) {
	f.mu.Lock()
	f.logouts++
	f.mu.Unlock()

	if f.slowLogout {
		<-ctx.Done()
	}
}

func (f *fakeSession) FetchCategory(ctx context.Context, cat oceanstor.Category) ([]health.ComponentResult, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, cat.Name)
	f.mu.Unlock()

	if cat.Name == f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := f.fetchErr[cat.Name]; err != nil {
		return nil, err
	}
	return f.components[cat.Name], nil
}

func (f *fakeSession) logoutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logouts
}

func TestRun(t *testing.T) {
	tests := []struct {
		name         string
		session      *fakeSession
		fullOutput   bool
		wantStatus   probe.Status
		wantMessage  string
		wantContains []string
		wantFetched  int
	}{
		{
			name: "faulty disk",
			session: &fakeSession{components: map[string][]health.ComponentResult{
				"disk": {
					{RawStatus: 1, Category: "Disk", Identifier: "D1"},
					{RawStatus: 2, Category: "Disk", Identifier: "D2"},
				},
				"fc_port": {{RawStatus: 1, Category: "FC Port", Identifier: "F1"}},
			}},
			wantStatus:   probe.StatusCritical,
			wantContains: []string{"CRITICAL: 1/3 components reported FAULTY.", "D2 Disk reported status FAULTY"},
			wantFetched:  5,
		},
		{
			name: "all healthy",
			session: &fakeSession{components: map[string][]health.ComponentResult{
				"disk": {{RawStatus: 1, Category: "Disk", Identifier: "D1"}},
			}},
			wantStatus:  probe.StatusOK,
			wantMessage: "OK: 1/1 components are healthy. ",
			wantFetched: 5,
		},
		{
			name: "unknown enclosure",
			session: &fakeSession{components: map[string][]health.ComponentResult{
				"enclosure": {{RawStatus: 0, Category: "Enclosure", Identifier: "E1"}},
			}},
			wantStatus:   probe.StatusUnknown,
			wantContains: []string{"UNKNOWN: 1/1 components reported UNKNOWN.", "E1 Enclosure reported status UNKNOWN."},
			wantFetched:  5,
		},
		{
			name:        "empty array",
			session:     &fakeSession{},
			wantStatus:  probe.StatusOK,
			wantMessage: "OK: 0/0 components are healthy. ",
			wantFetched: 5,
		},
		{
			name:        "login failure",
			session:     &fakeSession{loginErr: errors.New("bad creds")},
			wantStatus:  probe.StatusCritical,
			wantMessage: "CRITICAL: Login failed: bad creds",
			wantFetched: 0,
		},
		{
			name: "fetch failure stops remaining categories",
			session: &fakeSession{
				components: map[string][]health.ComponentResult{
					"enclosure": {{RawStatus: 2, Category: "Enclosure", Identifier: "E1"}},
				},
				fetchErr: map[string]error{"controller": errors.New("connection reset by peer")},
			},
			wantStatus:  probe.StatusCritical,
			wantMessage: "CRITICAL: Exception while accessing the device: connection reset by peer",
			wantFetched: 2,
		},
		{
			name: "full output lists healthy components",
			session: &fakeSession{components: map[string][]health.ComponentResult{
				"controller": {{RawStatus: 1, Category: "Controller", Identifier: "0A"}},
			}},
			fullOutput:  true,
			wantStatus:  probe.StatusOK,
			wantMessage: "OK: 1/1 components are healthy.  </br>0A Controller reported status NORMAL.",
			wantFetched: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Run(context.Background(), tt.session, Options{FullOutput: tt.fullOutput})

			if result.Status != tt.wantStatus {
				t.Errorf("expected status %v, got %v", tt.wantStatus, result.Status)
			}
			if tt.wantMessage != "" && result.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, result.Message)
			}
			for _, s := range tt.wantContains {
				if !strings.Contains(result.Message, s) {
					t.Errorf("expected %q in message %q", s, result.Message)
				}
			}
			if len(tt.session.fetched) != tt.wantFetched {
				t.Errorf("expected %d fetches, got %v", tt.wantFetched, tt.session.fetched)
			}
			if n := tt.session.logoutCount(); n != 1 {
				t.Errorf("expected one logout, got %d", n)
			}
		})
	}
}

func TestRunCategoryOrder(t *testing.T) {
	s := &fakeSession{components: map[string][]health.ComponentResult{
		"enclosure":  {{RawStatus: 2, Category: "Enclosure", Identifier: "E1"}},
		"controller": {{RawStatus: 2, Category: "Controller", Identifier: "0A"}},
		"disk":       {{RawStatus: 2, Category: "Disk", Identifier: "D1"}},
		"eth_port":   {{RawStatus: 2, Category: "ETH Port", Identifier: "P1"}},
		"fc_port":    {{RawStatus: 2, Category: "FC Port", Identifier: "F1"}},
	}}

	result := Run(context.Background(), s, Options{})

	order := []string{"E1 Enclosure", "0A Controller", "D1 Disk", "P1 ETH Port", "F1 FC Port"}
	last := -1
	for _, want := range order {
		idx := strings.Index(result.Message, want)
		if idx < 0 {
			t.Fatalf("missing %q in %q", want, result.Message)
		}
		if idx < last {
			t.Errorf("%q out of order in %q", want, result.Message)
		}
		last = idx
	}
	if !strings.HasPrefix(result.Message, "CRITICAL: 5/5 components reported FAULTY.") {
		t.Errorf("unexpected message: %q", result.Message)
	}
}

func TestRunCustomCategories(t *testing.T) {
	s := &fakeSession{}
	Run(context.Background(), s, Options{Categories: []oceanstor.Category{{Name: "disk", Label: "Disk"}}})
	if len(s.fetched) != 1 || s.fetched[0] != "disk" {
		t.Errorf("expected only disk to be fetched, got %v", s.fetched)
	}
}

func TestRunUnderGuardTimeout(t *testing.T) {
	s := &fakeSession{
		components: map[string][]health.ComponentResult{
			"enclosure": {{RawStatus: 2, Category: "Enclosure", Identifier: "E1"}},
		},
		block: "disk",
	}

	result := guard.Run(context.Background(), 200*time.Millisecond, Body(s, Options{LogoutTimeout: 50 * time.Millisecond}))

	if result.Status != probe.StatusUnknown {
		t.Errorf("expected status %v, got %v", probe.StatusUnknown, result.Status)
	}
	if result.Message != guard.TimeoutMessage {
		t.Errorf("expected message %q, got %q", guard.TimeoutMessage, result.Message)
	}
	if strings.Contains(result.Message, "E1") {
		t.Error("partial counts must not be reported")
	}
	if n := s.logoutCount(); n != 1 {
		t.Errorf("expected logout during cleanup reserve, got %d", n)
	}
}

func TestRunUnderGuardSlowLogout(t *testing.T) {
	s := &fakeSession{
		components: map[string][]health.ComponentResult{
			"disk": {
				{RawStatus: 1, Category: "Disk", Identifier: "D1"},
				{RawStatus: 2, Category: "Disk", Identifier: "D2"},
			},
		},
		slowLogout: true,
	}

	start := time.Now()
	result := guard.Run(context.Background(), 300*time.Millisecond, Body(s, Options{LogoutTimeout: 2 * time.Second}))
	elapsed := time.Since(start)

	if result.Status != probe.StatusCritical {
		t.Fatalf("expected status %v, got %v: %s", probe.StatusCritical, result.Status, result.Message)
	}
	if !strings.Contains(result.Message, "D2 Disk reported status FAULTY") {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if n := s.logoutCount(); n != 1 {
		t.Errorf("expected one logout, got %d", n)
	}
	if elapsed > time.Second {
		t.Errorf("guard returned after %s with a 300ms deadline", elapsed)
	}
}

func TestRunDeliversBeforeLogout(t *testing.T) {
	s := &fakeSession{}
	var logoutsAtDelivery int
	opts := Options{deliver: func(*probe.Result) { logoutsAtDelivery = s.logoutCount() }}

	result := Run(context.Background(), s, opts)

	if result.Status != probe.StatusOK {
		t.Errorf("expected status %v, got %v", probe.StatusOK, result.Status)
	}
	if logoutsAtDelivery != 0 {
		t.Errorf("verdict delivered after logout")
	}
	if n := s.logoutCount(); n != 1 {
		t.Errorf("expected one logout, got %d", n)
	}
}
