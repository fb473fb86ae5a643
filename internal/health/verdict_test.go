package health

import (
	"strings"
	"testing"

	"github.com/jandubois/check-oceanstor/internal/probe"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		results      []ComponentResult
		wantStatus   probe.Status
		wantExit     int
		wantContains []string
	}{
		{
			name: "faulty disk",
			results: []ComponentResult{
				{RawStatus: 1, Category: "Disk", Identifier: "D1"},
				{RawStatus: 2, Category: "Disk", Identifier: "D2"},
				{RawStatus: 1, Category: "FC Port", Identifier: "F1"},
			},
			wantStatus:   probe.StatusCritical,
			wantExit:     2,
			wantContains: []string{"CRITICAL: ", "1/3", "D2 Disk reported status FAULTY"},
		},
		{
			name:         "single healthy disk",
			results:      []ComponentResult{{RawStatus: 1, Category: "Disk", Identifier: "D1"}},
			wantStatus:   probe.StatusOK,
			wantExit:     0,
			wantContains: []string{"OK: ", "1/1"},
		},
		{
			name:         "unknown enclosure",
			results:      []ComponentResult{{RawStatus: 0, Category: "Enclosure", Identifier: "E1"}},
			wantStatus:   probe.StatusUnknown,
			wantExit:     3,
			wantContains: []string{"UNKNOWN: ", "1/1", "UNKNOWN"},
		},
		{
			name:         "no components",
			wantStatus:   probe.StatusOK,
			wantExit:     0,
			wantContains: []string{"OK: 0/0 components are healthy."},
		},
		{
			name: "faulty dominates unknown and healthy",
			results: []ComponentResult{
				{RawStatus: 0, Category: "Enclosure", Identifier: "E1"},
				{RawStatus: 1, Category: "Controller", Identifier: "0A"},
				{RawStatus: 1, Category: "Controller", Identifier: "0B"},
				{RawStatus: 2, Category: "FC Port", Identifier: "F9"},
			},
			wantStatus:   probe.StatusCritical,
			wantExit:     2,
			wantContains: []string{"1/4 components reported FAULTY"},
		},
		{
			name: "unknown count reported, not faulty count",
			results: []ComponentResult{
				{RawStatus: 0, Category: "Disk", Identifier: "D1"},
				{RawStatus: 4, Category: "Disk", Identifier: "D2"},
				{RawStatus: 1, Category: "Disk", Identifier: "D3"},
			},
			wantStatus:   probe.StatusUnknown,
			wantExit:     3,
			wantContains: []string{"UNKNOWN: 2/3 components reported UNKNOWN."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Resolve(Fold(tt.results, false))
			if result.Status != tt.wantStatus {
				t.Errorf("expected status %v, got %v", tt.wantStatus, result.Status)
			}
			if result.ExitCode() != tt.wantExit {
				t.Errorf("expected exit code %d, got %d", tt.wantExit, result.ExitCode())
			}
			for _, s := range tt.wantContains {
				if !strings.Contains(result.Message, s) {
					t.Errorf("expected %q in message %q", s, result.Message)
				}
			}
		})
	}
}

func TestResolveExactMessage(t *testing.T) {
	result := Resolve(Fold([]ComponentResult{
		{RawStatus: 1, Category: "Disk", Identifier: "D1"},
		{RawStatus: 2, Category: "Disk", Identifier: "D2"},
	}, false))

	want := "CRITICAL: 1/2 components reported FAULTY.  </br>D2 Disk reported status FAULTY."
	if result.Message != want {
		t.Errorf("got  %q\nwant %q", result.Message, want)
	}
}

func TestResolveNeverWarns(t *testing.T) {
	for raw := -3; raw <= 5; raw++ {
		result := Resolve(Fold([]ComponentResult{{RawStatus: raw, Category: "Disk"}}, true))
		if result.Status == probe.StatusWarning {
			t.Errorf("raw status %d produced WARNING", raw)
		}
	}
}

func TestResolveMetrics(t *testing.T) {
	result := Resolve(Fold([]ComponentResult{
		{RawStatus: 1}, {RawStatus: 1}, {RawStatus: 0}, {RawStatus: 2},
	}, false))

	want := map[string]int{"healthy": 2, "unknown": 1, "faulty": 1, "total": 4}
	for k, v := range want {
		if result.Metrics[k] != v {
			t.Errorf("metric %s: expected %d, got %d", k, v, result.Metrics[k])
		}
	}
}
