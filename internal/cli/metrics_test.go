package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/staffplan/internal/observability"
)

// --- parseSinceDuration unit tests ---

func TestParseSinceDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		errMsg  string
	}{
		{"empty defaults to 7d", "", false, ""},
		{"whitespace defaults to 7d", "  ", false, ""},
		{"valid 7d", "7d", false, ""},
		{"valid 30d", "30d", false, ""},
		{"valid 24h", "24h", false, ""},
		{"invalid suffix", "abc", true, "unsupported duration format"},
		{"invalid day number", "xd", true, "invalid day duration"},
		{"invalid hour number", "yh", true, "invalid hour duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSinceDuration(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// --- metricsCmd tests ---

type metricsMock struct {
	calcFn func(since time.Time) (*observability.SolveMetrics, error)
}

func (m *metricsMock) Calculate(since time.Time) (*observability.SolveMetrics, error) {
	return m.calcFn(since)
}

// withMetrics swaps the metrics calculator and flags for the duration of a test.
func withMetrics(t *testing.T, mc observability.MetricsCalculator, since string, asJSON bool) *bytes.Buffer {
	t.Helper()
	orig, origSince, origJSON := MetricsCalc, metricsSince, metricsJSON
	t.Cleanup(func() {
		MetricsCalc = orig
		metricsSince = origSince
		metricsJSON = origJSON
	})
	MetricsCalc, metricsSince, metricsJSON = mc, since, asJSON

	var out bytes.Buffer
	metricsCmd.SetOut(&out)
	return &out
}

func sampleMetrics() *observability.SolveMetrics {
	return &observability.SolveMetrics{
		Runs:              2,
		Solves:            5,
		Phases:            4,
		SolvesByStatus:    map[string]int{"optimal": 4, "infeasible": 1},
		SolvesByObjective: map[string]int{"cost": 3, "duration": 2},
		RunsByMode:        map[string]int{"lexicographic": 2},
		TotalSolveSeconds: 12.5,
		MaxSolveSeconds:   6,
		LastRunID:         "run-2",
		EventCount:        42,
	}
}

func TestMetricsCmd_NilCalculator(t *testing.T) {
	withMetrics(t, nil, "7d", false)

	err := metricsCmd.RunE(metricsCmd, []string{})
	if err == nil {
		t.Fatal("expected error when MetricsCalc is nil")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMetricsCmd_InvalidSinceFormat(t *testing.T) {
	mc := &metricsMock{
		calcFn: func(since time.Time) (*observability.SolveMetrics, error) {
			return &observability.SolveMetrics{}, nil
		},
	}

	for _, since := range []string{"abc", "xd", "yh"} {
		t.Run(since, func(t *testing.T) {
			withMetrics(t, mc, since, false)
			if err := metricsCmd.RunE(metricsCmd, []string{}); err == nil || !strings.Contains(err.Error(), "parsing --since") {
				t.Errorf("expected --since error, got %v", err)
			}
		})
	}
}

func TestMetricsCmd_Success_TableFormat(t *testing.T) {
	mc := &metricsMock{
		calcFn: func(since time.Time) (*observability.SolveMetrics, error) {
			return sampleMetrics(), nil
		},
	}
	out := withMetrics(t, mc, "7d", false)

	if err := metricsCmd.RunE(metricsCmd, []string{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := out.String()
	for _, w := range []string{"Planning runs:", "12.5s", "lexicographic:", "infeasible:", "run-2"} {
		if !strings.Contains(text, w) {
			t.Errorf("table output missing %q:\n%s", w, text)
		}
	}
	if strings.Index(text, "cost:") > strings.Index(text, "duration:") {
		t.Error("counts should be listed in sorted order")
	}
}

func TestMetricsCmd_Success_JSONFormat(t *testing.T) {
	mc := &metricsMock{
		calcFn: func(since time.Time) (*observability.SolveMetrics, error) {
			return sampleMetrics(), nil
		},
	}
	out := withMetrics(t, mc, "7d", true)

	if err := metricsCmd.RunE(metricsCmd, []string{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var m observability.SolveMetrics
	if err := json.Unmarshal(out.Bytes(), &m); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if m.Solves != 5 || m.EventCount != 42 {
		t.Errorf("decoded metrics = %+v", m)
	}
}

func TestMetricsCmd_CalculateError(t *testing.T) {
	mc := &metricsMock{
		calcFn: func(since time.Time) (*observability.SolveMetrics, error) {
			return nil, fmt.Errorf("event log corrupted")
		},
	}
	withMetrics(t, mc, "7d", false)

	err := metricsCmd.RunE(metricsCmd, []string{})
	if err == nil {
		t.Fatal("expected error from Calculate")
	}
	if !strings.Contains(err.Error(), "calculating metrics") {
		t.Errorf("unexpected error: %v", err)
	}
}
