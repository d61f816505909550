package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/Adityad84/neural-track/internal/defect"
)

// mockProvider returns a canned response or error, optionally after a delay.
type mockProvider struct {
	response string
	err      error
	delay    time.Duration

	lastSystem string
	lastUser   string
}

func (m *mockProvider) Complete(ctx context.Context, system, user string) (string, error) {
	m.lastSystem = system
	m.lastUser = user

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.response, m.err
}

const validResponse = `{
	"root_cause": "Thermal expansion stress",
	"severity": "Critical",
	"immediate_action": "Stop traffic on the affected section",
	"resolution_steps": "1. Close the section. 2. Replace the rail segment.",
	"preventive_recommendations": "Install expansion joints"
}`

func TestClassify_ValidResponse(t *testing.T) {
	t.Parallel()

	p := &mockProvider{response: validResponse}
	c := NewClassifier(p, time.Second, log.Nop(), nil)

	a := c.Classify(context.Background(), "rail break", 98, "Lat: 12.9, Lon: 77.5, KM: 42/3, Station: Central")

	if a.Severity != defect.SeverityCritical {
		t.Errorf("severity = %q, want Critical", a.Severity)
	}
	if a.RootCause != "Thermal expansion stress" {
		t.Errorf("root cause = %q", a.RootCause)
	}
	if a.ImmediateAction != "Stop traffic on the affected section" {
		t.Errorf("immediate action = %q", a.ImmediateAction)
	}
}

func TestClassify_PromptContainsDetails(t *testing.T) {
	t.Parallel()

	p := &mockProvider{response: validResponse}
	c := NewClassifier(p, time.Second, log.Nop(), nil)

	c.Classify(context.Background(), "rail crack", 92.5, "Station: North Yard")

	for _, want := range []string{"rail crack", "92.5%", "Station: North Yard", `"severity"`, `"Low", "High", or "Critical"`} {
		if !strings.Contains(p.lastUser, want) {
			t.Errorf("user prompt missing %q:\n%s", want, p.lastUser)
		}
	}
}

func TestClassify_NormalizesOracleSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rawSeverity string
		want        defect.Severity
	}{
		{"severe", defect.SeverityCritical},
		{"medium", defect.SeverityHigh},
		{"minor", defect.SeverityLow},
		{"Unknown", defect.SeverityHigh},
		{"", defect.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.rawSeverity, func(t *testing.T) {
			t.Parallel()

			p := &mockProvider{response: fmt.Sprintf(`{"severity": %q, "root_cause": "x"}`, tt.rawSeverity)}
			c := NewClassifier(p, time.Second, log.Nop(), nil)

			a := c.Classify(context.Background(), "loose fastening", 80, "unknown")
			if a.Severity != tt.want {
				t.Errorf("severity = %q, want %q", a.Severity, tt.want)
			}
		})
	}
}

func TestClassify_TransportErrorFallsBack(t *testing.T) {
	t.Parallel()

	var gotOutcome Outcome
	p := &mockProvider{err: errors.New("connection refused")}
	c := NewClassifier(p, time.Second, log.Nop(), func(o Outcome, _ time.Duration) { gotOutcome = o })

	a := c.Classify(context.Background(), "ballast erosion", 70, "unknown")

	if a.Severity != defect.SeverityHigh {
		t.Errorf("fallback severity = %q, want High", a.Severity)
	}
	if !strings.Contains(a.ImmediateAction, "maintenance team") {
		t.Errorf("fallback action = %q, want maintenance-team boilerplate", a.ImmediateAction)
	}
	if gotOutcome != OutcomeTransport {
		t.Errorf("outcome = %q, want %q", gotOutcome, OutcomeTransport)
	}
}

func TestClassify_MalformedResponseFallsBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
	}{
		{"prose", "I think this defect looks serious and you should fix it."},
		{"truncated json", `{"root_cause": "corrosi`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotOutcome Outcome
			p := &mockProvider{response: tt.response}
			c := NewClassifier(p, time.Second, log.Nop(), func(o Outcome, _ time.Duration) { gotOutcome = o })

			a := c.Classify(context.Background(), "rail crack", 90, "unknown")
			if a.Severity != defect.SeverityHigh {
				t.Errorf("fallback severity = %q, want High", a.Severity)
			}
			if gotOutcome != OutcomeMalformed {
				t.Errorf("outcome = %q, want %q", gotOutcome, OutcomeMalformed)
			}
		})
	}
}

func TestClassify_TimeoutBounded(t *testing.T) {
	t.Parallel()

	p := &mockProvider{response: validResponse, delay: 5 * time.Second}
	c := NewClassifier(p, 50*time.Millisecond, log.Nop(), nil)

	start := time.Now()
	a := c.Classify(context.Background(), "rail break", 99, "unknown")
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Fatalf("Classify took %v, want to return near the 50ms timeout", elapsed)
	}
	if a.Severity != defect.SeverityHigh {
		t.Errorf("timed-out severity = %q, want High", a.Severity)
	}
}

func TestParseAssessment_FencedBlocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"bare", `{"severity": "Low"}`},
		{"fence", "```\n{\"severity\": \"Low\"}\n```"},
		{"json fence", "```json\n{\"severity\": \"Low\"}\n```"},
		{"fence with surrounding whitespace", "  ```json\n{\"severity\": \"Low\"}\n```  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, err := parseAssessment(tt.raw)
			if err != nil {
				t.Fatalf("parseAssessment: %v", err)
			}
			if a.Severity != "Low" {
				t.Errorf("severity = %q, want Low", a.Severity)
			}
		})
	}
}

func TestParseAssessment_AbsentFieldsAreEmpty(t *testing.T) {
	t.Parallel()

	a, err := parseAssessment(`{"severity": "High"}`)
	if err != nil {
		t.Fatalf("parseAssessment: %v", err)
	}
	if a.RootCause != "" || a.ImmediateAction != "" || a.ResolutionSteps != "" || a.PreventiveRecommendations != "" {
		t.Errorf("absent fields should decode as empty strings: %+v", a)
	}
}

