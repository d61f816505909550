// Package oracle turns a defect description into a structured Assessment by
// querying an external text-reasoning service. All failure modes (transport,
// timeout, malformed output) fold into a safe-default High-severity
// Assessment, so callers never branch on oracle errors.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/Adityad84/neural-track/internal/defect"
)

const defaultTimeout = 30 * time.Second

// Provider is the interface for any text-reasoning backend.
type Provider interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Outcome classifies how a single classification attempt resolved, for
// metrics and diagnostics.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeTransport Outcome = "transport_error"
	OutcomeMalformed Outcome = "malformed"
)

// ObserverFunc receives the outcome and duration of each classification
// attempt (wired by main for Prometheus).
type ObserverFunc func(outcome Outcome, dur time.Duration)

// Classifier builds prompts, invokes the provider with a bounded timeout,
// and parses the response into an Assessment.
type Classifier struct {
	provider Provider
	timeout  time.Duration
	logger   log.Logger
	observe  ObserverFunc
}

// NewClassifier creates a Classifier. A zero timeout falls back to 30s.
// The observer may be nil.
func NewClassifier(provider Provider, timeout time.Duration, logger log.Logger, observe ObserverFunc) *Classifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Classifier{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
		observe:  observe,
	}
}

// Classify asks the oracle to assess one defect. It never returns an error:
// a single bounded attempt is made, and any failure resolves to the
// safe-default Assessment with severity High. The returned severity is
// always in the closed taxonomy.
func (c *Classifier) Classify(ctx context.Context, defectType string, confidence float64, location string) defect.Assessment {
	start := time.Now()

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.provider.Complete(cctx, systemPrompt, userPrompt(defectType, confidence, location))
	if err != nil {
		c.logger.Error(ctx, err, "oracle call failed",
			"defect_type", defectType,
			"timeout", c.timeout.String(),
		)
		c.done(OutcomeTransport, start)
		return fallbackAssessment()
	}

	parsed, err := parseAssessment(raw)
	if err != nil {
		c.logger.Error(ctx, err, "oracle response unparseable",
			"defect_type", defectType,
			"response_bytes", len(raw),
		)
		c.done(OutcomeMalformed, start)
		return fallbackAssessment()
	}

	c.done(OutcomeOK, start)
	return defect.Assessment{
		RootCause:                 parsed.RootCause,
		Severity:                  defect.Normalize(parsed.Severity),
		ImmediateAction:           parsed.ImmediateAction,
		ResolutionSteps:           parsed.ResolutionSteps,
		PreventiveRecommendations: parsed.PreventiveRecommendations,
	}
}

func (c *Classifier) done(outcome Outcome, start time.Time) {
	if c.observe != nil {
		c.observe(outcome, time.Since(start))
	}
}

const systemPrompt = `You are a railway safety expert. You assess track defects reported by an automated vision system and provide remediation guidance for the maintenance team.`

// userPrompt instructs the oracle to answer with a strict five-field JSON
// object and constrains severity to the taxonomy tokens.
func userPrompt(defectType string, confidence float64, location string) string {
	return fmt.Sprintf(`A defect has been detected on the track.

Details:
- Defect Type: %s
- Confidence: %.1f%%
- Location: %s

Respond with a strict JSON object with exactly these keys:
- "root_cause": possible reasons for this defect
- "severity": exactly one of "Low", "High", or "Critical"
- "immediate_action": what needs to be done immediately
- "resolution_steps": step-by-step maintenance/repair instructions
- "preventive_recommendations": how to prevent this in the future

Do not output markdown code blocks, just raw JSON.`, defectType, confidence, location)
}

// rawAssessment is the oracle's wire shape. Severity stays a plain string
// here; it is normalized into the taxonomy after parsing. Absent fields
// decode as empty strings.
type rawAssessment struct {
	RootCause                 string `json:"root_cause"`
	Severity                  string `json:"severity"`
	ImmediateAction           string `json:"immediate_action"`
	ResolutionSteps           string `json:"resolution_steps"`
	PreventiveRecommendations string `json:"preventive_recommendations"`
}

// parseAssessment strips an optional fenced code block and decodes the
// remaining text as JSON. Oracles wrap output in fences despite instructions
// not to, so the wrapper is tolerated rather than treated as an error.
func parseAssessment(raw string) (*rawAssessment, error) {
	text := stripFences(raw)

	var a rawAssessment
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}
	return &a, nil
}

// stripFences removes a leading ```/```json line and a trailing ``` line.
func stripFences(s string) string {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// fallbackAssessment is returned whenever the oracle cannot produce a usable
// answer. Severity High, never Low: a missed classification must not
// suppress an alert that should have fired.
func fallbackAssessment() defect.Assessment {
	return defect.Assessment{
		RootCause:                 "Automated analysis unavailable",
		Severity:                  defect.SeverityHigh,
		ImmediateAction:           "Inspect the site manually and contact the maintenance team",
		ResolutionSteps:           "1. Dispatch an inspection crew to verify the defect on site.",
		PreventiveRecommendations: "",
	}
}
