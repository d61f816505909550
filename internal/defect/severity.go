package defect

import "strings"

// Severity is the closed taxonomy for defect severity. Nothing outside this
// set may reach the store or the dispatch decision; raw labels from the
// oracle go through Normalize first.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// String returns the canonical label for the severity.
func (s Severity) String() string { return string(s) }

// severitySynonyms maps lower-cased raw labels to taxonomy levels. The
// groups are disjoint. "medium"/"moderate" escalate to High as a matter of
// policy: ambiguous mid-range labels are never downgraded.
var severitySynonyms = map[string]Severity{
	"critical":  SeverityCritical,
	"severe":    SeverityCritical,
	"very high": SeverityCritical,
	"urgent":    SeverityCritical,

	"high":        SeverityHigh,
	"significant": SeverityHigh,
	"medium-high": SeverityHigh,
	"medium":      SeverityHigh,
	"moderate":    SeverityHigh,

	"low":     SeverityLow,
	"minor":   SeverityLow,
	"minimal": SeverityLow,
}

// Normalize maps an arbitrary severity label to the closed taxonomy. It
// never fails: anything unrecognized (including the empty string) comes back
// as High, so a garbled or missing label can produce an extra alert but
// never suppress one.
func Normalize(raw string) Severity {
	if sev, ok := severitySynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return sev
	}
	return SeverityHigh
}
