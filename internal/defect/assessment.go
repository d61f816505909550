package defect

// Assessment is the structured remediation guidance derived for one Event.
// Exactly one Assessment exists per ingested event; when the oracle is
// unreachable or returns garbage the client substitutes a safe default, so
// downstream code never sees a missing Assessment.
type Assessment struct {
	RootCause                 string   `json:"root_cause"`
	Severity                  Severity `json:"severity"`
	ImmediateAction           string   `json:"immediate_action"`
	ResolutionSteps           string   `json:"resolution_steps"`
	PreventiveRecommendations string   `json:"preventive_recommendations"`
}
