package defectapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Adityad84/neural-track/internal/defect"
	"github.com/Adityad84/neural-track/internal/triage"
)

func (a *API) handleIngestDefect(w http.ResponseWriter, r *http.Request) {
	var ev defect.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	if msg, ok := validateEvent(&ev); !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": msg})
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("neuraltrack.defect.type", ev.DefectType),
		attribute.Float64("neuraltrack.defect.confidence", ev.Confidence),
	)

	rec, err := a.svc.Ingest(r.Context(), &ev)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to ingest defect", "defect_type", ev.DefectType)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.String("neuraltrack.defect.id", rec.ID))

	writeJSON(w, http.StatusCreated, rec)
}

func (a *API) handleListDefects(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 0)

	recs, err := a.svc.List(r.Context(), skip, limit)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list defect records")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if recs == nil {
		// empty list, never null
		recs = []*triage.Record{}
	}

	writeJSON(w, http.StatusOK, recs)
}

// validateEvent enforces the ingest contract: a defect type is required
// and confidence is a percentage.
func validateEvent(ev *defect.Event) (string, bool) {
	if strings.TrimSpace(ev.DefectType) == "" {
		return "defect_type is required", false
	}
	if ev.Confidence < 0 || ev.Confidence > 100 {
		return "confidence must be between 0 and 100", false
	}
	return "", true
}

// queryInt parses an integer query parameter, falling back to def on
// absence or garbage.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
