package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Adityad84/neural-track/internal/triage"
)

// BuildMessage renders the human-facing notification for a record.
func BuildMessage(r *triage.Record) *Message {
	location := locationSummary(r)

	return &Message{
		Subject:  fmt.Sprintf("CRITICAL: Railway Defect (%s) at %s", r.DefectType, location),
		HTMLBody: buildHTMLBody(r, location),
	}
}

// locationSummary picks the most readable location label for subjects and
// the body header: station name first, then chainage, then coordinates.
func locationSummary(r *triage.Record) string {
	switch {
	case r.NearestStation != "":
		return r.NearestStation
	case r.Chainage != "":
		return "KM " + r.Chainage
	case r.Latitude != nil && r.Longitude != nil:
		return fmt.Sprintf("%.6f, %.6f", *r.Latitude, *r.Longitude)
	default:
		return "Unknown Location"
	}
}

func buildHTMLBody(r *triage.Record, location string) string {
	var b strings.Builder

	b.WriteString(`<html><body style="font-family: Arial, sans-serif; color: #333;">`)
	b.WriteString(`<div style="max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f8f9fa; border-radius: 8px;">`)
	b.WriteString(`<h2 style="color: #dc3545;">CRITICAL DEFECT DETECTED</h2>`)

	b.WriteString(`<div style="background: white; padding: 20px; border-radius: 5px; margin: 20px 0;">`)
	writeField(&b, "Type", r.DefectType)
	writeField(&b, "Confidence", fmt.Sprintf("%.1f%%", r.Confidence))
	writeField(&b, "Location", location)
	writeField(&b, "Coordinates", coordinates(r))
	writeField(&b, "Severity", r.Severity.String())
	writeField(&b, "Detected", r.CreatedAt.UTC().Format(time.RFC3339))
	b.WriteString(`</div>`)

	b.WriteString(`<div style="background: #fff3cd; padding: 15px; border-left: 4px solid #ffc107;">`)
	b.WriteString(`<h3 style="color: #856404; margin-top: 0;">IMMEDIATE ACTION REQUIRED</h3>`)
	b.WriteString(`<p>` + html.EscapeString(r.ImmediateAction) + `</p>`)
	b.WriteString(`</div>`)

	if r.ResolutionSteps != "" {
		b.WriteString(`<div style="background: white; padding: 15px; margin: 20px 0; border-radius: 5px;">`)
		b.WriteString(`<h3 style="margin-top: 0;">Resolution Steps</h3>`)
		b.WriteString(`<p>` + html.EscapeString(r.ResolutionSteps) + `</p>`)
		b.WriteString(`</div>`)
	}

	b.WriteString(`<p style="text-align: center; color: #6c757d; font-size: 0.9em;">Automated alert from the neural-track defect triage system • record ` + html.EscapeString(r.ID) + `</p>`)
	b.WriteString(`</div></body></html>`)

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(`<p><strong>` + label + `:</strong> ` + html.EscapeString(value) + `</p>`)
}

func coordinates(r *triage.Record) string {
	lat, lon := "unknown", "unknown"
	if r.Latitude != nil {
		lat = fmt.Sprintf("%.6f", *r.Latitude)
	}
	if r.Longitude != nil {
		lon = fmt.Sprintf("%.6f", *r.Longitude)
	}
	return lat + ", " + lon
}
