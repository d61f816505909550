// Package triage provides the business boundary for defect ingestion. It
// defines the Service (classification, persistence, async alert hand-off),
// the Store interface, the persisted Record model, and Prometheus metrics.
package triage
