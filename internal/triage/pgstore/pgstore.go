// Package pgstore provides a PostgreSQL implementation of triage.Store.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Adityad84/neural-track/internal/defect"
	"github.com/Adityad84/neural-track/internal/triage"
)

var tracer = otel.Tracer("github.com/Adityad84/neural-track/internal/triage/pgstore")

//go:embed schema.sql
var schema string

// Store persists triaged defect records in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema and returns a ready Store. The pool is owned by the
// caller; Close on the Store does not close it.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const recordColumns = `id, defect_type, confidence, image_url, latitude, longitude, chainage,
	nearest_station, root_cause, severity, immediate_action, resolution_steps,
	preventive_recommendations, created_at`

// Insert appends one record. Records are immutable; a duplicate ID is a
// programming error and surfaces as a constraint violation.
func (s *Store) Insert(ctx context.Context, r *triage.Record) error {
	ctx, span := tracer.Start(ctx, "pgstore.Insert", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	query := `INSERT INTO defect_records (` + recordColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`

	_, err := s.pool.Exec(ctx, query,
		r.ID, r.DefectType, r.Confidence, r.ImageURL, r.Latitude, r.Longitude, r.Chainage,
		r.NearestStation, r.RootCause, string(r.Severity), r.ImmediateAction, r.ResolutionSteps,
		r.PreventiveRecommendations, r.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *Store) Get(ctx context.Context, id string) (*triage.Record, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + recordColumns + ` FROM defect_records WHERE id = $1`
	r, err := scanRecord(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if r == nil {
		return nil, false, nil
	}
	return r, true, nil
}

// List returns records ordered by created_at descending with skip/limit
// pagination.
func (s *Store) List(ctx context.Context, skip, limit int) ([]*triage.Record, error) {
	ctx, span := tracer.Start(ctx, "pgstore.List", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + recordColumns + ` FROM defect_records
	ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := s.pool.Query(ctx, query, skip, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []*triage.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// scanRecord scans a single row into a triage.Record. Returns (nil, nil)
// when no row is found.
func scanRecord(row pgx.Row) (*triage.Record, error) {
	var (
		r        triage.Record
		severity string
	)

	err := row.Scan(
		&r.ID, &r.DefectType, &r.Confidence, &r.ImageURL, &r.Latitude, &r.Longitude, &r.Chainage,
		&r.NearestStation, &r.RootCause, &severity, &r.ImmediateAction, &r.ResolutionSteps,
		&r.PreventiveRecommendations, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	r.Severity = defect.Severity(severity)
	return &r, nil
}
