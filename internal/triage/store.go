package triage

import "context"

// Store is the persistence interface for triaged defect records.
type Store interface {
	Insert(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (*Record, bool, error)
	List(ctx context.Context, skip, limit int) ([]*Record, error)
}
