package triage

import (
	"time"

	"github.com/Adityad84/neural-track/internal/defect"
)

// Record is the persisted result of triaging one defect event: the union of
// the incoming event, its assessment, a generated identifier, and the server
// creation timestamp. Records are append-only; nothing mutates them after
// Insert.
type Record struct {
	ID string `json:"id"`
	defect.Event
	defect.Assessment
	CreatedAt time.Time `json:"created_at"`
}
