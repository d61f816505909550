package triage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/Adityad84/neural-track/internal/defect"
)

const (
	// dispatchQueueDepth bounds the number of pending alert jobs. At this
	// scale a single worker drains the queue far faster than events arrive;
	// the bound exists so a dead notification channel cannot grow memory
	// without limit.
	dispatchQueueDepth = 64

	defaultListLimit = 100
	maxListLimit     = 500
)

// Classifier produces an Assessment for a defect description. It never
// fails; degraded oracle behavior resolves to safe-default content.
type Classifier interface {
	Classify(ctx context.Context, defectType string, confidence float64, location string) defect.Assessment
}

// DispatchOutcome describes how a dispatch attempt resolved.
type DispatchOutcome string

const (
	DispatchSent    DispatchOutcome = "sent"
	DispatchSkipped DispatchOutcome = "skipped"
	DispatchFailed  DispatchOutcome = "failed"
)

// Dispatcher delivers an alert notification for a record. It has no caller
// to report to, so it absorbs its own failures and returns only the outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, r *Record) DispatchOutcome
}

// Service is the business boundary for defect triage: it classifies an
// incoming event, persists the merged record, and hands Critical records to
// a background dispatch worker without blocking the caller.
type Service struct {
	store      Store
	classifier Classifier
	dispatcher Dispatcher
	logger     log.Logger
	metrics    *Metrics

	jobs       chan *Record
	workerDone chan struct{}
	closeOnce  sync.Once
}

// NewService creates the triage service and starts its dispatch worker.
// The dispatcher and metrics may be nil (alerting disabled / no registry).
func NewService(store Store, classifier Classifier, dispatcher Dispatcher, logger log.Logger, metrics *Metrics) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	s := &Service{
		store:      store,
		classifier: classifier,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		jobs:       make(chan *Record, dispatchQueueDepth),
		workerDone: make(chan struct{}),
	}
	go s.dispatchWorker()
	return s
}

// Ingest triages one defect event: classify, persist, and (for Critical
// severity only) enqueue an alert dispatch. It returns the persisted record
// as soon as persistence completes; dispatch latency never reaches the
// caller.
func (s *Service) Ingest(ctx context.Context, ev *defect.Event) (*Record, error) {
	start := time.Now()

	location := locationDescription(ev)
	assessment := s.classifier.Classify(ctx, ev.DefectType, ev.Confidence, location)

	r := &Record{
		ID:         ulid.Make().String(),
		Event:      *ev,
		Assessment: assessment,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, r); err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IngestsTotal.WithLabelValues(string(r.Severity)).Inc()
		s.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}

	s.logger.Info(ctx, "defect triaged",
		"record_id", r.ID,
		"defect_type", r.DefectType,
		"severity", r.Severity,
		"confidence", r.Confidence,
	)

	if r.Severity == defect.SeverityCritical {
		s.enqueueDispatch(ctx, r)
	}

	return r, nil
}

// Get retrieves a triaged record by ID.
func (s *Service) Get(ctx context.Context, id string) (*Record, bool, error) {
	return s.store.Get(ctx, id)
}

// List returns records ordered by creation time descending. A non-positive
// limit falls back to the default; limits above the cap are clamped.
func (s *Service) List(ctx context.Context, skip, limit int) ([]*Record, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.store.List(ctx, skip, limit)
}

// Close stops accepting dispatch jobs and waits for the worker to drain the
// queue, or for ctx to expire.
func (s *Service) Close(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.jobs) })
	select {
	case <-s.workerDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueueDispatch hands a record to the worker without blocking. A full
// queue drops the job; the record itself is already persisted.
func (s *Service) enqueueDispatch(ctx context.Context, r *Record) {
	if s.dispatcher == nil {
		s.logger.Info(ctx, "alert dispatch disabled, skipping", "record_id", r.ID)
		return
	}
	select {
	case s.jobs <- r:
		if s.metrics != nil {
			s.metrics.DispatchQueueDepth.Set(float64(len(s.jobs)))
		}
	default:
		s.logger.Warn(ctx, "dispatch queue full, dropping alert job", "record_id", r.ID)
		if s.metrics != nil {
			s.metrics.DispatchesDropped.Inc()
		}
	}
}

func (s *Service) dispatchWorker() {
	defer close(s.workerDone)

	for r := range s.jobs {
		// Jobs outlive the ingestion request, so the worker runs on its own
		// context carrying only the service logger.
		ctx := log.WithContext(context.Background(), s.logger)

		start := time.Now()
		outcome := s.dispatcher.Dispatch(ctx, r)

		if s.metrics != nil {
			s.metrics.DispatchesTotal.WithLabelValues(string(outcome)).Inc()
			s.metrics.DispatchDuration.Observe(time.Since(start).Seconds())
			s.metrics.DispatchQueueDepth.Set(float64(len(s.jobs)))
		}

		s.logger.Info(ctx, "alert dispatch finished",
			"record_id", r.ID,
			"outcome", string(outcome),
			"duration", time.Since(start).Seconds(),
		)
	}
}

// locationDescription renders the event's location fields for the oracle and
// for notification bodies. Missing fields render as "unknown" so the shape
// stays consistent regardless of what the vision system provided.
func locationDescription(ev *defect.Event) string {
	lat, lon := "unknown", "unknown"
	if ev.Latitude != nil {
		lat = fmt.Sprintf("%.6f", *ev.Latitude)
	}
	if ev.Longitude != nil {
		lon = fmt.Sprintf("%.6f", *ev.Longitude)
	}
	chainage := ev.Chainage
	if chainage == "" {
		chainage = "unknown"
	}
	station := ev.NearestStation
	if station == "" {
		station = "unknown"
	}
	return strings.Join([]string{
		"Lat: " + lat,
		"Lon: " + lon,
		"KM: " + chainage,
		"Station: " + station,
	}, ", ")
}
