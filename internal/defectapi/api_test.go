package defectapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"

	"github.com/Adityad84/neural-track/internal/defect"
	"github.com/Adityad84/neural-track/internal/triage"
)

type mockService struct {
	ingestErr error
	getRec    *triage.Record
	getErr    error
	listRecs  []*triage.Record
	listErr   error

	lastEvent *defect.Event
	lastSkip  int
	lastLimit int
}

func (m *mockService) Ingest(ctx context.Context, ev *defect.Event) (*triage.Record, error) {
	m.lastEvent = ev
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	return &triage.Record{
		ID:    "01JTESTRECORD0000000000000",
		Event: *ev,
		Assessment: defect.Assessment{
			Severity: defect.SeverityHigh,
		},
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (m *mockService) Get(ctx context.Context, id string) (*triage.Record, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	if m.getRec == nil {
		return nil, false, nil
	}
	return m.getRec, true, nil
}

func (m *mockService) List(ctx context.Context, skip, limit int) ([]*triage.Record, error) {
	m.lastSkip, m.lastLimit = skip, limit
	return m.listRecs, m.listErr
}

func newTestRouter(t *testing.T) (chi.Router, *mockService) {
	t.Helper()
	svc := &mockService{}
	api := New(nil, svc)
	r := chi.NewRouter()
	api.RegisterRoutes(r)
	return r, svc
}

//  New / constructor

func TestNew_NilLogger(t *testing.T) {
	t.Parallel()

	api := New(nil, &mockService{})
	if api == nil {
		t.Fatal("New(nil, svc) returned nil API")
	}
	if api.logger == nil {
		t.Fatal("New(nil, svc) left logger nil; expected Nop logger")
	}
}

func TestNew_WithLogger(t *testing.T) {
	t.Parallel()

	api := New(log.Nop(), &mockService{})
	if api == nil {
		t.Fatal("New(logger, svc) returned nil API")
	}
}

func TestNew_NilService_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("New(nil, nil) did not panic; expected panic for nil service")
		}
	}()
	New(nil, nil)
}

// Routing

func TestRegisterRoutes_Methods(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"POST valid defect", http.MethodPost, "/api/v1/defects", `{"defect_type":"crack","confidence":91.5}`, http.StatusCreated},
		{"POST invalid JSON", http.MethodPost, "/api/v1/defects", `{bad`, http.StatusBadRequest},
		{"GET list", http.MethodGet, "/api/v1/defects", "", http.StatusOK},
		{"PUT defects not allowed", http.MethodPut, "/api/v1/defects", "", http.StatusMethodNotAllowed},
		{"DELETE defects not allowed", http.MethodDelete, "/api/v1/defects", "", http.StatusMethodNotAllowed},
		{"POST by id not allowed", http.MethodPost, "/api/v1/defects/abc", "", http.StatusMethodNotAllowed},
		{"GET root status", http.MethodGet, "/", "", http.StatusOK},
		{"GET unknown path", http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleStatus(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}

// Ingestion

func TestHandleIngestDefect_Valid(t *testing.T) {
	t.Parallel()

	r, svc := newTestRouter(t)

	body := `{
		"defect_type": "rail_crack",
		"confidence": 87.3,
		"image_url": "/uploads/frame_0042.jpg",
		"latitude": 28.6139,
		"longitude": 77.2090,
		"chainage": "42.7",
		"nearest_station": "Central"
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/defects", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	if svc.lastEvent == nil {
		t.Fatal("service never received the event")
	}
	if svc.lastEvent.DefectType != "rail_crack" {
		t.Errorf("defect_type = %q", svc.lastEvent.DefectType)
	}
	if svc.lastEvent.Latitude == nil || *svc.lastEvent.Latitude != 28.6139 {
		t.Errorf("latitude = %v", svc.lastEvent.Latitude)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["id"] == "" {
		t.Error("response has no id")
	}
	if resp["severity"] != "High" {
		t.Errorf("severity = %v, want High", resp["severity"])
	}
}

func TestHandleIngestDefect_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"missing defect_type", `{"confidence":50}`},
		{"blank defect_type", `{"defect_type":"   ","confidence":50}`},
		{"confidence negative", `{"defect_type":"crack","confidence":-1}`},
		{"confidence above 100", `{"defect_type":"crack","confidence":100.1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, svc := newTestRouter(t)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/defects", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
			}
			if svc.lastEvent != nil {
				t.Error("invalid event reached the service")
			}
		})
	}
}

func TestHandleIngestDefect_ServiceError(t *testing.T) {
	t.Parallel()

	r, svc := newTestRouter(t)
	svc.ingestErr = errors.New("db down")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/defects", strings.NewReader(`{"defect_type":"crack","confidence":50}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

// Lookup

func TestHandleGetDefect_Found(t *testing.T) {
	t.Parallel()

	r, svc := newTestRouter(t)
	svc.getRec = &triage.Record{
		ID:    "01JREC00000000000000000000",
		Event: defect.Event{DefectType: "crack", Confidence: 90},
		Assessment: defect.Assessment{
			Severity:  defect.SeverityCritical,
			RootCause: "fatigue",
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/defects/01JREC00000000000000000000", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["severity"] != "Critical" {
		t.Errorf("severity = %v, want Critical", resp["severity"])
	}
}

func TestHandleGetDefect_NotFound(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/defects/missing", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleGetDefect_StoreError(t *testing.T) {
	t.Parallel()

	r, svc := newTestRouter(t)
	svc.getErr = errors.New("db down")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/defects/any", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

// Listing

func TestHandleListDefects_PassesPagination(t *testing.T) {
	t.Parallel()

	r, svc := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/defects?skip=20&limit=10", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.lastSkip != 20 || svc.lastLimit != 10 {
		t.Errorf("skip/limit = %d/%d, want 20/10", svc.lastSkip, svc.lastLimit)
	}
}

func TestHandleListDefects_GarbageParamsIgnored(t *testing.T) {
	t.Parallel()

	r, svc := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/defects?skip=x&limit=y", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.lastSkip != 0 || svc.lastLimit != 0 {
		t.Errorf("skip/limit = %d/%d, want 0/0", svc.lastSkip, svc.lastLimit)
	}
}

func TestHandleListDefects_EmptyIsArray(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/defects", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	body := strings.TrimSpace(rec.Body.String())
	if body != "[]" {
		t.Errorf("empty list body = %q, want []", body)
	}
}

// Fuzz

func FuzzDefectIngestion(f *testing.F) {
	svc := &mockService{}
	api := New(nil, svc)
	r := chi.NewRouter()
	api.RegisterRoutes(r)

	seeds := []string{
		"",
		"{}",
		`{"defect_type":"crack","confidence":50}`,
		`{"defect_type":"","confidence":-5}`,
		"{invalid json",
		"\x00\x01\x02\xff\xfe",
		strings.Repeat("a", 10000),
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, body string) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/defects", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		// Must not panic
		r.ServeHTTP(rec, req)

		switch rec.Code {
		case http.StatusCreated, http.StatusBadRequest, http.StatusUnprocessableEntity:
		default:
			t.Errorf("POST /api/v1/defects with body len=%d = %d", len(body), rec.Code)
		}
	})
}
