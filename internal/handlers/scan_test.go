package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"silo_scanner/internal/models"
	"silo_scanner/internal/service"
)

func TestScanHandlers_StartStopReset_Status(t *testing.T) {
	current := models.SiloID(12)
	sc := &mockScanner{status: models.ScanStatus{
		Phase:           models.PhaseScanning,
		CurrentSilo:     &current,
		ProgressPercent: 33.3,
		Active:          true,
		NextIndex:       1,
		CatalogSize:     3,
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 7}, Scanner: sc}
	r := newTestRouter(s)

	// status requires auth
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/scan/status", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	w = serveAuthed(r, http.MethodGet, "/api/v1/scan/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status code=%d, body=%s", w.Code, w.Body.String())
	}
	var st models.ScanStatus
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if st.Phase != models.PhaseScanning || st.CurrentSilo == nil || *st.CurrentSilo != 12 || st.NextIndex != 1 {
		t.Fatalf("unexpected status: %+v", st)
	}

	var resp struct {
		Status string            `json:"status"`
		Scan   models.ScanStatus `json:"scan"`
	}

	w = serveAuthed(r, http.MethodPost, "/api/v1/scan/start", "")
	if w.Code != http.StatusOK {
		t.Fatalf("start code=%d, body=%s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != statusStarted || resp.Scan.Phase != models.PhaseScanning {
		t.Fatalf("bad start response: %+v", resp)
	}

	w = serveAuthed(r, http.MethodPost, "/api/v1/scan/stop", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stop code=%d, body=%s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != statusStopped {
		t.Fatalf("bad stop response: %+v", resp)
	}

	w = serveAuthed(r, http.MethodPost, "/api/v1/scan/reset", "")
	if w.Code != http.StatusOK {
		t.Fatalf("reset code=%d, body=%s", w.Code, w.Body.String())
	}

	if sc.startCalled != 1 || sc.stopCalled != 1 || sc.resetCalled != 1 {
		t.Fatalf("calls start=%d stop=%d reset=%d", sc.startCalled, sc.stopCalled, sc.resetCalled)
	}
}

func TestScanHandlers_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		path string
		sc   *mockScanner
		want int
	}{
		{"invalid catalog", "/api/v1/scan/start", &mockScanner{startErr: fmt.Errorf("%w: unsorted", service.ErrInvalidCatalog)}, http.StatusUnprocessableEntity},
		{"already running", "/api/v1/scan/start", &mockScanner{startErr: service.ErrScanInProgress}, http.StatusConflict},
		{"store down", "/api/v1/scan/start", &mockScanner{startErr: fmt.Errorf("load scan progress: boom")}, http.StatusInternalServerError},
		{"stop when idle", "/api/v1/scan/stop", &mockScanner{stopErr: service.ErrScanNotActive}, http.StatusConflict},
		{"reset fails", "/api/v1/scan/reset", &mockScanner{resetErr: fmt.Errorf("clear: boom")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Scanner: tc.sc})
			w := serveAuthed(r, http.MethodPost, tc.path, "")
			if w.Code != tc.want {
				t.Fatalf("code=%d want %d, body=%s", w.Code, tc.want, w.Body.String())
			}
			var out struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error == "" {
				t.Fatalf("missing error message: %s", w.Body.String())
			}
		})
	}
}

func TestScanHandlers_Catalog(t *testing.T) {
	sc := &mockScanner{catalog: []models.SiloID{5, 12, 40}}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Scanner: sc})

	w := serveAuthed(r, http.MethodGet, "/api/v1/catalog", "")
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count int             `json:"count"`
		Silos []models.SiloID `json:"silos"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 3 || len(out.Silos) != 3 || out.Silos[1] != 12 {
		t.Fatalf("unexpected catalog: %+v", out)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health code=%d", w.Code)
	}
}

func TestMetricsRoute_OnlyWhenConfigured(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("silo_scanner_scan_progress_percent 0\n"))
	})

	with := NewHandler(&service.Service{}, nil, Options{Metrics: metrics}).InitRoutes()
	w := httptest.NewRecorder()
	with.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics code=%d", w.Code)
	}

	without := NewHandler(&service.Service{}, nil, Options{}).InitRoutes()
	w = httptest.NewRecorder()
	without.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics handler, got %d", w.Code)
	}
}
