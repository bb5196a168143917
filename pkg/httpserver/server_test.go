package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/sharpline/internal/alerts"
	"github.com/mselser95/sharpline/internal/report"
	"github.com/mselser95/sharpline/pkg/healthprobe"
	"github.com/mselser95/sharpline/pkg/types"
	"go.uber.org/zap"
)

type stubReports struct {
	reports map[string]*report.Report
	err     error
}

func (s *stubReports) LineMovementReport(_ context.Context, gameID string) (*report.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.reports[gameID]; ok {
		return r, nil
	}
	return &report.Report{GameID: gameID, Status: report.StatusNoData, Error: report.ErrNoSnapshots}, nil
}

func newTestServer(t *testing.T, reports ReportSource, alertsDir string) http.Handler {
	t.Helper()

	hc := healthprobe.New()
	hc.SetReady(true)

	return New(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: hc,
		Reports:       reports,
		AlertsDir:     alertsDir,
	}).Handler()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_HealthAndMetrics(t *testing.T) {
	h := newTestServer(t, nil, "")

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		rec := get(t, h, path)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}

	if rec := get(t, h, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", rec.Code)
	}
}

func TestServer_Report(t *testing.T) {
	current := 1.0
	h := newTestServer(t, &stubReports{reports: map[string]*report.Report{
		"g1": {GameID: "g1", Status: report.StatusOK, Spread: report.LineSummary{Movement: &current}, SnapshotsAnalyzed: 3},
	}}, "")

	rec := get(t, h, "/api/games/g1/report")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got report.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if got.GameID != "g1" || got.SnapshotsAnalyzed != 3 || got.Spread.Movement == nil {
		t.Errorf("unexpected report %+v", got)
	}

	rec = get(t, h, "/api/games/unknown/report")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for no-data report", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), report.StatusNoData) {
		t.Errorf("expected no_data status, got %s", rec.Body.String())
	}
}

func TestServer_ReportErrors(t *testing.T) {
	h := newTestServer(t, &stubReports{err: &types.StorageError{Op: "list", Err: errors.New("disk")}}, "")
	if rec := get(t, h, "/api/games/g1/report"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	h = newTestServer(t, nil, "")
	if rec := get(t, h, "/api/games/g1/report"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without a report source", rec.Code)
	}
}

func TestServer_LatestAlerts(t *testing.T) {
	dir := t.TempDir()
	h := newTestServer(t, nil, dir)

	if rec := get(t, h, "/api/alerts/latest"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before any export", rec.Code)
	}

	exp := alerts.NewExport([]alerts.Alert{
		{ID: "a1", Type: alerts.TypeLineFlip, Priority: alerts.PriorityHigh},
		{ID: "a2", Type: alerts.TypeTrapGame, Priority: alerts.PriorityMedium},
		{ID: "a3", Type: alerts.TypePublicFade, Priority: alerts.PriorityLow},
	}, 7, time.Date(2025, 10, 19, 9, 0, 0, 0, time.UTC))
	if _, err := alerts.WriteFile(dir, exp); err != nil {
		t.Fatalf("write export: %v", err)
	}

	tests := []struct {
		query string
		want  int
		code  int
	}{
		{"", 3, http.StatusOK},
		{"?priority=high", 1, http.StatusOK},
		{"?priority=MEDIUM", 2, http.StatusOK},
		{"?priority=urgent", 0, http.StatusBadRequest},
	}

	for _, tt := range tests {
		rec := get(t, h, "/api/alerts/latest"+tt.query)
		if rec.Code != tt.code {
			t.Errorf("%s: status = %d, want %d", tt.query, rec.Code, tt.code)
			continue
		}
		if tt.code != http.StatusOK {
			continue
		}

		var got alerts.Export
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode export: %v", err)
		}
		if got.TotalAlerts != tt.want || len(got.Alerts) != tt.want {
			t.Errorf("%s: got %d alerts, want %d", tt.query, got.TotalAlerts, tt.want)
		}
		if got.Week != 7 {
			t.Errorf("%s: week = %d, want 7", tt.query, got.Week)
		}
	}
}

func TestServer_ShutdownWithoutStart(t *testing.T) {
	s := New(&Config{Port: "0", HealthChecker: healthprobe.New()})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	h := New(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: healthprobe.New(),
		CORSOrigins:   []string{"https://dashboard.example"},
	}).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/alerts/latest", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dashboard.example" {
		t.Errorf("expected allowed origin header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/alerts/latest", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin header for unknown origin, got %q", got)
	}
}
