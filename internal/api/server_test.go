package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rfmartins/daycast/internal/api"
	"github.com/rfmartins/daycast/internal/ingest"
	"github.com/rfmartins/daycast/internal/models"
	"github.com/rfmartins/daycast/internal/store"

	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) (*store.Store, *time.Location) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	loc := time.UTC
	s := store.New(db, loc)
	if err := s.Migrate(); err != nil {
		t.Fatal(err)
	}
	return s, loc
}

type stubAnalyzer struct {
	err   error
	calls int
}

func (a *stubAnalyzer) TryAnalyze(ctx context.Context) error {
	a.calls++
	return a.err
}

func seedReport(t *testing.T, s *store.Store, date string) {
	t.Helper()
	err := s.UpsertReport(&models.Report{
		Date:                  date,
		Scores:                map[string]*models.ScoreResult{"pool": {Score: 4, Label: "Very good"}},
		OverallClassification: "Excellent day for outdoor leisure",
		BestFor:               "pool",
		Recommendations:       []string{"Pleasant conditions, no special recommendations."},
		Warnings:              []string{},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	srv := api.NewServer(s, &stubAnalyzer{}, "8080", loc)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	if _, ok := body["schema_version"]; !ok {
		t.Error("expected schema_version in response")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	srv := api.NewServer(s, &stubAnalyzer{}, "8080", loc)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_") {
		t.Error("expected prometheus exposition output")
	}
}

func TestGetReportByDate(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	seedReport(t, s, "2026-01-15")
	srv := api.NewServer(s, &stubAnalyzer{}, "8080", loc)

	req := httptest.NewRequest("GET", "/api/reports/2026-01-15", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var report models.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Date != "2026-01-15" {
		t.Errorf("expected date 2026-01-15, got %s", report.Date)
	}
	if report.BestFor != "pool" {
		t.Errorf("expected best_for pool, got %s", report.BestFor)
	}
}

func TestGetReportByDate_NotFound(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	srv := api.NewServer(s, &stubAnalyzer{}, "8080", loc)

	req := httptest.NewRequest("GET", "/api/reports/2026-01-15", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 404 {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetReportByDate_BadDate(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	srv := api.NewServer(s, &stubAnalyzer{}, "8080", loc)

	req := httptest.NewRequest("GET", "/api/reports/not-a-date", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 400 {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetReportsRange(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	seedReport(t, s, "2026-01-14")
	seedReport(t, s, "2026-01-15")
	seedReport(t, s, "2026-01-20")
	srv := api.NewServer(s, &stubAnalyzer{}, "8080", loc)

	req := httptest.NewRequest("GET", "/api/reports?from=2026-01-14&to=2026-01-16", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reports []*models.Report
	if err := json.Unmarshal(w.Body.Bytes(), &reports); err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].Date != "2026-01-14" || reports[1].Date != "2026-01-15" {
		t.Errorf("unexpected dates: %s, %s", reports[0].Date, reports[1].Date)
	}
}

func TestGetReportsRange_Empty(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	srv := api.NewServer(s, &stubAnalyzer{}, "8080", loc)

	req := httptest.NewRequest("GET", "/api/reports", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %s", w.Body.String())
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	analyzer := &stubAnalyzer{}
	srv := api.NewServer(s, analyzer, "8080", loc)

	req := httptest.NewRequest("POST", "/api/analyze", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if analyzer.calls != 1 {
		t.Errorf("expected 1 analyzer call, got %d", analyzer.calls)
	}
	if !strings.Contains(w.Body.String(), "completed") {
		t.Error("expected completed status in response")
	}
}

func TestAnalyzeEndpoint_Busy(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	analyzer := &stubAnalyzer{err: ingest.ErrAnalysisRunning}
	srv := api.NewServer(s, analyzer, "8080", loc)

	req := httptest.NewRequest("POST", "/api/analyze", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 409 {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestAnalyzeEndpoint_Error(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	analyzer := &stubAnalyzer{err: errors.New("no observations")}
	srv := api.NewServer(s, analyzer, "8080", loc)

	req := httptest.NewRequest("POST", "/api/analyze", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 500 {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestAnalyzeEndpoint_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	srv := api.NewServer(s, &stubAnalyzer{}, "8080", loc)

	req := httptest.NewRequest("GET", "/api/analyze", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 405 {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestIngestHealthEndpoint(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	srv := api.NewServer(s, &stubAnalyzer{}, "8080", loc)

	run, err := s.StartIngestRun("open-meteo", "forecast")
	if err != nil {
		t.Fatal(err)
	}
	run.Success = true
	run.RecordsStored = sql.NullInt64{Int64: 48, Valid: true}
	if err := s.CompleteIngestRun(run); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/ingest/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "open-meteo") {
		t.Error("expected open-meteo source in response")
	}
}
