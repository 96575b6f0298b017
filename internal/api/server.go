package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rfmartins/daycast/internal/ingest"
	"github.com/rfmartins/daycast/internal/models"
	"github.com/rfmartins/daycast/internal/store"
)

// Analyzer triggers an analysis run. Satisfied by ingest.Scheduler.
type Analyzer interface {
	TryAnalyze(ctx context.Context) error
}

type Server struct {
	store    *store.Store
	analyzer Analyzer
	port     string
	loc      *time.Location
}

func NewServer(store *store.Store, analyzer Analyzer, port string, loc *time.Location) *Server {
	return &Server{
		store:    store,
		analyzer: analyzer,
		port:     port,
		loc:      loc,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/reports", s.handleReports)
	mux.HandleFunc("/api/reports/", s.handleReportByDate)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/ingest/health", s.handleIngestHealth)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	version, err := s.store.MigrationVersion()
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"schema_version": version,
	})
}

// handleReports returns the reports in the requested date range, defaulting
// to the full analysis window around today.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(s.loc)
	start := now.AddDate(0, 0, -ingest.FetchWindowDays).Format("2006-01-02")
	end := now.AddDate(0, 0, ingest.FetchWindowDays).Format("2006-01-02")

	if from := r.URL.Query().Get("from"); from != "" {
		if !validDate(from) {
			http.Error(w, "invalid from date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		start = from
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if !validDate(to) {
			http.Error(w, "invalid to date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end = to
	}

	reports, err := s.store.GetReports(start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if reports == nil {
		reports = []*models.Report{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}

func (s *Server) handleReportByDate(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	if !validDate(date) {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	report, err := s.store.GetReport(date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if report == nil {
		http.Error(w, "no report for date", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	err := s.analyzer.TryAnalyze(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if errors.Is(err, ingest.ErrAnalysisRunning) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"status": "busy", "error": err.Error()})
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "completed"})
}

func (s *Server) handleIngestHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.store.GetIngestHealth(7)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
