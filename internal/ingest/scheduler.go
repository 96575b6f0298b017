package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/rfmartins/daycast/internal/analysis"
	"github.com/rfmartins/daycast/internal/metrics"
	"github.com/rfmartins/daycast/internal/models"
	"github.com/rfmartins/daycast/internal/store"
)

// ErrAnalysisRunning is returned when an analysis run is requested while a
// previous one has not finished.
var ErrAnalysisRunning = errors.New("analysis already running")

// Narrator generates optional natural-language summaries for reports.
type Narrator interface {
	Narrate(ctx context.Context, report *models.Report) (string, error)
}

// Scheduler drives periodic ingestion and analysis on cron schedules:
// ingestion at the top of the hour, analysis five minutes past, so a run
// always sees the freshest observations.
type Scheduler struct {
	store    *store.Store
	client   *OpenMeteo
	pipeline *analysis.Pipeline
	narrator Narrator
	loc      *time.Location
	cron     *gocron.Scheduler

	ingestSpec  string
	analyzeSpec string
	analyzing   atomic.Bool
}

func NewScheduler(st *store.Store, client *OpenMeteo, pipeline *analysis.Pipeline, loc *time.Location, ingestSpec, analyzeSpec string) *Scheduler {
	return &Scheduler{
		store:       st,
		client:      client,
		pipeline:    pipeline,
		loc:         loc,
		cron:        gocron.NewScheduler(time.UTC),
		ingestSpec:  ingestSpec,
		analyzeSpec: analyzeSpec,
	}
}

// SetNarrator configures optional narrative generation for today's report.
func (s *Scheduler) SetNarrator(n Narrator) {
	s.narrator = n
}

// Start registers the cron jobs and starts the scheduler in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.Cron(s.ingestSpec).Do(func() {
		if err := s.IngestOnce(ctx); err != nil {
			log.Printf("scheduler: ingest failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule ingest: %w", err)
	}

	if _, err := s.cron.Cron(s.analyzeSpec).Do(func() {
		if err := s.TryAnalyze(ctx); err != nil && !errors.Is(err, ErrAnalysisRunning) {
			log.Printf("scheduler: analysis failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule analysis: %w", err)
	}

	s.cron.StartAsync()
	return nil
}

// Stop stops the cron scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// IngestOnce fetches the full window from both endpoints and stores it.
func (s *Scheduler) IngestOnce(ctx context.Context) error {
	now := time.Now().In(s.loc)
	start := now.AddDate(0, 0, -FetchWindowDays)
	end := now.AddDate(0, 0, FetchWindowDays)

	forecastRun, err := s.store.StartIngestRun("open-meteo", "forecast")
	if err != nil {
		return fmt.Errorf("start forecast run: %w", err)
	}
	forecast, stats, err := s.client.FetchForecast(ctx, start, end)
	recordStats(forecastRun, stats)
	if err != nil {
		failRun(forecastRun, err)
		s.store.CompleteIngestRun(forecastRun)
		return fmt.Errorf("fetch forecast: %w", err)
	}

	airRun, err := s.store.StartIngestRun("open-meteo", "air-quality")
	if err != nil {
		return fmt.Errorf("start air quality run: %w", err)
	}
	air, airStats, err := s.client.FetchAirQuality(ctx, start, end)
	recordStats(airRun, airStats)
	if err != nil {
		failRun(airRun, err)
		s.store.CompleteIngestRun(airRun)
		s.store.CompleteIngestRun(forecastRun)
		return fmt.Errorf("fetch air quality: %w", err)
	}

	processed, err := Process(forecast, air, s.loc)
	if err != nil {
		failRun(forecastRun, err)
		s.store.CompleteIngestRun(forecastRun)
		s.store.CompleteIngestRun(airRun)
		return fmt.Errorf("process payloads: %w", err)
	}

	if err := s.persist(processed, forecastRun, airRun); err != nil {
		return err
	}
	if err := s.store.CompleteIngestRun(forecastRun); err != nil {
		log.Printf("scheduler: complete forecast run: %v", err)
	}
	if err := s.store.CompleteIngestRun(airRun); err != nil {
		log.Printf("scheduler: complete air quality run: %v", err)
	}

	log.Printf("scheduler: ingested %d hourly and %d daily records", len(processed.Hourly), len(processed.Daily))
	return nil
}

// persist stores the processed records and fills in run bookkeeping. On a
// storage failure both runs are completed as failed so no audit row is left
// open with a null finished_at.
func (s *Scheduler) persist(processed *ProcessResult, forecastRun, airRun *store.IngestRun) error {
	fail := func(err error) error {
		failRun(forecastRun, err)
		failRun(airRun, err)
		s.store.CompleteIngestRun(forecastRun)
		s.store.CompleteIngestRun(airRun)
		return err
	}

	var stored int64
	for _, obs := range processed.Hourly {
		if err := s.store.UpsertHourly(obs); err != nil {
			return fail(fmt.Errorf("upsert hourly %s: %w", obs.Timestamp, err))
		}
		stored++
	}
	metrics.ObservationsIngested.WithLabelValues("hourly").Add(float64(len(processed.Hourly)))

	for _, d := range processed.Daily {
		if err := s.store.UpsertDaily(d); err != nil {
			return fail(fmt.Errorf("upsert daily %s: %w", d.DateString(), err))
		}
	}
	metrics.ObservationsIngested.WithLabelValues("daily").Add(float64(len(processed.Daily)))

	forecastRun.RecordsParsed = sql.NullInt64{Int64: int64(len(processed.Hourly) + len(processed.Daily)), Valid: true}
	forecastRun.RecordsStored = sql.NullInt64{Int64: stored + int64(len(processed.Daily)), Valid: true}
	forecastRun.ParseErrors = sql.NullInt64{Int64: int64(processed.ParseErrors), Valid: true}
	forecastRun.Success = true
	airRun.Success = true
	return nil
}

// TryAnalyze runs the analysis pipeline unless one is already in flight.
// Single-flight is enforced here, not in the pipeline, so concurrent HTTP
// triggers and cron ticks contend on one flag.
func (s *Scheduler) TryAnalyze(ctx context.Context) error {
	if !s.analyzing.CompareAndSwap(false, true) {
		return ErrAnalysisRunning
	}
	defer s.analyzing.Store(false)
	return s.runAnalysis(ctx)
}

func (s *Scheduler) runAnalysis(ctx context.Context) error {
	started := time.Now()

	now := time.Now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	start := today.AddDate(0, 0, -FetchWindowDays)
	end := today.AddDate(0, 0, FetchWindowDays)
	hourlyEnd := end.Add(24*time.Hour - time.Second) // include the last day's hours

	hourly, err := s.store.GetHourlyRange(start, hourlyEnd)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("load hourly: %w", err)
	}
	daily, err := s.store.GetDailyRange(start, end)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("load daily: %w", err)
	}

	reports, err := s.pipeline.Run(hourly, daily)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("run pipeline: %w", err)
	}

	for _, r := range reports {
		if err := s.store.UpsertReport(r); err != nil {
			metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("upsert report %s: %w", r.Date, err)
		}
		metrics.ReportsUpserted.Inc()
	}

	if s.narrator != nil {
		s.narrateToday(ctx, reports, today.Format("2006-01-02"))
	}

	metrics.PipelineRunsTotal.WithLabelValues("ok").Inc()
	metrics.PipelineDuration.Observe(time.Since(started).Seconds())
	log.Printf("scheduler: analysis produced %d reports in %s", len(reports), time.Since(started).Round(time.Millisecond))
	return nil
}

// narrateToday generates a summary for today's report only. Failures are
// logged, never fatal: the report is already stored.
func (s *Scheduler) narrateToday(ctx context.Context, reports []*models.Report, today string) {
	for _, r := range reports {
		if r.Date != today {
			continue
		}
		text, err := s.narrator.Narrate(ctx, r)
		if err != nil {
			log.Printf("scheduler: narrative for %s: %v", today, err)
			return
		}
		if err := s.store.SetReportNarrative(today, text); err != nil {
			log.Printf("scheduler: store narrative for %s: %v", today, err)
		}
		return
	}
}

func recordStats(run *store.IngestRun, stats *FetchStats) {
	if stats == nil {
		return
	}
	if stats.HTTPStatus != 0 {
		run.HTTPStatus = sql.NullInt64{Int64: int64(stats.HTTPStatus), Valid: true}
	}
	if stats.ResponseBytes != 0 {
		run.ResponseSizeBytes = sql.NullInt64{Int64: stats.ResponseBytes, Valid: true}
	}
}

func failRun(run *store.IngestRun, err error) {
	run.Success = false
	run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
}
