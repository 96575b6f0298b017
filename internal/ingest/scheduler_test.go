package ingest

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rfmartins/daycast/internal/models"
	"github.com/rfmartins/daycast/internal/store"
)

func setupSchedulerStore(t *testing.T) (*store.Store, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db, time.UTC)
	if err := st.Migrate(); err != nil {
		t.Fatal(err)
	}
	return st, db
}

func TestPersistFailureCompletesRuns(t *testing.T) {
	st, db := setupSchedulerStore(t)
	sched := NewScheduler(st, nil, nil, time.UTC, "", "")

	forecastRun, err := st.StartIngestRun("open-meteo", "forecast")
	if err != nil {
		t.Fatal(err)
	}
	airRun, err := st.StartIngestRun("open-meteo", "air-quality")
	if err != nil {
		t.Fatal(err)
	}

	// Break the observation table so the first upsert fails.
	if _, err := db.Exec("DROP TABLE hourly_observations"); err != nil {
		t.Fatal(err)
	}

	processed := &ProcessResult{
		Hourly: []models.HourlyObservation{
			{Timestamp: time.Date(2026, 1, 10, 13, 0, 0, 0, time.UTC)},
		},
	}
	if err := sched.persist(processed, forecastRun, airRun); err == nil {
		t.Fatal("expected persist to fail")
	}

	failed, err := st.GetRecentIngestErrors(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 2 {
		t.Fatalf("expected 2 failed runs, got %d", len(failed))
	}
	for _, run := range failed {
		if !run.FinishedAt.Valid {
			t.Errorf("run %d (%s): finished_at not set", run.ID, run.Endpoint)
		}
		if !run.ErrorMessage.Valid || run.ErrorMessage.String == "" {
			t.Errorf("run %d (%s): error message not recorded", run.ID, run.Endpoint)
		}
		if run.Success {
			t.Errorf("run %d (%s): expected failed run", run.ID, run.Endpoint)
		}
	}
}

func TestPersistRecordsRunStats(t *testing.T) {
	st, _ := setupSchedulerStore(t)
	sched := NewScheduler(st, nil, nil, time.UTC, "", "")

	forecastRun, err := st.StartIngestRun("open-meteo", "forecast")
	if err != nil {
		t.Fatal(err)
	}
	airRun, err := st.StartIngestRun("open-meteo", "air-quality")
	if err != nil {
		t.Fatal(err)
	}

	processed := &ProcessResult{
		Hourly: []models.HourlyObservation{
			{Timestamp: time.Date(2026, 1, 10, 13, 0, 0, 0, time.UTC)},
			{Timestamp: time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC)},
		},
		Daily: []models.DailyObservation{
			{Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
		},
		ParseErrors: 1,
	}
	if err := sched.persist(processed, forecastRun, airRun); err != nil {
		t.Fatal(err)
	}

	if !forecastRun.Success || !airRun.Success {
		t.Error("expected both runs marked successful")
	}
	if got := forecastRun.RecordsParsed.Int64; got != 3 {
		t.Errorf("expected 3 records parsed, got %d", got)
	}
	if got := forecastRun.RecordsStored.Int64; got != 3 {
		t.Errorf("expected 3 records stored, got %d", got)
	}
	if got := forecastRun.ParseErrors.Int64; got != 1 {
		t.Errorf("expected 1 parse error, got %d", got)
	}
}
