package analysis

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rfmartins/daycast/internal/models"
)

func weekOfObservations() ([]models.HourlyObservation, []models.DailyObservation) {
	var hourly []models.HourlyObservation
	var daily []models.DailyObservation
	for i := 0; i < 7; i++ {
		date := fmt.Sprintf("2026-01-%02d", 10+i)
		hourly = append(hourly, fullDay(date)...)
		daily = append(daily, dayObs(date, 29+float64(i%3), 21, "05:45", "19:30"))
	}
	return hourly, daily
}

func TestPipelineRun(t *testing.T) {
	hourly, daily := weekOfObservations()
	p := NewPipeline(time.UTC)

	reports, err := p.Run(hourly, daily)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 7 {
		t.Fatalf("got %d reports, want 7", len(reports))
	}

	for i, r := range reports {
		want := fmt.Sprintf("2026-01-%02d", 10+i)
		if r.Date != want {
			t.Errorf("reports[%d].Date = %q, want %q (sorted)", i, r.Date, want)
		}
		for typ, result := range r.Scores {
			if result.Score < 0 || result.Score > 5 {
				t.Errorf("%s %s score %v out of range", r.Date, typ, result.Score)
			}
		}
		if r.OverallClassification == "" || r.BestFor == "" {
			t.Errorf("%s missing classification", r.Date)
		}
		if len(r.Recommendations) == 0 {
			t.Errorf("%s missing recommendations", r.Date)
		}
	}

	// Interior days have full windows on both sides.
	mid := reports[3]
	if len(mid.TemporalContext) != 3 {
		t.Errorf("temporal context = %v, want all three types", mid.TemporalContext)
	}
}

func TestPipelineDeterministic(t *testing.T) {
	hourly, daily := weekOfObservations()
	p := NewPipeline(time.UTC)

	first, err := p.Run(hourly, daily)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Run(hourly, daily)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same input must produce identical reports")
	}
}

func TestPipelineRejectsMalformedInput(t *testing.T) {
	hourly, daily := weekOfObservations()
	p := NewPipeline(time.UTC)

	t.Run("nan temperature", func(t *testing.T) {
		bad := make([]models.HourlyObservation, len(hourly))
		copy(bad, hourly)
		bad[5].Temperature = math.NaN()

		_, err := p.Run(bad, daily)
		var merr *MalformedRecordError
		if !errors.As(err, &merr) {
			t.Fatalf("err = %v, want MalformedRecordError", err)
		}
		if merr.Kind != "hourly" || merr.Index != 5 {
			t.Errorf("got %+v", merr)
		}
	})

	t.Run("zero timestamp", func(t *testing.T) {
		bad := make([]models.HourlyObservation, len(hourly))
		copy(bad, hourly)
		bad[0].Timestamp = time.Time{}

		_, err := p.Run(bad, daily)
		var merr *MalformedRecordError
		if !errors.As(err, &merr) {
			t.Fatalf("err = %v, want MalformedRecordError", err)
		}
	})

	t.Run("sunset before sunrise", func(t *testing.T) {
		badDaily := make([]models.DailyObservation, len(daily))
		copy(badDaily, daily)
		badDaily[2].SunsetTS = badDaily[2].SunriseTS - 3600

		_, err := p.Run(hourly, badDaily)
		var merr *MalformedRecordError
		if !errors.As(err, &merr) {
			t.Fatalf("err = %v, want MalformedRecordError", err)
		}
		if merr.Kind != "daily" || merr.Index != 2 {
			t.Errorf("got %+v", merr)
		}
	})
}
