package models

import (
	"database/sql"
	"time"
)

// HourlyObservation is one hour of weather for the configured location, as
// delivered by the ingestion worker. Records are never mutated after ingest.
type HourlyObservation struct {
	Timestamp           time.Time
	Temperature         float64 // °C
	ApparentTemperature float64 // °C
	Humidity            float64 // fraction [0,1]
	DewPoint            float64 // °C
	PrecipProbability   float64 // fraction [0,1]
	Precipitation       float64 // mm for the hour
	PrecipType          string  // "none", "rain", "snow"
	WindSpeed           float64 // km/h
	WindGusts           float64 // km/h
	WindDirection       float64 // degrees
	SurfacePressure     float64 // hPa
	CloudCover          float64 // fraction [0,1]
	UVIndex             float64
	LightningPotential  float64
	AQI                 sql.NullFloat64 // European AQI; the air-quality feed can lag the forecast feed
	CreatedAt           time.Time
}

// DailyObservation is the per-calendar-date record from the daily forecast feed.
type DailyObservation struct {
	Date      time.Time // date only, midnight UTC
	TempMax   float64
	TempMin   float64
	SunriseTS int64 // epoch seconds
	SunsetTS  int64
	CreatedAt time.Time
}

// DateString returns the ISO date key used throughout the pipeline.
func (d DailyObservation) DateString() string {
	return d.Date.Format("2006-01-02")
}

// DailySummary is the day-level portion of a report: temperature extremes and
// the usable-hour windows the aggregator derived from daylight.
type DailySummary struct {
	TempMax         float64 `json:"temp_max"`
	TempMin         float64 `json:"temp_min"`
	Amplitude       float64 `json:"amplitude"`
	DayLengthHours  float64 `json:"day_length_hours"`
	UsefulHoursPool string  `json:"useful_hours_pool"`
	UsefulHoursWork string  `json:"useful_hours_work"`
}

// ScoreResult is one 0-5 score with its label and per-factor point breakdown.
// Scores start as whole numbers; the trend analyzer may adjust them in 0.5 steps.
type ScoreResult struct {
	Score     float64            `json:"score"`
	Label     string             `json:"label"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// TemporalContext describes how one score type behaves across the ±3-day
// window around a date. AvgPrevious/AvgNext are nil when the window had no
// samples on that side.
type TemporalContext struct {
	Trend           string   `json:"trend"`
	Volatility      float64  `json:"volatility_val"`
	VolatilityLabel string   `json:"volatility_label"`
	AvgPrevious     *float64 `json:"avg_previous"`
	AvgNext         *float64 `json:"avg_next"`
}

// TimeWindows carries the usable-hour windows into the report body.
type TimeWindows struct {
	Pool string `json:"pool"`
	Work string `json:"work"`
}

// Report is the delivered artifact: one advisory per calendar date. The date
// is the natural key; persistence upserts on it.
type Report struct {
	Date                  string                      `json:"date"`
	DailySummary          DailySummary                `json:"daily_summary"`
	Scores                map[string]*ScoreResult     `json:"scores"`
	TemporalContext       map[string]*TemporalContext `json:"temporal_context"`
	OverallClassification string                      `json:"overall_classification"`
	BestFor               string                      `json:"best_for"`
	BestTimeWindows       TimeWindows                 `json:"best_time_windows"`
	Recommendations       []string                    `json:"recommendations"`
	Warnings              []string                    `json:"warnings"`
	Narrative             string                      `json:"narrative,omitempty"`
}
