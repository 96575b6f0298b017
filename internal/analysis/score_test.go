package analysis

import (
	"math"
	"testing"
)

func idealEnrichedDay() *EnrichedDay {
	return &EnrichedDay{
		Date: "2026-01-15",
		Summary: DaySummary{
			TempMax:        32,
			TempMin:        28,
			Amplitude:      4,
			DayLengthHours: 13.5,
			PoolStart:      10,
			PoolEnd:        18,
			WorkStart:      7,
			WorkEnd:        18,
		},
		Pool: &PeriodMetrics{
			AvgTemp:         30,
			AvgApparentTemp: 29,
			AvgWind:         15,
			AvgDewPoint:     14,
			MaxUV:           5,
			AvgCloudCover:   0.45,
			WindEffect:      WindCooling,
			DewComfort:      DewComfortable,
			CloudEffect:     CloudTemperedSun,
		},
		Work: &PeriodMetrics{
			AvgTemp:     23,
			AvgWind:     5,
			AvgDewPoint: 14,
			AvgPressure: 1015,
			AvgAQI:      30,
		},
		Risk: &PeriodMetrics{
			AvgWind:     5,
			MaxWindGust: 10,
			AvgAQI:      30,
			MaxUV:       5,
		},
	}
}

func TestScoreIdealDay(t *testing.T) {
	sd := Score(idealEnrichedDay())

	pool := sd.Scores[ScorePool]
	if pool.Score != 5 {
		t.Errorf("pool score = %v, want 5", pool.Score)
	}
	if pool.Label != "Exceptional" {
		t.Errorf("pool label = %q, want Exceptional", pool.Label)
	}
	// Every factor at its best multiplier.
	wantPoints := map[string]float64{
		"temperature":    20,
		"apparent_temp":  18,
		"wind":           18,
		"dew_point":      15,
		"uv":             10,
		"clouds":         8,
		"precipitation":  8,
		"amplitude":      5,
		"day_length":     3,
		"wind_direction": 5,
	}
	for factor, want := range wantPoints {
		if got := pool.Breakdown[factor]; math.Abs(got-want) > 1e-9 {
			t.Errorf("pool breakdown[%s] = %v, want %v", factor, got, want)
		}
	}

	work := sd.Scores[ScoreWork]
	if work.Score != 5 || work.Label != "Exceptional" {
		t.Errorf("work = %v %q, want 5 Exceptional", work.Score, work.Label)
	}

	risk := sd.Scores[ScoreRisk]
	if risk.Score != 5 || risk.Label != "No risk" {
		t.Errorf("risk = %v %q, want 5 No risk", risk.Score, risk.Label)
	}
	if len(risk.Breakdown) != 0 {
		t.Errorf("risk breakdown should be empty, got %v", risk.Breakdown)
	}
	if len(sd.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", sd.Warnings)
	}
}

func TestScorePoolRainCap(t *testing.T) {
	day := idealEnrichedDay()
	day.Pool.TotalPrecipitation = 1.0
	day.Pool.MaxPrecipHourly = 0.5

	sd := Score(day)
	pool := sd.Scores[ScorePool]

	// Rain intensity flips the precipitation factor negative, then the
	// availability cap squashes what is left: 87 * 0.3 -> score 1.
	if got := pool.Breakdown["precipitation"]; math.Abs(got-(-15)) > 1e-9 {
		t.Errorf("precipitation points = %v, want -15", got)
	}
	if pool.Score != 1 {
		t.Errorf("pool score = %v, want 1", pool.Score)
	}
	if pool.Label != "Poor" {
		t.Errorf("pool label = %q, want Poor", pool.Label)
	}
}

func TestScoreRiskPenalties(t *testing.T) {
	day := idealEnrichedDay()
	day.Summary.TempMin = 3
	day.Risk = &PeriodMetrics{
		AvgWind:               20,
		MaxWindGust:           60,
		MaxPrecipHourly:       12,
		MaxLightningPotential: 60,
		AvgAQI:                160,
		MaxUV:                 12,
	}

	sd := Score(day)
	risk := sd.Scores[ScoreRisk]

	wantPenalties := map[string]float64{
		"wind":          -50,
		"precipitation": -25,
		"lightning":     -30,
		"aqi":           -25,
		"extreme_temp":  -30,
		"uv":            -10,
	}
	for factor, want := range wantPenalties {
		if got := risk.Breakdown[factor]; got != want {
			t.Errorf("risk breakdown[%s] = %v, want %v", factor, got, want)
		}
	}

	// 100 - 170 clamps to zero.
	if risk.Score != 0 {
		t.Errorf("risk score = %v, want 0", risk.Score)
	}
	if risk.Label != "High risk" {
		t.Errorf("risk label = %q, want High risk", risk.Label)
	}

	want := []string{"Aqi", "Extreme Temp", "Lightning", "Precipitation", "Uv", "Wind"}
	if len(sd.Warnings) != len(want) {
		t.Fatalf("warnings = %v, want %v", sd.Warnings, want)
	}
	for i, w := range want {
		if sd.Warnings[i] != w {
			t.Errorf("warnings[%d] = %q, want %q", i, sd.Warnings[i], w)
		}
	}
}

func TestScoreMissingPeriod(t *testing.T) {
	day := idealEnrichedDay()
	day.Pool = nil

	sd := Score(day)
	pool := sd.Scores[ScorePool]

	if pool.Score != 0 {
		t.Errorf("pool score = %v, want 0", pool.Score)
	}
	if pool.Label != "Terrible" {
		t.Errorf("pool label = %q, want Terrible", pool.Label)
	}
	if len(pool.Breakdown) != 0 {
		t.Errorf("breakdown should be empty, got %v", pool.Breakdown)
	}
	found := false
	for _, w := range sd.Warnings {
		if w == "No data in period" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected missing-period warning, got %v", sd.Warnings)
	}
}

func TestScoreWorkTemperatureLadder(t *testing.T) {
	tests := []struct {
		name       string
		temp       float64
		wantPoints float64
	}{
		{name: "freezing", temp: 10, wantPoints: 0},
		{name: "chilly", temp: 17, wantPoints: 9.9},
		{name: "cool", temp: 19, wantPoints: 18},
		{name: "pleasant", temp: 21, wantPoints: 24.9},
		{name: "ideal", temp: 23, wantPoints: 30},
		{name: "warm", temp: 27, wantPoints: 18},
		{name: "hot", temp: 29, wantPoints: 9.9},
		{name: "scorching", temp: 36, wantPoints: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := idealEnrichedDay()
			day.Work.AvgTemp = tt.temp
			sd := Score(day)
			approx(t, sd.Scores[ScoreWork].Breakdown["temperature"], tt.wantPoints, 1e-9)
		})
	}
}
