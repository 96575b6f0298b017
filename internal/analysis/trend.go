package analysis

import (
	"math"
	"time"

	"github.com/rfmartins/daycast/internal/models"
)

const (
	trendWindowDays          = 3
	trendMinSamples          = 3
	trendThreshold           = 1.0
	volatilityHighThreshold  = 1.5
	volatilityModThreshold   = 1.0
	deterioratingPenalty     = -0.5
	futureRiskScoreThreshold = 2.0
)

const (
	TrendImproving     = "improving"
	TrendStable        = "stable"
	TrendDeteriorating = "deteriorating"
)

const (
	VolatilityStable   = "stable"
	VolatilityModerate = "moderate"
	VolatilityHigh     = "high"
)

const (
	warnDeteriorating = "Conditions are expected to worsen over the coming days."
	warnUnstable      = "Unstable conditions, check the hourly forecast."
	warnFutureRisk    = "Adverse conditions expected in the next 3 days."
)

type trendAdjustment struct {
	day      *ScoredDay
	typ      ScoreType
	context  *models.TemporalContext
	delta    float64
	warnings []string
}

// AnalyzeTrends fills each day's temporal context and applies the
// deterioration adjustment. All windows are computed from a snapshot of the
// scores taken before any adjustment, so results do not depend on map
// iteration order.
func AnalyzeTrends(days map[string]*ScoredDay) {
	snapshot := make(map[string]map[ScoreType]float64, len(days))
	for date, day := range days {
		scores := make(map[ScoreType]float64, len(ScoreTypes))
		for _, typ := range ScoreTypes {
			scores[typ] = day.Scores[typ].Score
		}
		snapshot[date] = scores
	}

	var adjustments []trendAdjustment
	for date, day := range days {
		for _, typ := range ScoreTypes {
			if adj := analyzeOne(date, typ, day, snapshot); adj != nil {
				adjustments = append(adjustments, *adj)
			}
		}
	}

	for _, adj := range adjustments {
		score := adj.day.Scores[adj.typ]
		score.Score = math.Max(0, math.Round((score.Score+adj.delta)*2)/2)
		adj.day.Temporal[adj.typ] = adj.context
		for _, w := range adj.warnings {
			adj.day.Warnings = appendWarning(adj.day.Warnings, w)
		}
	}
}

func analyzeOne(date string, typ ScoreType, day *ScoredDay, snapshot map[string]map[ScoreType]float64) *trendAdjustment {
	var valid, past, future []float64
	for _, sample := range scoreWindow(date, typ, snapshot) {
		if sample.score == nil {
			continue
		}
		valid = append(valid, *sample.score)
		if sample.offset < 0 {
			past = append(past, *sample.score)
		} else if sample.offset > 0 {
			future = append(future, *sample.score)
		}
	}

	if len(valid) < trendMinSamples {
		return nil
	}

	trend := TrendStable
	var avgPrev, avgNext *float64
	if len(past) > 0 && len(future) > 0 {
		p := round1(mean(past))
		n := round1(mean(future))
		avgPrev, avgNext = &p, &n
		if n-p > trendThreshold {
			trend = TrendImproving
		} else if n-p < -trendThreshold {
			trend = TrendDeteriorating
		}
	}

	volatility := round2(sampleStddev(valid))
	volatilityLabel := VolatilityStable
	if volatility > volatilityHighThreshold {
		volatilityLabel = VolatilityHigh
	} else if volatility > volatilityModThreshold {
		volatilityLabel = VolatilityModerate
	}

	adj := trendAdjustment{
		day: day,
		typ: typ,
		context: &models.TemporalContext{
			Trend:           trend,
			Volatility:      volatility,
			VolatilityLabel: volatilityLabel,
			AvgPrevious:     avgPrev,
			AvgNext:         avgNext,
		},
	}

	if trend == TrendDeteriorating && volatility > volatilityModThreshold {
		adj.delta = deterioratingPenalty
		adj.warnings = append(adj.warnings, warnDeteriorating)
	}
	if volatility > volatilityHighThreshold {
		adj.warnings = append(adj.warnings, warnUnstable)
	}
	if typ == ScoreRisk {
		for _, s := range future {
			if s <= futureRiskScoreThreshold {
				adj.warnings = append(adj.warnings, warnFutureRisk)
				break
			}
		}
	}
	return &adj
}

type windowSample struct {
	offset int
	score  *float64
}

// scoreWindow walks the ±3-day window around date. Dates are anchored at
// noon UTC so AddDate never crosses a day boundary through a DST shift.
func scoreWindow(date string, typ ScoreType, snapshot map[string]map[ScoreType]float64) []windowSample {
	center, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil
	}
	center = time.Date(center.Year(), center.Month(), center.Day(), 12, 0, 0, 0, time.UTC)

	samples := make([]windowSample, 0, 2*trendWindowDays+1)
	for i := -trendWindowDays; i <= trendWindowDays; i++ {
		key := center.AddDate(0, 0, i).Format("2006-01-02")
		sample := windowSample{offset: i}
		if scores, ok := snapshot[key]; ok {
			v := scores[typ]
			sample.score = &v
		}
		samples = append(samples, sample)
	}
	return samples
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleStddev uses the n-1 denominator.
func sampleStddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

func appendWarning(warnings []string, w string) []string {
	for _, existing := range warnings {
		if existing == w {
			return warnings
		}
	}
	return append(warnings, w)
}
