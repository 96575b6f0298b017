package analysis

import (
	"fmt"

	"github.com/rfmartins/daycast/internal/models"
)

type classificationRule struct {
	match          func(pool, work, risk float64) bool
	classification string
	bestFor        string
}

// Ordered; first match wins. The risk gate comes first so a dangerous day is
// never sold as a great one.
var classificationRules = []classificationRule{
	{
		match:          func(_, _, risk float64) bool { return risk <= 2 },
		classification: "Adverse conditions - caution",
		bestFor:        "indoors/caution",
	},
	{
		match:          func(pool, _, risk float64) bool { return pool >= 4 && risk >= 4 },
		classification: "Excellent day for outdoor leisure",
		bestFor:        "pool/leisure",
	},
	{
		match:          func(_, work, risk float64) bool { return work >= 4 && risk >= 4 },
		classification: "Great day for productive activities",
		bestFor:        "work",
	},
	{
		match:          func(pool, work, risk float64) bool { return pool >= 3 && work >= 3 && risk >= 3 },
		classification: "Balanced, comfortable day",
		bestFor:        "balanced",
	},
	{
		match:          func(pool, work, _ float64) bool { return pool <= 2 && work <= 2 },
		classification: "Poor day - consider staying indoors",
		bestFor:        "indoors/caution",
	},
}

type recommendationRule struct {
	match func(day *ScoredDay) bool
	text  string
}

var recommendationRules = []recommendationRule{
	{
		match: func(d *ScoredDay) bool { return d.Risk != nil && d.Risk.MaxUV > 8 },
		text:  "Use SPF 50+ sunscreen and avoid exposure between 11am and 3pm.",
	},
	{
		match: func(d *ScoredDay) bool {
			return d.Pool != nil && (d.Pool.DewComfort == DewMuggy || d.Pool.DewComfort == DewExtremelyMuggy)
		},
		text: "Muggy day - stay hydrated.",
	},
	{
		match: func(d *ScoredDay) bool { return d.Risk != nil && d.Risk.MaxWindGust > 25 },
		text:  "Moderate to strong wind - secure loose objects.",
	},
	{
		match: func(d *ScoredDay) bool { return d.Pool != nil && d.Pool.MaxPrecipProb > 0.5 },
		text:  "High chance of rain - take an umbrella.",
	},
	{
		match: func(d *ScoredDay) bool { return d.Pool != nil && d.Pool.CloudEffect == CloudScorchingSun },
		text:  "Strong sun and heat - seek shade.",
	},
	{
		match: func(d *ScoredDay) bool { return d.Summary.Amplitude > 10 },
		text:  "Large temperature swing - dress in layers.",
	},
	{
		match: func(d *ScoredDay) bool { return d.Risk != nil && d.Risk.AvgAQI > 100 },
		text:  "Poor air quality - avoid intense outdoor exercise.",
	},
	{
		match: func(d *ScoredDay) bool { return d.Risk != nil && d.Risk.MaxLightningPotential > 50 },
		text:  "Lightning risk - avoid open areas and the pool.",
	},
}

const defaultRecommendation = "Pleasant conditions, no special recommendations."

// BuildReport assembles the final advisory for one analyzed day.
func BuildReport(day *ScoredDay) *models.Report {
	pool := day.Scores[ScorePool].Score
	work := day.Scores[ScoreWork].Score
	risk := day.Scores[ScoreRisk].Score

	classification := "Moderate day"
	bestFor := "none"
	for _, rule := range classificationRules {
		if rule.match(pool, work, risk) {
			classification = rule.classification
			bestFor = rule.bestFor
			break
		}
	}

	var recommendations []string
	for _, rule := range recommendationRules {
		if rule.match(day) {
			recommendations = append(recommendations, rule.text)
		}
	}
	if len(recommendations) == 0 {
		recommendations = []string{defaultRecommendation}
	}

	scores := make(map[string]*models.ScoreResult, len(day.Scores))
	for typ, result := range day.Scores {
		scores[string(typ)] = result
	}
	temporal := make(map[string]*models.TemporalContext, len(ScoreTypes))
	for _, typ := range ScoreTypes {
		if ctx, ok := day.Temporal[typ]; ok {
			temporal[string(typ)] = ctx
		}
	}

	warnings := dedupWarnings(day.Warnings)

	return &models.Report{
		Date: day.Date,
		DailySummary: models.DailySummary{
			TempMax:         day.Summary.TempMax,
			TempMin:         day.Summary.TempMin,
			Amplitude:       day.Summary.Amplitude,
			DayLengthHours:  day.Summary.DayLengthHours,
			UsefulHoursPool: hourWindow(day.Summary.PoolStart, day.Summary.PoolEnd),
			UsefulHoursWork: hourWindow(day.Summary.WorkStart, day.Summary.WorkEnd),
		},
		Scores:                scores,
		TemporalContext:       temporal,
		OverallClassification: classification,
		BestFor:               bestFor,
		BestTimeWindows: models.TimeWindows{
			Pool: hourWindow(day.Summary.PoolStart, day.Summary.PoolEnd),
			Work: hourWindow(day.Summary.WorkStart, day.Summary.WorkEnd),
		},
		Recommendations: recommendations,
		Warnings:        warnings,
	}
}

func hourWindow(start, end int) string {
	return fmt.Sprintf("%dh-%dh", start, end)
}

// dedupWarnings keeps the first occurrence of each warning in order. Both
// scoring and trend analysis can surface the same condition for a day.
func dedupWarnings(warnings []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(warnings))
	for _, w := range warnings {
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
