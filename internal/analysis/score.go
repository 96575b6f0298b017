package analysis

import (
	"math"
	"sort"

	"github.com/rfmartins/daycast/internal/models"
)

// ScoreType identifies one of the three independent daily scores.
type ScoreType string

const (
	ScorePool ScoreType = "pool"
	ScoreWork ScoreType = "work"
	ScoreRisk ScoreType = "risk"
)

// ScoreTypes lists the score types in a stable evaluation order.
var ScoreTypes = []ScoreType{ScorePool, ScoreWork, ScoreRisk}

const missingPeriodWarning = "No data in period"

var qualityLabels = []string{"Terrible", "Poor", "Tolerable", "Good", "Very good", "Exceptional"}

func scoreLabel(score float64, typ ScoreType) string {
	n := int(score)
	if typ == ScoreRisk {
		if n <= 2 {
			return "High risk"
		}
		if n == 3 {
			return "Moderate risk"
		}
		return "No risk"
	}
	if n < 0 || n >= len(qualityLabels) {
		return qualityLabels[0]
	}
	return qualityLabels[n]
}

// ScoredDay is an EnrichedDay plus its three score results. Scores are
// float64 because the trend adjustment can land on a half point.
type ScoredDay struct {
	*EnrichedDay
	Scores   map[ScoreType]*models.ScoreResult
	Temporal map[ScoreType]*models.TemporalContext
	Warnings []string
}

// Score evaluates the three rule tables against one enriched day.
func Score(day *EnrichedDay) *ScoredDay {
	sd := &ScoredDay{
		EnrichedDay: day,
		Scores:      make(map[ScoreType]*models.ScoreResult, len(ScoreTypes)),
		Temporal:    make(map[ScoreType]*models.TemporalContext, len(ScoreTypes)),
	}

	pool, poolWarns := scoreWeighted(day.Pool, day.Summary, poolRules, poolFactorValue, true)
	work, workWarns := scoreWeighted(day.Work, day.Summary, workRules, workFactorValue, false)
	risk, riskWarns := scoreRisk(day.Risk, day.Summary)

	sd.Scores[ScorePool] = pool
	sd.Scores[ScoreWork] = work
	sd.Scores[ScoreRisk] = risk
	sd.Warnings = append(sd.Warnings, poolWarns...)
	sd.Warnings = append(sd.Warnings, workWarns...)
	sd.Warnings = append(sd.Warnings, riskWarns...)
	return sd
}

func scoreWeighted(m *PeriodMetrics, day DaySummary, rules map[string]weightedRule, value func(string, *PeriodMetrics, DaySummary) float64, pool bool) (*models.ScoreResult, []string) {
	typ := ScoreWork
	if pool {
		typ = ScorePool
	}
	if m == nil {
		return &models.ScoreResult{
			Score:     0,
			Label:     scoreLabel(0, typ),
			Breakdown: map[string]float64{},
		}, []string{missingPeriodWarning}
	}

	ctx := ruleContext{Temp: m.AvgTemp, WindEffect: m.WindEffect}

	total := 0.0
	breakdown := make(map[string]float64, len(rules))
	for _, name := range sortedFactors(rules) {
		rule := rules[name]
		points := float64(rule.Weight) * rule.Eval(value(name, m, day), ctx)
		breakdown[name] = points
		total += points
	}

	total = math.Max(0, total)
	if pool && m.TotalPrecipitation > 0 {
		total *= 0.3
	}

	score := clampScore(math.Round(total / 100 * 5))
	return &models.ScoreResult{
		Score:     score,
		Label:     scoreLabel(score, typ),
		Breakdown: breakdown,
	}, nil
}

func scoreRisk(m *PeriodMetrics, day DaySummary) (*models.ScoreResult, []string) {
	if m == nil {
		return &models.ScoreResult{
			Score:     0,
			Label:     scoreLabel(0, ScoreRisk),
			Breakdown: map[string]float64{},
		}, []string{missingPeriodWarning}
	}

	ctx := ruleContext{WindSpeed: m.AvgWind, TempMax: day.TempMax}

	total := 0.0
	breakdown := make(map[string]float64)
	var warnings []string
	for _, name := range sortedPenalties(riskPenalties) {
		penalty := riskPenalties[name](riskFactorValue(name, m, day), ctx)
		if penalty < 0 {
			breakdown[name] = penalty
			total += penalty
			warnings = append(warnings, factorWarning(name))
		}
	}

	score := clampScore(math.Round(math.Max(0, 100+total) / 100 * 5))
	return &models.ScoreResult{
		Score:     score,
		Label:     scoreLabel(score, ScoreRisk),
		Breakdown: breakdown,
	}, warnings
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(5, v))
}

// factorWarning turns "extreme_temp" into "Extreme Temp".
func factorWarning(name string) string {
	out := []byte(name)
	upper := true
	for i, c := range out {
		if c == '_' {
			out[i] = ' '
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			out[i] = c - 'a' + 'A'
		}
		upper = false
	}
	return string(out)
}

func sortedFactors(rules map[string]weightedRule) []string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedPenalties(rules map[string]penaltyRule) []string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
