package analysis

import (
	"sort"
	"time"

	"github.com/rfmartins/daycast/internal/models"
)

// Pipeline runs the four analysis stages over a window of observations:
// aggregation, scoring, trend analysis, report building. It holds no state
// between runs beyond the location used for hour-of-day bucketing.
type Pipeline struct {
	loc *time.Location
}

func NewPipeline(loc *time.Location) *Pipeline {
	return &Pipeline{loc: loc}
}

// Run produces one report per calendar day that has both daily and hourly
// coverage, sorted by date. The trend stage needs the whole window at once,
// so inputs should span the full fetch range.
func (p *Pipeline) Run(hourly []models.HourlyObservation, daily []models.DailyObservation) ([]*models.Report, error) {
	if err := validateHourly(hourly); err != nil {
		return nil, err
	}
	if err := validateDaily(daily); err != nil {
		return nil, err
	}

	enriched := Aggregate(hourly, daily, p.loc)

	scored := make(map[string]*ScoredDay, len(enriched))
	for date, day := range enriched {
		scored[date] = Score(day)
	}

	AnalyzeTrends(scored)

	reports := make([]*models.Report, 0, len(scored))
	for _, day := range scored {
		reports = append(reports, BuildReport(day))
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Date < reports[j].Date })
	return reports, nil
}
