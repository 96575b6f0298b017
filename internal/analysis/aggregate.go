package analysis

import (
	"time"

	"github.com/rfmartins/daycast/internal/models"
)

const (
	poolDefaultStartHour = 10
	poolDefaultEndHour   = 18
	workStartHour        = 7
	workEndHour          = 18
	fullDayStartHour     = 0
	fullDayEndHour       = 23
)

// PeriodMetrics aggregates the hourly observations whose local hour falls
// inside one period window. Means are over all qualifying hours; maxima track
// the worst hour. The derived fields are computed from the aggregated means,
// never from individual hours.
type PeriodMetrics struct {
	Hours                 int
	AvgTemp               float64
	MaxTemp               float64
	AvgWind               float64
	MaxWindGust           float64
	AvgHumidity           float64 // percent
	AvgDewPoint           float64
	MaxUV                 float64
	TotalPrecipitation    float64
	MaxPrecipProb         float64 // fraction [0,1]
	AvgCloudCover         float64 // fraction [0,1]
	AvgApparentTemp       float64
	AvgAQI                float64
	AvgPressure           float64
	MaxPrecipHourly       float64
	MaxLightningPotential float64

	WindChill   float64
	HeatIndex   float64
	DewComfort  DewComfort
	CloudEffect CloudEffect
	WindEffect  WindDirectionEffect
}

// DaySummary is the aggregator's day-level output: temperature extremes,
// daylight, and the usable-hour windows for each activity.
type DaySummary struct {
	TempMax        float64
	TempMin        float64
	Amplitude      float64
	DayLengthHours float64
	PoolStart      int
	PoolEnd        int
	WorkStart      int
	WorkEnd        int
}

// EnrichedDay is one calendar date with its summary and the three period
// aggregations. A period pointer is nil when no hour qualified.
type EnrichedDay struct {
	Date    string
	Summary DaySummary
	Pool    *PeriodMetrics
	Work    *PeriodMetrics
	Risk    *PeriodMetrics
}

// Aggregate groups hourly observations by local calendar date and builds an
// EnrichedDay for every daily record that has at least one matching hour.
// Days with a daily record but no hourly data are skipped: scoring a day from
// extremes alone would be misleading, so it is treated as insufficient data.
func Aggregate(hourly []models.HourlyObservation, daily []models.DailyObservation, loc *time.Location) map[string]*EnrichedDay {
	byDay := make(map[string][]models.HourlyObservation)
	for _, rec := range hourly {
		day := rec.Timestamp.In(loc).Format("2006-01-02")
		byDay[day] = append(byDay[day], rec)
	}

	days := make(map[string]*EnrichedDay)
	for _, d := range daily {
		dateStr := d.DateString()
		dayHours := byDay[dateStr]
		if len(dayHours) == 0 {
			continue
		}

		sunriseHour := time.Unix(d.SunriseTS, 0).In(loc).Hour()
		sunsetHour := time.Unix(d.SunsetTS, 0).In(loc).Hour()

		summary := DaySummary{
			TempMax:        d.TempMax,
			TempMin:        d.TempMin,
			Amplitude:      d.TempMax - d.TempMin,
			DayLengthHours: round2(float64(d.SunsetTS-d.SunriseTS) / 3600),
			PoolStart:      max(poolDefaultStartHour, sunriseHour+1),
			PoolEnd:        min(poolDefaultEndHour, sunsetHour-1),
			WorkStart:      workStartHour,
			WorkEnd:        workEndHour,
		}

		days[dateStr] = &EnrichedDay{
			Date:    dateStr,
			Summary: summary,
			Pool:    aggregatePeriod(dayHours, summary.PoolStart, summary.PoolEnd, loc),
			Work:    aggregatePeriod(dayHours, workStartHour, workEndHour, loc),
			Risk:    aggregatePeriod(dayHours, fullDayStartHour, fullDayEndHour, loc),
		}
	}
	return days
}

// aggregatePeriod reduces the hours whose local hour-of-day falls in
// [startHour, endHour] inclusive. Returns nil when the window is empty.
func aggregatePeriod(hours []models.HourlyObservation, startHour, endHour int, loc *time.Location) *PeriodMetrics {
	var period []models.HourlyObservation
	for _, rec := range hours {
		h := rec.Timestamp.In(loc).Hour()
		if h >= startHour && h <= endHour {
			period = append(period, rec)
		}
	}
	if len(period) == 0 {
		return nil
	}

	m := &PeriodMetrics{Hours: len(period)}
	var sumDirection float64
	var sumAQI float64
	var aqiCount int
	first := true

	for _, r := range period {
		m.AvgTemp += r.Temperature
		m.AvgWind += r.WindSpeed
		m.AvgHumidity += r.Humidity * 100
		m.AvgDewPoint += r.DewPoint
		m.AvgCloudCover += r.CloudCover
		m.AvgPressure += r.SurfacePressure
		m.AvgApparentTemp += r.ApparentTemperature
		m.TotalPrecipitation += r.Precipitation
		sumDirection += r.WindDirection
		if r.AQI.Valid {
			sumAQI += r.AQI.Float64
			aqiCount++
		}

		if first || r.Temperature > m.MaxTemp {
			m.MaxTemp = r.Temperature
			first = false
		}
		if r.WindGusts > m.MaxWindGust {
			m.MaxWindGust = r.WindGusts
		}
		if r.UVIndex > m.MaxUV {
			m.MaxUV = r.UVIndex
		}
		if r.PrecipProbability > m.MaxPrecipProb {
			m.MaxPrecipProb = r.PrecipProbability
		}
		if r.Precipitation > m.MaxPrecipHourly {
			m.MaxPrecipHourly = r.Precipitation
		}
		if r.LightningPotential > m.MaxLightningPotential {
			m.MaxLightningPotential = r.LightningPotential
		}
	}

	n := float64(len(period))
	m.AvgTemp = round2(m.AvgTemp / n)
	m.AvgWind = round2(m.AvgWind / n)
	m.AvgHumidity = round2(m.AvgHumidity / n)
	m.AvgDewPoint = round2(m.AvgDewPoint / n)
	m.AvgCloudCover = round2(m.AvgCloudCover / n)
	m.AvgPressure = round2(m.AvgPressure / n)
	m.AvgApparentTemp = round2(m.AvgApparentTemp / n)
	if aqiCount > 0 {
		m.AvgAQI = round2(sumAQI / float64(aqiCount))
	}

	avgDirection := sumDirection / n

	m.WindChill = windChill(m.AvgTemp, m.AvgWind)
	m.HeatIndex = heatIndex(m.AvgTemp, m.AvgHumidity)
	m.DewComfort = dewPointComfort(m.AvgDewPoint)
	m.CloudEffect = cloudEffect(m.AvgTemp, m.AvgCloudCover*100)
	m.WindEffect = windDirectionEffect(avgDirection, m.AvgWind)

	return m
}
