package ingest

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/rfmartins/daycast/internal/models"
)

const hourlyTimeLayout = "2006-01-02T15:04"

// ProcessResult is the outcome of converting raw payloads into records.
type ProcessResult struct {
	Hourly      []models.HourlyObservation
	Daily       []models.DailyObservation
	ParseErrors int
}

// Process converts the two API payloads into observation records. Hourly
// timestamps arrive as zone-less local strings because the request pins a
// timezone, so they are interpreted in loc. AQI rows are joined onto forecast
// hours by timestamp and stay null when the air quality series has no match.
func Process(forecast *ForecastPayload, air *AirQualityPayload, loc *time.Location) (*ProcessResult, error) {
	if forecast == nil || len(forecast.Hourly.Time) == 0 || len(forecast.Daily.Time) == 0 {
		return nil, fmt.Errorf("forecast payload missing hourly or daily series")
	}
	if air == nil || len(air.Hourly.Time) == 0 {
		return nil, fmt.Errorf("air quality payload missing hourly series")
	}

	aqiByTime := make(map[string]*float64, len(air.Hourly.Time))
	for i, ts := range air.Hourly.Time {
		if i < len(air.Hourly.EuropeanAQI) {
			aqiByTime[ts] = air.Hourly.EuropeanAQI[i]
		}
	}

	result := &ProcessResult{}
	h := forecast.Hourly
	for i, ts := range h.Time {
		timestamp, err := time.ParseInLocation(hourlyTimeLayout, ts, loc)
		if err != nil {
			log.Printf("ingest: skipping hourly record %d: bad timestamp %q", i, ts)
			result.ParseErrors++
			continue
		}

		precipType := "none"
		if val(h.Rain, i) > 0 || val(h.Showers, i) > 0 {
			precipType = "rain"
		} else if val(h.Snowfall, i) > 0 {
			precipType = "snow"
		}

		obs := models.HourlyObservation{
			Timestamp:           timestamp,
			Temperature:         val(h.Temperature2m, i),
			ApparentTemperature: val(h.ApparentTemperature, i),
			Humidity:            val(h.RelativeHumidity2m, i) / 100.0,
			DewPoint:            val(h.DewPoint2m, i),
			PrecipProbability:   val(h.PrecipitationProbability, i) / 100.0,
			Precipitation:       val(h.Precipitation, i),
			PrecipType:          precipType,
			WindSpeed:           val(h.WindSpeed10m, i),
			WindGusts:           val(h.WindGusts10m, i),
			WindDirection:       val(h.WindDirection10m, i),
			SurfacePressure:     val(h.SurfacePressure, i),
			CloudCover:          val(h.CloudCover, i) / 100.0,
			UVIndex:             val(h.UVIndex, i),
			LightningPotential:  val(h.LightningPotential, i),
		}
		if aqi, ok := aqiByTime[ts]; ok && aqi != nil {
			obs.AQI = sql.NullFloat64{Float64: *aqi, Valid: true}
		}
		result.Hourly = append(result.Hourly, obs)
	}

	d := forecast.Daily
	for i, dateStr := range d.Time {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			log.Printf("ingest: skipping daily record %d: bad date %q", i, dateStr)
			result.ParseErrors++
			continue
		}
		sunrise, err := time.ParseInLocation(hourlyTimeLayout, at(d.Sunrise, i), loc)
		if err != nil {
			log.Printf("ingest: skipping daily record %d: bad sunrise %q", i, at(d.Sunrise, i))
			result.ParseErrors++
			continue
		}
		sunset, err := time.ParseInLocation(hourlyTimeLayout, at(d.Sunset, i), loc)
		if err != nil {
			log.Printf("ingest: skipping daily record %d: bad sunset %q", i, at(d.Sunset, i))
			result.ParseErrors++
			continue
		}

		result.Daily = append(result.Daily, models.DailyObservation{
			Date:      date,
			TempMax:   val(d.Temperature2mMax, i),
			TempMin:   val(d.Temperature2mMin, i),
			SunriseTS: sunrise.Unix(),
			SunsetTS:  sunset.Unix(),
		})
	}

	return result, nil
}

func val(series []*float64, i int) float64 {
	if i >= len(series) || series[i] == nil {
		return 0
	}
	return *series[i]
}

func at(series []string, i int) string {
	if i >= len(series) {
		return ""
	}
	return series[i]
}
