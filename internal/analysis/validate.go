package analysis

import (
	"fmt"
	"math"

	"github.com/rfmartins/daycast/internal/models"
)

// MalformedRecordError reports an input record the pipeline refuses to
// analyze. Scores computed from NaN or Inf inputs would silently poison
// every comparison downstream, so validation rejects them up front.
type MalformedRecordError struct {
	Kind   string // "hourly" or "daily"
	Index  int
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record %d: %s %s", e.Kind, e.Index, e.Field, e.Reason)
}

func validateHourly(records []models.HourlyObservation) error {
	for i, r := range records {
		if r.Timestamp.IsZero() {
			return &MalformedRecordError{Kind: "hourly", Index: i, Field: "timestamp", Reason: "is zero"}
		}
		fields := map[string]float64{
			"temperature":               r.Temperature,
			"apparent_temperature":      r.ApparentTemperature,
			"humidity":                  r.Humidity,
			"dew_point":                 r.DewPoint,
			"precipitation":             r.Precipitation,
			"precipitation_probability": r.PrecipProbability,
			"wind_speed":                r.WindSpeed,
			"wind_gusts":                r.WindGusts,
			"wind_direction":            r.WindDirection,
			"surface_pressure":          r.SurfacePressure,
			"cloud_cover":               r.CloudCover,
			"uv_index":                  r.UVIndex,
			"lightning_potential":       r.LightningPotential,
		}
		for name, v := range fields {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &MalformedRecordError{Kind: "hourly", Index: i, Field: name, Reason: "is not finite"}
			}
		}
		if r.AQI.Valid && (math.IsNaN(r.AQI.Float64) || math.IsInf(r.AQI.Float64, 0)) {
			return &MalformedRecordError{Kind: "hourly", Index: i, Field: "aqi", Reason: "is not finite"}
		}
	}
	return nil
}

func validateDaily(records []models.DailyObservation) error {
	for i, r := range records {
		if r.Date.IsZero() {
			return &MalformedRecordError{Kind: "daily", Index: i, Field: "date", Reason: "is zero"}
		}
		for name, v := range map[string]float64{"temp_max": r.TempMax, "temp_min": r.TempMin} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &MalformedRecordError{Kind: "daily", Index: i, Field: name, Reason: "is not finite"}
			}
		}
		if r.SunsetTS < r.SunriseTS {
			return &MalformedRecordError{Kind: "daily", Index: i, Field: "sunset_ts", Reason: "precedes sunrise"}
		}
	}
	return nil
}
