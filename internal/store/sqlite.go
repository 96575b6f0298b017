package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rfmartins/daycast/internal/models"
)

type Store struct {
	db  *sql.DB
	loc *time.Location
}

func New(db *sql.DB, loc *time.Location) *Store {
	return &Store{db: db, loc: loc}
}

func (s *Store) UpsertHourly(obs models.HourlyObservation) error {
	_, err := s.db.Exec(`
		INSERT INTO hourly_observations (timestamp, temperature, apparent_temperature, humidity, dew_point, precipitation_probability, precipitation, precipitation_type, wind_speed, wind_gusts, wind_direction, surface_pressure, cloud_cover, uv_index, lightning_potential, aqi)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(timestamp) DO UPDATE SET
			temperature = excluded.temperature,
			apparent_temperature = excluded.apparent_temperature,
			humidity = excluded.humidity,
			dew_point = excluded.dew_point,
			precipitation_probability = excluded.precipitation_probability,
			precipitation = excluded.precipitation,
			precipitation_type = excluded.precipitation_type,
			wind_speed = excluded.wind_speed,
			wind_gusts = excluded.wind_gusts,
			wind_direction = excluded.wind_direction,
			surface_pressure = excluded.surface_pressure,
			cloud_cover = excluded.cloud_cover,
			uv_index = excluded.uv_index,
			lightning_potential = excluded.lightning_potential,
			aqi = excluded.aqi
	`, obs.Timestamp.UTC(), obs.Temperature, obs.ApparentTemperature, obs.Humidity, obs.DewPoint,
		obs.PrecipProbability, obs.Precipitation, obs.PrecipType, obs.WindSpeed, obs.WindGusts,
		obs.WindDirection, obs.SurfacePressure, obs.CloudCover, obs.UVIndex, obs.LightningPotential, obs.AQI)
	return err
}

func (s *Store) UpsertDaily(d models.DailyObservation) error {
	_, err := s.db.Exec(`
		INSERT INTO daily_observations (date, temp_max, temp_min, sunrise_ts, sunset_ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			temp_max = excluded.temp_max,
			temp_min = excluded.temp_min,
			sunrise_ts = excluded.sunrise_ts,
			sunset_ts = excluded.sunset_ts
	`, d.DateString(), d.TempMax, d.TempMin, d.SunriseTS, d.SunsetTS)
	return err
}

func (s *Store) GetHourlyRange(start, end time.Time) ([]models.HourlyObservation, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, temperature, apparent_temperature, humidity, dew_point, precipitation_probability, precipitation, precipitation_type, wind_speed, wind_gusts, wind_direction, surface_pressure, cloud_cover, uv_index, lightning_potential, aqi, created_at
		FROM hourly_observations
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []models.HourlyObservation
	for rows.Next() {
		var obs models.HourlyObservation
		if err := rows.Scan(&obs.Timestamp, &obs.Temperature, &obs.ApparentTemperature, &obs.Humidity,
			&obs.DewPoint, &obs.PrecipProbability, &obs.Precipitation, &obs.PrecipType, &obs.WindSpeed,
			&obs.WindGusts, &obs.WindDirection, &obs.SurfacePressure, &obs.CloudCover, &obs.UVIndex,
			&obs.LightningPotential, &obs.AQI, &obs.CreatedAt); err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}

func (s *Store) GetDailyRange(start, end time.Time) ([]models.DailyObservation, error) {
	rows, err := s.db.Query(`
		SELECT date, temp_max, temp_min, sunrise_ts, sunset_ts, created_at
		FROM daily_observations
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []models.DailyObservation
	for rows.Next() {
		var d models.DailyObservation
		var date string
		if err := rows.Scan(&date, &d.TempMax, &d.TempMin, &d.SunriseTS, &d.SunsetTS, &d.CreatedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("parse daily date %q: %w", date, err)
		}
		d.Date = parsed
		days = append(days, d)
	}
	return days, rows.Err()
}

func (s *Store) UpsertReport(r *models.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report %s: %w", r.Date, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO reports (date, classification, best_for, payload, generated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			classification = excluded.classification,
			best_for = excluded.best_for,
			payload = excluded.payload,
			generated_at = excluded.generated_at
	`, r.Date, r.OverallClassification, r.BestFor, string(payload), time.Now().UTC())
	return err
}

func (s *Store) GetReport(date string) (*models.Report, error) {
	row := s.db.QueryRow(`SELECT payload, narrative FROM reports WHERE date = ?`, date)

	var payload string
	var narrative sql.NullString
	err := row.Scan(&payload, &narrative)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeReport(payload, narrative)
}

func (s *Store) GetReports(start, end string) ([]*models.Report, error) {
	rows, err := s.db.Query(`
		SELECT payload, narrative FROM reports
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		var payload string
		var narrative sql.NullString
		if err := rows.Scan(&payload, &narrative); err != nil {
			return nil, err
		}
		r, err := decodeReport(payload, narrative)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// SetReportNarrative attaches generated narrative text to an existing report.
func (s *Store) SetReportNarrative(date, narrative string) error {
	result, err := s.db.Exec(`UPDATE reports SET narrative = ? WHERE date = ?`, narrative, date)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no report for date %s", date)
	}
	return nil
}

func decodeReport(payload string, narrative sql.NullString) (*models.Report, error) {
	var r models.Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	if narrative.Valid {
		r.Narrative = narrative.String
	}
	return &r, nil
}
