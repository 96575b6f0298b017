package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/rfmartins/daycast/internal/httputil"
	"github.com/rfmartins/daycast/internal/metrics"
)

const (
	forecastBaseURL   = "https://api.open-meteo.com/v1/forecast"
	airQualityBaseURL = "https://air-quality-api.open-meteo.com/v1/air-quality"

	// FetchWindowDays is how far the fetch range extends on each side of
	// today. The trend analyzer depends on this exact span.
	FetchWindowDays = 3
)

var hourlyForecastFields = []string{
	"temperature_2m", "apparent_temperature", "relative_humidity_2m", "dew_point_2m",
	"precipitation_probability", "precipitation", "rain", "showers", "snowfall",
	"wind_speed_10m", "wind_direction_10m", "wind_gusts_10m",
	"surface_pressure", "cloud_cover", "uv_index", "lightning_potential",
}

var dailyForecastFields = []string{
	"temperature_2m_max", "temperature_2m_min", "sunrise", "sunset",
}

// OpenMeteo fetches forecast and air quality data for a fixed point.
type OpenMeteo struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	latitude  float64
	longitude float64
	timezone  string
}

func NewOpenMeteo(latitude, longitude float64, timezone string) *OpenMeteo {
	return &OpenMeteo{
		client: httputil.NewClient(),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "open-meteo",
			Timeout: time.Minute,
		}),
		latitude:  latitude,
		longitude: longitude,
		timezone:  timezone,
	}
}

// ForecastPayload mirrors the Open-Meteo forecast response. Hourly series
// use pointers because the API reports gaps as nulls.
type ForecastPayload struct {
	Hourly struct {
		Time                     []string   `json:"time"`
		Temperature2m            []*float64 `json:"temperature_2m"`
		ApparentTemperature      []*float64 `json:"apparent_temperature"`
		RelativeHumidity2m       []*float64 `json:"relative_humidity_2m"`
		DewPoint2m               []*float64 `json:"dew_point_2m"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
		Precipitation            []*float64 `json:"precipitation"`
		Rain                     []*float64 `json:"rain"`
		Showers                  []*float64 `json:"showers"`
		Snowfall                 []*float64 `json:"snowfall"`
		WindSpeed10m             []*float64 `json:"wind_speed_10m"`
		WindDirection10m         []*float64 `json:"wind_direction_10m"`
		WindGusts10m             []*float64 `json:"wind_gusts_10m"`
		SurfacePressure          []*float64 `json:"surface_pressure"`
		CloudCover               []*float64 `json:"cloud_cover"`
		UVIndex                  []*float64 `json:"uv_index"`
		LightningPotential       []*float64 `json:"lightning_potential"`
	} `json:"hourly"`
	Daily struct {
		Time             []string   `json:"time"`
		Temperature2mMax []*float64 `json:"temperature_2m_max"`
		Temperature2mMin []*float64 `json:"temperature_2m_min"`
		Sunrise          []string   `json:"sunrise"`
		Sunset           []string   `json:"sunset"`
	} `json:"daily"`
}

// AirQualityPayload mirrors the Open-Meteo air quality response.
type AirQualityPayload struct {
	Hourly struct {
		Time        []string   `json:"time"`
		EuropeanAQI []*float64 `json:"european_aqi"`
	} `json:"hourly"`
}

// FetchStats carries audit details of one endpoint call.
type FetchStats struct {
	HTTPStatus    int
	ResponseBytes int64
}

func (c *OpenMeteo) FetchForecast(ctx context.Context, start, end time.Time) (*ForecastPayload, *FetchStats, error) {
	params := c.rangeParams(start, end)
	params.Set("hourly", strings.Join(hourlyForecastFields, ","))
	params.Set("daily", strings.Join(dailyForecastFields, ","))

	body, stats, err := c.fetch(ctx, "forecast", forecastBaseURL+"?"+params.Encode())
	if err != nil {
		return nil, stats, err
	}

	var payload ForecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, stats, fmt.Errorf("unmarshal forecast: %w", err)
	}
	return &payload, stats, nil
}

func (c *OpenMeteo) FetchAirQuality(ctx context.Context, start, end time.Time) (*AirQualityPayload, *FetchStats, error) {
	params := c.rangeParams(start, end)
	params.Set("hourly", "european_aqi")

	body, stats, err := c.fetch(ctx, "air-quality", airQualityBaseURL+"?"+params.Encode())
	if err != nil {
		return nil, stats, err
	}

	var payload AirQualityPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, stats, fmt.Errorf("unmarshal air quality: %w", err)
	}
	return &payload, stats, nil
}

func (c *OpenMeteo) rangeParams(start, end time.Time) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(c.latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(c.longitude, 'f', -1, 64))
	params.Set("timezone", c.timezone)
	params.Set("start_date", start.Format("2006-01-02"))
	params.Set("end_date", end.Format("2006-01-02"))
	return params
}

func (c *OpenMeteo) fetch(ctx context.Context, endpoint, fetchURL string) ([]byte, *FetchStats, error) {
	stats := &FetchStats{}
	started := time.Now()

	var body []byte
	operation := func() error {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
			if err != nil {
				return nil, backoff.Permanent(err)
			}

			resp, err := c.client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
			}
			defer resp.Body.Close()

			stats.HTTPStatus = resp.StatusCode
			metrics.OpenMeteoAPICallsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return nil, fmt.Errorf("fetch %s: status %d", endpoint, resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return nil, backoff.Permanent(fmt.Errorf("fetch %s: status %d: %s", endpoint, resp.StatusCode, string(b)))
			}

			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, backoff.Permanent(fmt.Errorf("read body: %w", err))
			}
			return b, nil
		})
		if err != nil {
			// An open breaker will not recover within this retry loop.
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = result.([]byte)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, stats, err
	}

	stats.ResponseBytes = int64(len(body))
	metrics.OpenMeteoAPILatency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
	return body, stats, nil
}
