// Package openmeteo fetches humidity forecasts from the Open-Meteo API.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
)

// DefaultBaseURL is the Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Client implements domain.Forecaster.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client with a fixed per-request timeout.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// HumidityForecast fetches the hourly and daily humidity series selected by q.
func (c *Client) HumidityForecast(ctx context.Context, lat, lon float64, q domain.ForecastQuery) (domain.HumidityForecast, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return domain.HumidityForecast{}, err
	}
	q, err := q.Normalize()
	if err != nil {
		return domain.HumidityForecast{}, err
	}

	params := coordinateParams(lat, lon, q.Timezone)
	params.Set("past_days", strconv.Itoa(q.PastDays))
	params.Set("forecast_days", strconv.Itoa(q.ForecastDays))
	if len(q.Hourly) > 0 {
		params.Set("hourly", strings.Join(q.Hourly, ","))
	}
	if len(q.Daily) > 0 {
		params.Set("daily", strings.Join(q.Daily, ","))
	}

	resp, err := c.fetch(ctx, params, "forecast")
	if err != nil {
		return domain.HumidityForecast{}, err
	}
	f, err := resp.toForecast(q)
	if err != nil {
		c.record("forecast", observability.OutcomeError)
		return domain.HumidityForecast{}, c.serviceError("forecast", err)
	}
	c.record("forecast", observability.OutcomeSuccess)
	return f, nil
}

// CurrentHumidity returns the latest sample of every hourly humidity series
// from a one-day window. It is an approximation from forecast data, not a
// live observation.
func (c *Client) CurrentHumidity(ctx context.Context, lat, lon float64, timezone string) (map[string]float64, error) {
	q := domain.ForecastQuery{
		Daily:        []string{},
		PastDays:     1,
		ForecastDays: 1,
		Timezone:     timezone,
	}
	f, err := c.HumidityForecast(ctx, lat, lon, q)
	if err != nil {
		return nil, err
	}
	return domain.LatestHourly(f), nil
}

// CurrentConditions fetches temperature, relative humidity and weather code.
func (c *Client) CurrentConditions(ctx context.Context, lat, lon float64, timezone string) (domain.CurrentConditions, error) {
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return domain.CurrentConditions{}, err
	}
	if timezone == "" {
		timezone = domain.DefaultTimezone
	}

	params := coordinateParams(lat, lon, timezone)
	params.Set("current", strings.Join(domain.CurrentConditionFields(), ","))

	resp, err := c.fetch(ctx, params, "current")
	if err != nil {
		return domain.CurrentConditions{}, err
	}
	cond, err := resp.Current.toConditions(resp.zone())
	if err != nil {
		c.record("current", observability.OutcomeError)
		return domain.CurrentConditions{}, c.serviceError("current conditions", err)
	}
	c.record("current", observability.OutcomeSuccess)
	return cond, nil
}

func coordinateParams(lat, lon float64, timezone string) url.Values {
	return url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', -1, 64)},
		"timezone":  {timezone},
	}
}

func (c *Client) fetch(ctx context.Context, params url.Values, method string) (forecastResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return forecastResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ProviderDuration.WithLabelValues(observability.ProviderOpenMeteo, method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.record(method, observability.OutcomeError)
		c.logger.Warn("open-meteo request failed", "provider", observability.ProviderOpenMeteo, "method", method, "error", err)
		return forecastResponse{}, c.serviceError(method, fmt.Errorf("%w: %w", classify(err), err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.record(method, observability.OutcomeError)
		c.logger.Warn("open-meteo returned error status", "provider", observability.ProviderOpenMeteo, "method", method, "status", resp.StatusCode)
		return forecastResponse{}, c.serviceError(method,
			fmt.Errorf("open-meteo API error: status %d: %s: %w", resp.StatusCode, body, domain.ErrProviderUnavailable))
	}

	var out forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.record(method, observability.OutcomeError)
		return forecastResponse{}, c.serviceError(method, fmt.Errorf("decode response: %w", err))
	}
	return out, nil
}

func (c *Client) serviceError(op string, err error) error {
	return &domain.ServiceError{Op: op, Timeout: c.timeout, Err: err}
}

func (c *Client) record(method, outcome string) {
	c.metrics.ProviderRequests.WithLabelValues(observability.ProviderOpenMeteo, method, outcome).Inc()
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.ErrProviderTimeout
	}
	return domain.ErrProviderUnavailable
}
