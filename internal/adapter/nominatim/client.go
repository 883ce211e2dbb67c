package nominatim

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
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Client implements domain.PlaceLookup using the Nominatim API.
type Client struct {
	userAgent  string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. userAgent identifies the application
// as the Nominatim usage policy requires.
func NewClient(baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Search returns the best match for a free-text query, or nil if none.
func (c *Client) Search(ctx context.Context, query string) (*domain.Place, error) {
	params := url.Values{
		"q":              {query},
		"format":         {"jsonv2"},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}

	body, err := c.doRequest(ctx, c.baseURL+"/search?"+params.Encode(), "search")
	if err != nil {
		return nil, err
	}

	var results []place
	if err := json.Unmarshal(body, &results); err != nil {
		c.record("search", observability.OutcomeError)
		return nil, fmt.Errorf("decode search response: %w: %w", domain.ErrProviderUnavailable, err)
	}
	if len(results) == 0 {
		c.record("search", observability.OutcomeEmpty)
		return nil, nil
	}
	return c.toPlace("search", results[0])
}

// Reverse returns the best match at the given coordinates, or nil if none.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*domain.Place, error) {
	params := url.Values{
		"lat":            {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(lon, 'f', -1, 64)},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
	}

	body, err := c.doRequest(ctx, c.baseURL+"/reverse?"+params.Encode(), "reverse")
	if err != nil {
		return nil, err
	}

	var result place
	if err := json.Unmarshal(body, &result); err != nil {
		c.record("reverse", observability.OutcomeError)
		return nil, fmt.Errorf("decode reverse response: %w: %w", domain.ErrProviderUnavailable, err)
	}
	// Nominatim answers an unmatched reverse lookup with {"error": "Unable to geocode"}.
	if result.Error != "" {
		c.record("reverse", observability.OutcomeEmpty)
		return nil, nil
	}
	return c.toPlace("reverse", result)
}

func (c *Client) doRequest(ctx context.Context, fullURL, method string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ProviderDuration.WithLabelValues(observability.ProviderNominatim, method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.record(method, observability.OutcomeError)
		c.logger.Warn("nominatim request failed", "provider", observability.ProviderNominatim, "method", method, "error", err)
		return nil, fmt.Errorf("%s request: %w: %w", method, classify(err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(method, observability.OutcomeError)
		return nil, fmt.Errorf("read %s response: %w: %w", method, classify(err), err)
	}

	if resp.StatusCode != http.StatusOK {
		c.record(method, observability.OutcomeError)
		c.logger.Warn("nominatim returned error status", "provider", observability.ProviderNominatim, "method", method, "status", resp.StatusCode)
		return nil, fmt.Errorf("nominatim API error: status %d: %s: %w", resp.StatusCode, body, domain.ErrProviderUnavailable)
	}
	return body, nil
}

func (c *Client) toPlace(method string, p place) (*domain.Place, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		c.record(method, observability.OutcomeError)
		return nil, fmt.Errorf("parse latitude %q: %w: %w", p.Lat, domain.ErrProviderUnavailable, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		c.record(method, observability.OutcomeError)
		return nil, fmt.Errorf("parse longitude %q: %w: %w", p.Lon, domain.ErrProviderUnavailable, err)
	}
	c.record(method, observability.OutcomeSuccess)
	return &domain.Place{
		Latitude:   lat,
		Longitude:  lon,
		Address:    p.DisplayName,
		Components: p.Address,
	}, nil
}

func (c *Client) record(method, outcome string) {
	c.metrics.ProviderRequests.WithLabelValues(observability.ProviderNominatim, method, outcome).Inc()
}

// classify maps a transport error to the matching provider sentinel.
func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.ErrProviderTimeout
	}
	return domain.ErrProviderUnavailable
}

// Nominatim API response types.

type place struct {
	Lat         string            `json:"lat"` // decimal degrees as a string
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}
