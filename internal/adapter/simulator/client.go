// Package simulator submits room humidity simulations to the remote engine.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
	"github.com/couchcryptid/humidity-adviser/internal/observability"
)

// DefaultBaseURL is where a locally running engine listens.
const DefaultBaseURL = "http://localhost:8000"

// Client implements domain.Simulator over HTTP.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a simulation engine client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// Simulate validates req, posts it to {base}/simulate and decodes the result.
func (c *Client) Simulate(ctx context.Context, req domain.SimulationRequest) (domain.SimulationResult, error) {
	if err := req.Validate(); err != nil {
		return domain.SimulationResult{}, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return domain.SimulationResult{}, fmt.Errorf("encode simulation request: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/simulate", bytes.NewReader(payload))
	if err != nil {
		return domain.SimulationResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	c.metrics.ProviderDuration.WithLabelValues(observability.ProviderSimulator, "simulate").Observe(time.Since(start).Seconds())
	if err != nil {
		c.record(observability.OutcomeError)
		c.logger.Warn("simulation request failed", "provider", observability.ProviderSimulator, "endpoint", c.baseURL, "error", err)
		if isConnectFailure(err) {
			return domain.SimulationResult{}, &domain.ConnectivityError{Endpoint: c.baseURL, Err: err}
		}
		return domain.SimulationResult{}, c.serviceError(fmt.Errorf("%w: %w", classify(err), err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		c.record(observability.OutcomeError)
		c.logger.Warn("simulation engine returned error status", "provider", observability.ProviderSimulator, "status", resp.StatusCode)
		return domain.SimulationResult{}, &domain.RemoteError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result domain.SimulationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.record(observability.OutcomeError)
		return domain.SimulationResult{}, c.serviceError(fmt.Errorf("decode simulation result: %w", err))
	}
	if err := result.Validate(); err != nil {
		c.record(observability.OutcomeError)
		return domain.SimulationResult{}, c.serviceError(err)
	}

	c.record(observability.OutcomeSuccess)
	c.logger.Debug("simulation complete", "sources", len(req.Sources), "steps", len(result.Timestamps))
	return result, nil
}

func (c *Client) serviceError(err error) error {
	return &domain.ServiceError{Op: "simulate", Timeout: c.timeout, Err: err}
}

func (c *Client) record(outcome string) {
	c.metrics.ProviderRequests.WithLabelValues(observability.ProviderSimulator, "simulate", outcome).Inc()
}

// isConnectFailure reports whether no connection could be established: a
// failed dial or an unresolvable host.
func isConnectFailure(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.ErrProviderTimeout
	}
	return domain.ErrProviderUnavailable
}
