package wms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wms-platform/exception-service/internal/domain"
	"github.com/wms-platform/exception-service/pkg/resilience"
)

// Config holds warehouse-management client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
	}
}

// Client implements domain.WarehouseManagement against the WMS REST API.
// Calls run through a circuit breaker so a misbehaving WMS degrades
// sweeps instead of hammering it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
}

// NewClient creates a new warehouse-management client
func NewClient(config *Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("wms"), logger),
	}
}

// SearchVerifications retrieves the verification records for an order.
func (c *Client) SearchVerifications(ctx context.Context, req domain.VerificationSearchRequest) (*domain.VerificationSearchResponse, error) {
	var response domain.VerificationSearchResponse
	if err := c.post(ctx, "/api/v1/order-verifications/search", req, &response); err != nil {
		return nil, fmt.Errorf("searching order verifications: %w", err)
	}
	return &response, nil
}

// SearchPicks retrieves picks by order number or by pick id batch.
func (c *Client) SearchPicks(ctx context.Context, req domain.PickSearchRequest) (*domain.PickSearchResponse, error) {
	var response domain.PickSearchResponse
	if err := c.post(ctx, "/api/v1/picks/search", req, &response); err != nil {
		return nil, fmt.Errorf("searching picks: %w", err)
	}
	return &response, nil
}

// SavePick writes a mutated pick back to the WMS.
func (c *Client) SavePick(ctx context.Context, req domain.PickSaveRequest) error {
	if err := c.post(ctx, "/api/v1/picks", req, nil); err != nil {
		return fmt.Errorf("saving pick: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("wms returned status %d", resp.StatusCode)
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return nil, fmt.Errorf("failed to decode response: %w", err)
			}
		}

		return nil, nil
	})
	return err
}
