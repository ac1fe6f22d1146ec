package consolidation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wms-platform/exception-service/internal/domain"
	"github.com/wms-platform/exception-service/pkg/resilience"
)

// Config holds consolidation client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:8081",
		Timeout: 30 * time.Second,
	}
}

// Client implements domain.Consolidation against the consolidation REST
// API, circuit-broken like the WMS client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
}

// NewClient creates a new consolidation client
func NewClient(config *Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("consolidation"), logger),
	}
}

// Status retrieves the consolidation-side view of an order. A missing
// record is (nil, nil), not an error.
func (c *Client) Status(ctx context.Context, orderNumber int, transactionID string) (*domain.ConsolidatableOrder, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/api/v1/consolidations/%d", c.baseURL, orderNumber)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Transaction-Id", transactionID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return (*domain.ConsolidatableOrder)(nil), nil
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("consolidation returned status %d", resp.StatusCode)
		}

		var record domain.ConsolidatableOrder
		if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &record, nil
	})
	if err != nil {
		return nil, fmt.Errorf("consolidation status for order %d: %w", orderNumber, err)
	}

	record, _ := result.(*domain.ConsolidatableOrder)
	return record, nil
}

// UpdateOrderItemLabel pushes a presentation label for a consolidated
// item. This is a write-only side channel; the engine never reads labels
// back.
func (c *Client) UpdateOrderItemLabel(ctx context.Context, orderNumber string, itemID string, label domain.Label) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/api/v1/consolidations/%s/items/%s/label", c.baseURL, orderNumber, itemID)

		body, err := json.Marshal(label)
		if err != nil {
			return nil, fmt.Errorf("failed to encode label: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return nil, fmt.Errorf("consolidation returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("updating label for item %s on order %s: %w", itemID, orderNumber, err)
	}
	return nil
}

// Hold keeps an order in consolidation pending operator review.
func (c *Client) Hold(ctx context.Context, orderNumber int, transactionID string) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("%s/api/v1/consolidations/%s/hold", c.baseURL, strconv.Itoa(orderNumber))

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("X-Transaction-Id", transactionID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return nil, fmt.Errorf("consolidation returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("holding order %d in consolidation: %w", orderNumber, err)
	}
	return nil
}
