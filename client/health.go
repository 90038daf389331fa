package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pithecene-io/webpify/endpoint"
	"github.com/pithecene-io/webpify/iox"
)

// HealthStatus is the service's health report.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
}

// Health queries the health route next to the convert URL.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	url, err := endpoint.HealthURL(endpoint.Explicit(c.URL))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &ConversionError{Message: err.Error(), Err: err}
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorFromResponse(resp)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return &status, nil
}
