package fhir

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const fhirJSON = "application/fhir+json"

// Client is a read-only client for an upstream FHIR server. It issues one
// GET per call with its own timeout; failures come back as errors, never
// panics, so callers can record them per prefetch key.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// NewClient creates a Client whose individual requests are bounded by
// timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Get fetches base/path and decodes the response body as JSON. path is a
// resource read ("Patient/123") or search ("Condition?patient=123"). When
// tokenType and accessToken are non-empty they are sent as the
// Authorization header.
func (c *Client) Get(ctx context.Context, base, path, tokenType, accessToken string) (any, error) {
	url := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", fhirJSON)
	req.Header.Set("Content-Type", fhirJSON)
	if accessToken != "" {
		if tokenType == "" {
			tokenType = "Bearer"
		}
		req.Header.Set("Authorization", tokenType+" "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch %s: upstream returned %d", path, resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return payload, nil
}
