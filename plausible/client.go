// Package plausible queries the Plausible Analytics Stats API v2.
package plausible

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://plausible.io"

var ErrNotConfigured = errors.New("plausible: API key not configured")

// Filter is a v2 filter expression such as ["contains", "event:page", ["/mg-mw-new"]].
type Filter []any

func Contains(dimension string, values ...string) Filter {
	return Filter{"contains", dimension, values}
}

type Query struct {
	SiteID     string   `json:"site_id"`
	Metrics    []string `json:"metrics"`
	DateRange  []string `json:"date_range"`
	Filters    []Filter `json:"filters,omitempty"`
	Dimensions []string `json:"dimensions,omitempty"`
}

type Row struct {
	Dimensions []string  `json:"dimensions"`
	Metrics    []float64 `json:"metrics"`
}

type Response struct {
	Results []Row `json:"results"`
}

// FirstMetric returns the first metric of the first row, if any.
func (r *Response) FirstMetric() (float64, bool) {
	if r == nil || len(r.Results) == 0 || len(r.Results[0].Metrics) == 0 {
		return 0, false
	}
	return r.Results[0].Metrics[0], true
}

type Client struct {
	baseURL    string
	apiKey     string
	siteID     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, siteID string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		siteID:     siteID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Visitors runs a visitors query over [start, end] with optional filters and dimensions.
func (c *Client) Visitors(ctx context.Context, start, end string, filters []Filter, dimensions ...string) (*Response, error) {
	return c.Query(ctx, Query{
		SiteID:     c.siteID,
		Metrics:    []string{"visitors"},
		DateRange:  []string{start, end},
		Filters:    filters,
		Dimensions: dimensions,
	})
}

func (c *Client) Query(ctx context.Context, q Query) (*Response, error) {
	if c == nil || c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("plausible: failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/query", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("plausible: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("plausible: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("plausible: API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("plausible: failed to decode response: %w", err)
	}
	return &out, nil
}
