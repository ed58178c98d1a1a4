// Package airtable is a small client for the Airtable REST API: paginated table reads,
// single-record lookups and record writes. Reads and writes use separate API keys.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/rehttp"
	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL    = "https://api.airtable.com"
	defaultMaxRetries = 3
	defaultRetryDelay = 200 * time.Millisecond
	maxRetryDelay     = 5 * time.Second
)

var (
	ErrNotFound      = errors.New("airtable: record not found")
	ErrNotConfigured = errors.New("airtable: client not configured")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("airtable: request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Record is a single Airtable row.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

type Options struct {
	BaseURL  string
	BaseID   string
	ReadKey  string
	WriteKey string
	// MaxRetries bounds retries of GET requests on 429 and 5xx responses.
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

type Client struct {
	baseURL    string
	baseID     string
	readKey    string
	writeKey   string
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	transport := rehttp.NewTransport(
		http.DefaultTransport,
		rehttp.RetryAll(
			rehttp.RetryMaxRetries(opts.MaxRetries),
			rehttp.RetryHTTPMethods(http.MethodGet),
			rehttp.RetryAny(
				rehttp.RetryStatuses(
					http.StatusTooManyRequests,
					http.StatusInternalServerError,
					http.StatusBadGateway,
					http.StatusServiceUnavailable,
					http.StatusGatewayTimeout,
				),
				rehttp.RetryTemporaryErr(),
			),
		),
		rehttp.ExpJitterDelay(opts.RetryDelay, maxRetryDelay),
	)

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		baseID:   opts.BaseID,
		readKey:  opts.ReadKey,
		writeKey: opts.WriteKey,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
	}
}

// FetchRecords reads every page of table, optionally filtered by an Airtable formula.
func (c *Client) FetchRecords(ctx context.Context, table, filterByFormula string) ([]Record, error) {
	var all []Record
	offset := ""
	for {
		params := url.Values{}
		if offset != "" {
			params.Set("offset", offset)
		}
		if filterByFormula != "" {
			params.Set("filterByFormula", filterByFormula)
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, c.tableURL(table, "", params), c.readKey, nil, &page); err != nil {
			return nil, err
		}
		if page.Records == nil {
			return nil, fmt.Errorf("airtable: invalid list response for table %q", table)
		}

		all = append(all, page.Records...)
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	logrus.Debugf("airtable: fetched %d records from %s", len(all), table)
	return all, nil
}

// CanWrite reports whether create, update and delete calls have a key to use.
func (c *Client) CanWrite() bool {
	return c != nil && c.baseID != "" && c.writeKey != ""
}

func (c *Client) FetchRecord(ctx context.Context, table, recordID string) (*Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodGet, c.tableURL(table, recordID, nil), c.readKey, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) CreateRecord(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	var rec Record
	body := map[string]any{"fields": fields}
	if err := c.do(ctx, http.MethodPost, c.tableURL(table, "", nil), c.writeKey, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateRecord patches only the given fields.
func (c *Client) UpdateRecord(ctx context.Context, table, recordID string, fields map[string]any) (*Record, error) {
	var rec Record
	body := map[string]any{"fields": fields}
	if err := c.do(ctx, http.MethodPatch, c.tableURL(table, recordID, nil), c.writeKey, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) DeleteRecord(ctx context.Context, table, recordID string) error {
	var resp struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
	}
	return c.do(ctx, http.MethodDelete, c.tableURL(table, recordID, nil), c.writeKey, nil, &resp)
}

func (c *Client) tableURL(table, recordID string, params url.Values) string {
	u := fmt.Sprintf("%s/v0/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table))
	if recordID != "" {
		u += "/" + url.PathEscape(recordID)
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, rawURL, key string, body, out any) error {
	if c == nil || c.baseID == "" || key == "" {
		return ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("airtable: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("airtable: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("airtable: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("airtable: failed to decode response: %w", err)
	}
	return nil
}
