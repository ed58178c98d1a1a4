package wiktionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/rehttp"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL     = "https://en.wiktionary.org"
	resolveConcurrency = 8
	defaultHTTPTimeout = 15 * time.Second
	retryDelay         = 250 * time.Millisecond
	maxRetryDelay      = 2 * time.Second
)

var ErrWordNotFound = errors.New("wiktionary: word not found")

type Audio struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
	Accent   string `json:"accent"`
	Region   string `json:"region"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

// newHTTPClient retries lookups the public APIs rate-limited or briefly refused.
func newHTTPClient() *http.Client {
	transport := rehttp.NewTransport(
		http.DefaultTransport,
		rehttp.RetryAll(
			rehttp.RetryMaxRetries(2),
			rehttp.RetryHTTPMethods(http.MethodGet),
			rehttp.RetryAny(
				rehttp.RetryStatuses(http.StatusTooManyRequests, http.StatusServiceUnavailable),
				rehttp.RetryTemporaryErr(),
			),
		),
		rehttp.ExpJitterDelay(retryDelay, maxRetryDelay),
	)
	return &http.Client{Transport: transport, Timeout: defaultHTTPTimeout}
}

// Audio returns every English recording for word, de-duplicated by URL.
func (c *Client) Audio(ctx context.Context, word string) ([]Audio, error) {
	audios, err := c.resolveAll(ctx, word)
	if err != nil {
		return nil, err
	}
	english := lo.Filter(audios, func(a Audio, _ int) bool { return IsEnglish(a.FileName) })
	return dedupeByURL(english), nil
}

// USAudio returns only US recordings.
func (c *Client) USAudio(ctx context.Context, word string) ([]Audio, error) {
	audios, err := c.resolveAll(ctx, word)
	if err != nil {
		return nil, err
	}
	us := lo.Filter(audios, func(a Audio, _ int) bool { return IsUS(a.FileName) })
	return dedupeByURL(us), nil
}

func (c *Client) resolveAll(ctx context.Context, word string) ([]Audio, error) {
	html, err := c.pageHTML(ctx, word)
	if err != nil {
		return nil, err
	}
	files := ExtractAudioFiles(html, word)

	resolved := make([]*Audio, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, name := range files {
		g.Go(func() error {
			fileURL, err := c.fileURL(gctx, name)
			if err != nil {
				// One broken file should not hide the others.
				logrus.Warnf("wiktionary: failed to resolve %s: %v", name, err)
				return nil
			}
			if fileURL == "" {
				return nil
			}
			accent := AccentOf(name)
			resolved[i] = &Audio{FileName: name, URL: fileURL, Accent: accent, Region: RegionOf(accent)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Audio, 0, len(resolved))
	for _, a := range resolved {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (c *Client) pageHTML(ctx context.Context, word string) (string, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("format", "json")
	params.Set("prop", "text")
	params.Set("page", word)

	var body struct {
		Parse *struct {
			Text struct {
				HTML string `json:"*"`
			} `json:"text"`
		} `json:"parse"`
	}
	status, err := c.getJSON(ctx, params, &body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK || body.Parse == nil {
		return "", fmt.Errorf("%w: %s", ErrWordNotFound, word)
	}
	return body.Parse.Text.HTML, nil
}

func (c *Client) fileURL(ctx context.Context, fileName string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url")
	params.Set("titles", "File:"+fileName)

	var body struct {
		Query struct {
			Pages map[string]struct {
				ImageInfo []struct {
					URL string `json:"url"`
				} `json:"imageinfo"`
			} `json:"pages"`
		} `json:"query"`
	}
	status, err := c.getJSON(ctx, params, &body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("imageinfo request returned %d", status)
	}
	for _, page := range body.Query.Pages {
		if len(page.ImageInfo) > 0 && page.ImageInfo[0].URL != "" {
			return page.ImageInfo[0].URL, nil
		}
	}
	return "", nil
}

// getJSON decodes a successful response into out and returns the status code.
func (c *Client) getJSON(ctx context.Context, params url.Values, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/w/api.php?"+params.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("wiktionary: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("wiktionary: failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}
