package wiktionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultDictionaryURL = "https://api.dictionaryapi.dev"

var ErrNoAudio = errors.New("dictionaryapi: no US audio")

// DictionaryClient looks words up on dictionaryapi.dev.
type DictionaryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewDictionaryClient(baseURL string) *DictionaryClient {
	if baseURL == "" {
		baseURL = defaultDictionaryURL
	}
	return &DictionaryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

type entry struct {
	Phonetics []struct {
		Text  string `json:"text"`
		Audio string `json:"audio"`
	} `json:"phonetics"`
}

// USAudioURL returns the first phonetic recording of word whose URL marks it as US English.
func (d *DictionaryClient) USAudioURL(ctx context.Context, word string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		d.baseURL+"/api/v2/entries/en/"+url.PathEscape(word), nil)
	if err != nil {
		return "", err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("dictionaryapi: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrWordNotFound, word)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dictionaryapi: unexpected status %d", resp.StatusCode)
	}

	var entries []entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return "", fmt.Errorf("dictionaryapi: failed to decode response: %w", err)
	}
	if len(entries) == 0 {
		return "", ErrNoAudio
	}
	for _, p := range entries[0].Phonetics {
		if isUSAudioURL(p.Audio) {
			return p.Audio, nil
		}
	}
	return "", ErrNoAudio
}

func isUSAudioURL(u string) bool {
	return u != "" && (strings.Contains(u, "_us_") ||
		strings.Contains(u, "en_us") ||
		strings.Contains(u, "-us.") ||
		strings.Contains(u, "/us/"))
}
