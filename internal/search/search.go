// Package search queries the Pixabay image API for background candidates.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"caption-canvas/internal/background"
)

// DefaultBaseURL is the public Pixabay endpoint.
const DefaultBaseURL = "https://pixabay.com"

// Hit is one image result.
type Hit struct {
	ID              int    `json:"id"`
	Tags            string `json:"tags"`
	PreviewURL      string `json:"previewURL"`
	WebformatURL    string `json:"webformatURL"`
	WebformatWidth  int    `json:"webformatWidth"`
	WebformatHeight int    `json:"webformatHeight"`
	LargeImageURL   string `json:"largeImageURL"`
	ImageWidth      int    `json:"imageWidth"`
	ImageHeight     int    `json:"imageHeight"`
	User            string `json:"user"`
}

// Source converts the hit into a background source for the editor.
func (h Hit) Source() background.Source {
	return background.Source{
		PixelURL:      h.WebformatURL,
		NaturalWidth:  h.WebformatWidth,
		NaturalHeight: h.WebformatHeight,
	}
}

type response struct {
	Total     int   `json:"total"`
	TotalHits int   `json:"totalHits"`
	Hits      []Hit `json:"hits"`
}

// Client talks to the Pixabay REST API.
type Client struct {
	BaseURL string
	Key     string
	HTTP    *http.Client
}

// NewClient creates a client for the public endpoint.
func NewClient(key string) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		Key:     key,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Search returns photos matching query. A blank query returns no hits and
// makes no request.
func (c *Client) Search(ctx context.Context, query string) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if c.Key == "" {
		return nil, fmt.Errorf("search: missing API key")
	}

	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	params := url.Values{}
	params.Set("key", c.Key)
	params.Set("q", query)
	params.Set("image_type", "photo")
	reqURL := strings.TrimRight(base, "/") + "/api/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("search: HTTP %d", resp.StatusCode)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Hits, nil
}
