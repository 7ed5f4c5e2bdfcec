// Package catalog talks to the external book-catalog provider
// (Google Books volumes API). Lookups are read-only pass-throughs:
// no caching, no retries, failures propagate to the caller.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrBookNotFound is returned when the provider has no volume for the id.
	ErrBookNotFound = errors.New("catalog book not found")

	// ErrUnavailable is returned when the provider cannot be reached or
	// responds with a server error.
	ErrUnavailable = errors.New("catalog unavailable")
)

// Volume is a single catalog book. Raw carries the provider's response
// verbatim so it can be cached alongside the reading-list entry.
type Volume struct {
	ID         string          `json:"id"`
	VolumeInfo VolumeInfo      `json:"volumeInfo"`
	Raw        json.RawMessage `json:"-"`
}

// VolumeInfo holds the subset of volume metadata the application reads.
type VolumeInfo struct {
	Title         string     `json:"title"`
	Subtitle      string     `json:"subtitle,omitempty"`
	Authors       []string   `json:"authors,omitempty"`
	Description   string     `json:"description,omitempty"`
	PageCount     int        `json:"pageCount,omitempty"`
	PublishedDate string     `json:"publishedDate,omitempty"`
	ImageLinks    ImageLinks `json:"imageLinks,omitempty"`
}

type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
}

// SearchResult is the provider's search response: total count plus the
// matching items untouched.
type SearchResult struct {
	TotalItems int               `json:"totalItems"`
	Items      []json.RawMessage `json:"items"`
}

// Client fetches book metadata from the catalog provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a catalog client. apiKey may be empty for
// unauthenticated access.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// Search performs a free-text volume search. maxResults is passed through
// to the provider when positive.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (*SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	params := url.Values{}
	params.Set("q", query)
	if maxResults > 0 {
		params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	searchURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())
	body, err := c.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return &result, nil
}

// GetByID looks up a single volume by catalog identifier.
func (c *Client) GetByID(ctx context.Context, catalogBookID string) (*Volume, error) {
	if catalogBookID == "" {
		return nil, fmt.Errorf("catalog book id is required")
	}

	volumeURL := fmt.Sprintf("%s/volumes/%s", c.baseURL, url.PathEscape(catalogBookID))
	if c.apiKey != "" {
		volumeURL += "?key=" + url.QueryEscape(c.apiKey)
	}

	body, err := c.get(ctx, volumeURL)
	if err != nil {
		return nil, err
	}

	var volume Volume
	if err := json.Unmarshal(body, &volume); err != nil {
		return nil, fmt.Errorf("decode volume response: %w", err)
	}
	volume.Raw = body

	return &volume, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Bookshelf/1.0 (https://github.com/openshelf/bookshelf)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrBookNotFound
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return buf, nil
}
