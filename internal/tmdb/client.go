// Package tmdb looks up celebrity profile photos on The Movie Database.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/samvad-hq/vision-probe/pkg/httpclient"
)

// Client resolves person names to profile photo URLs and caches the answers,
// misses included, for its lifetime.
type Client struct {
	http         httpclient.Client
	apiKey       string
	baseURL      string
	imageBaseURL string

	mu    sync.Mutex
	cache map[string]string
}

// NewClient builds a TMDb client. baseURL is the API root (…/3) and
// imageBaseURL the prefix joined with profile_path.
func NewClient(client httpclient.Client, apiKey, baseURL, imageBaseURL string) *Client {
	return &Client{
		http:         client,
		apiKey:       strings.TrimSpace(apiKey),
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		imageBaseURL: strings.TrimRight(strings.TrimSpace(imageBaseURL), "/"),
		cache:        make(map[string]string),
	}
}

type searchResponse struct {
	Results []person `json:"results"`
}

type person struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	ProfilePath *string `json:"profile_path"`
}

// PhotoURL returns the profile photo of the first search hit for name, or ""
// when there is none.
func (c *Client) PhotoURL(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	c.mu.Lock()
	if photo, ok := c.cache[name]; ok {
		c.mu.Unlock()
		return photo, nil
	}
	c.mu.Unlock()

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("query", name)
	endpoint := c.baseURL + "/search/person?" + q.Encode()

	resp, err := c.http.Get(ctx, endpoint, map[string]string{"Accept": "application/json"})
	if err != nil {
		return "", fmt.Errorf("tmdb search %q: %w", name, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("tmdb search %q returned status %d", name, resp.StatusCode())
	}

	var parsed searchResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("decode tmdb search: %w", err)
	}

	photo := ""
	if len(parsed.Results) > 0 {
		if p := parsed.Results[0].ProfilePath; p != nil && *p != "" {
			photo = c.imageBaseURL + *p
		}
	}

	c.mu.Lock()
	c.cache[name] = photo
	c.mu.Unlock()
	return photo, nil
}
