// Package flightsearch talks to the flight-search provider: city name to IATA
// code resolution and round-trip itinerary search.
package flightsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/flight-deals/internal/secret"
)

const (
	locationPath = "locations/query"
	searchPath   = "v2/search"
)

type Client struct {
	hc     *http.Client
	base   string
	apiKey secret.Secret
}

func New(baseURL string, apiKey secret.Secret) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		hc:     &http.Client{Timeout: 30 * time.Second},
		base:   baseURL,
		apiKey: apiKey,
	}
}

// WithHTTPClient replaces the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.hc = hc
	return c
}

type locationResponse struct {
	Locations []struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"locations"`
}

// Resolve returns the IATA city code for city, or "" when the provider's best
// match is not that city.
func (c *Client) Resolve(ctx context.Context, city string) (string, error) {
	q := url.Values{}
	q.Set("term", city)
	q.Set("location_types", "city")
	q.Set("limit", "1")

	body, err := c.get(ctx, locationPath, q)
	if err != nil {
		return "", err
	}
	var res locationResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("decode locations: %w", err)
	}
	if len(res.Locations) == 0 {
		return "", nil
	}
	top := res.Locations[0]
	if !strings.EqualFold(top.Name, city) {
		return "", nil
	}
	return top.Code, nil
}

type searchResponse struct {
	Data []json.RawMessage `json:"data"`
}

// Search returns the raw itinerary records for p, cheapest first. An empty
// result is not an error.
func (c *Client) Search(ctx context.Context, p Params) ([]json.RawMessage, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	body, err := c.get(ctx, searchPath, p.Query())
	if err != nil {
		return nil, err
	}
	var res searchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode search: %w", err)
	}
	if res.Data == nil {
		return []json.RawMessage{}, nil
	}
	return res.Data, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("apikey", c.apiKey.Reveal())
	req.Header.Set("accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", path, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &HTTPError{Endpoint: path, StatusCode: res.StatusCode, Body: string(b)}
	}
	return b, nil
}
