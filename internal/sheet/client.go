// Package sheet is a client for a spreadsheet REST API that exposes each
// sheet as a JSON collection of rows.
package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/inflection"

	"github.com/example/flight-deals/internal/secret"
)

// Record is one sheet row keyed by column name. Numbers decode as
// json.Number.
type Record map[string]any

type Client struct {
	hc   *http.Client
	base string
	auth secret.Secret
}

// New returns a client for the spreadsheet at baseURL. auth, when not empty,
// is sent verbatim as the Authorization header.
func New(baseURL string, auth secret.Secret) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("sheet url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("sheet url: expected http(s) URL, got %q", baseURL)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		hc:   &http.Client{Timeout: 15 * time.Second},
		base: baseURL,
		auth: auth,
	}, nil
}

// BaseURL is the normalised spreadsheet URL, always ending in "/".
func (c *Client) BaseURL() string { return c.base }

func (c *Client) headers() http.Header {
	h := http.Header{}
	if !c.auth.Empty() {
		h.Set("Authorization", c.auth.Reveal())
	}
	return h
}

// ListRows returns every row of sheet. A response without the sheet key
// yields no rows.
func (c *Client) ListRows(ctx context.Context, sheet string) ([]Record, error) {
	body, err := c.do(ctx, http.MethodGet, sheet, nil)
	if err != nil {
		return nil, err
	}
	var res map[string][]Record
	if err := decode(body, &res); err != nil {
		return nil, fmt.Errorf("decode %s: %w", sheet, err)
	}
	rows := res[sheet]
	if rows == nil {
		rows = []Record{}
	}
	return rows, nil
}

// UpdateRow replaces row id of sheet with body. The payload is wrapped under
// the singular form of the sheet name ("prices" -> "price").
func (c *Client) UpdateRow(ctx context.Context, sheet string, id int64, body Record) (Record, error) {
	payload, err := json.Marshal(map[string]Record{Singular(sheet): body})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPut, sheet+"/"+strconv.FormatInt(id, 10), payload)
	if err != nil {
		return nil, err
	}
	var out Record
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("decode %s/%d: %w", sheet, id, err)
	}
	return out, nil
}

// Singular returns the singular noun for a sheet name, or the name itself
// when it has no plural form.
func Singular(sheet string) string {
	if s := inflection.Singular(sheet); s != "" {
		return s
	}
	return sheet
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header = c.headers()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet %s %s: %w", method, path, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("sheet %s %s: read body: %w", method, path, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &HTTPError{Method: method, Path: path, StatusCode: res.StatusCode, Body: string(b)}
	}
	return b, nil
}

func decode(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("sheet %s %s http %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}
