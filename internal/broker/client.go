// Package broker is a thin client for the upstream broker affiliate
// API. The upstream is opaque; responses pass through as raw JSON.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, httpClient: httpClient}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Get forwards a GET to the upstream and returns the raw body and
// status code. Non-JSON upstream bodies are wrapped into an error
// object so our callers always receive JSON.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, int, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("broker request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if !json.Valid(body) {
		wrapped, _ := json.Marshal(map[string]string{"error": "invalid upstream response"})
		return wrapped, resp.StatusCode, nil
	}
	return body, resp.StatusCode, nil
}
