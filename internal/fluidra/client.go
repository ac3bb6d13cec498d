package fluidra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the Fluidra EMEA API host.
const DefaultBaseURL = "https://api.fluidra-emea.com"

// HeaderSource supplies the per-request auth headers.
type HeaderSource interface {
	Headers() http.Header
}

// HTTPStatusError reports a non-success API response.
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e HTTPStatusError) Error() string {
	return fmt.Sprintf("fluidra api error %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// Response is the raw outcome of one API call. Status-code interpretation is
// the caller's job; the gateway never retries.
type Response struct {
	Status int
	Body   []byte
}

// Client is a thin transport wrapper for the Fluidra API.
type Client struct {
	baseURL    string
	headers    HeaderSource
	httpClient *http.Client
}

func NewClient(baseURL string, headers HeaderSource) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &Client{
		baseURL:    baseURL,
		headers:    headers,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Get performs a GET and returns the status and body verbatim.
func (c *Client) Get(ctx context.Context, path string) (Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Put performs a PUT with a JSON payload and returns the status and body.
func (c *Client) Put(ctx context.Context, path string, payload any) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshal payload: %w", err)
	}
	return c.do(ctx, http.MethodPut, path, body)
}

// CloseIdleConnections releases the underlying transport connections.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	for key, values := range c.headers.Headers() {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	return Response{Status: resp.StatusCode, Body: data}, nil
}
