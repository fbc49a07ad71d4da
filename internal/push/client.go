// Package push – HTTP client for the gateway's batched send endpoint.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnauthorized is returned when the gateway rejects our access token.
// Nothing was attempted; the caller treats this as a total dispatch failure
// rather than a per-batch one.
var ErrUnauthorized = errors.New("push gateway rejected credentials")

// Client posts message batches to the push gateway and decodes the ordered
// ticket array. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	url         string
	accessToken string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client (tests use this).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient builds a gateway client for the given send URL. accessToken may
// be empty when the gateway does not require authentication. timeout bounds
// each batch call.
func NewClient(url, accessToken string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		url:         url,
		accessToken: accessToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sendResponse is the gateway's envelope: tickets under "data", positionally
// matching the request array.
type sendResponse struct {
	Data   []Ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// SendBatch posts up to MaxBatchSize messages and returns one ticket per
// message, in request order. A response whose ticket count does not match the
// request count is rejected: without the positional guarantee the caller
// cannot map failures back to tokens.
func (c *Client) SendBatch(ctx context.Context, messages []Message) ([]Ticket, error) {
	if len(messages) == 0 {
		return []Ticket{}, nil
	}
	if len(messages) > MaxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds gateway limit of %d", len(messages), MaxBatchSize)
	}

	body, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gateway status %d: %s", resp.StatusCode, string(raw))
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	if len(out.Data) != len(messages) {
		return nil, fmt.Errorf("gateway returned %d tickets for %d messages", len(out.Data), len(messages))
	}
	return out.Data, nil
}
