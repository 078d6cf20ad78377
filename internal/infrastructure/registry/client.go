package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vininfo.backend/internal/config"
)

var (
	// ErrNotConfigured is returned when the upstream key or URL is missing
	ErrNotConfigured = errors.New("registry API is not configured")
	// ErrMissingIdentifier is returned when no vin, tp or orv was given
	ErrMissingIdentifier = errors.New("missing required parameter: vin, tp, or orv")
)

// UpstreamError carries a non 2xx answer of the registry
type UpstreamError struct {
	Status     int
	StatusText string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("API error: %d %s", e.Status, e.StatusText)
}

// Query selects a vehicle by exactly one identifier
type Query struct {
	Param string
	Value string
}

// NewQuery picks the identifier by precedence vin, tp, orv.
func NewQuery(vin, tp, orv string) (Query, error) {
	switch {
	case vin != "":
		return Query{Param: "vin", Value: vin}, nil
	case tp != "":
		return Query{Param: "tp", Value: tp}, nil
	case orv != "":
		return Query{Param: "orv", Value: orv}, nil
	}
	return Query{}, ErrMissingIdentifier
}

// Client calls the upstream vehicle registry
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a registry client
func NewClient(cfg config.RegistryConfig) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Configured reports whether the upstream key is present
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.baseURL != ""
}

// Lookup fetches the registry record and returns its JSON unchanged.
func (c *Client) Lookup(ctx context.Context, q Query) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	target, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry url: %w", err)
	}
	params := target.Query()
	params.Set(q.Param, q.Value)
	target.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("api_key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &UpstreamError{Status: resp.StatusCode, StatusText: statusText(resp)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, fmt.Errorf("read registry response: %w", err)
	}
	if !json.Valid(body) {
		return nil, errors.New("registry returned invalid JSON")
	}
	return json.RawMessage(body), nil
}

// statusText returns the reason phrase sent by the upstream, e.g. "Not Found".
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
