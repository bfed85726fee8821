package tmdb

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
)

// Transport issues one raw request against the catalog API. Implementations
// classify failures into the package error types; they perform no retries.
type Transport interface {
	Do(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error)
}

// HTTPTransport is the live TMDB transport.
type HTTPTransport struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// NewHTTPTransport creates a transport for the given API key and base URL.
func NewHTTPTransport(apiKey, baseURL, language string, opts ...TransportOption) (*HTTPTransport, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("base url required")
	}
	t := &HTTPTransport{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Do performs a single GET against endpoint (e.g. "/search/tv") and returns
// the raw JSON body. 429 and 5xx responses map to their typed errors so the
// resilient client can drive retry and circuit decisions.
func (t *HTTPTransport) Do(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	u, err := url.Parse(t.baseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	query := url.Values{}
	for key, values := range params {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	query.Set("api_key", t.apiKey)
	if t.language != "" && query.Get("language") == "" {
		query.Set("language", t.language)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return json.RawMessage(body), nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitedError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())}
	case resp.StatusCode >= 500:
		return nil, &ServerError{StatusCode: resp.StatusCode}
	default:
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
}
