// Package api is the single choke point for all calls against the remote
// expense-sharing service: bearer-token attachment, JSON coding, pagination
// headers and uniform error surfacing all live here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hamkharj/internal/metrics"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the root of the remote API. Trailing slashes are stripped
	// once at construction.
	BaseURL string

	// TokenSource returns the current bearer token, "" when the session has
	// none. Requests marked auth proceed unauthenticated in that case and the
	// server answers 401 where it must.
	TokenSource func() string

	// OnUnauthorized is the session teardown hook, invoked on any 401 before
	// the error is returned to the caller.
	OnUnauthorized func()

	Timeout    time.Duration
	HTTPClient *http.Client // optional override, used by tests
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Client talks to the remote API. All methods return *Error on failure.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenSource    func() string
	onUnauthorized func()
	logger         *zap.Logger
	metrics        *metrics.Metrics
}

// NewClient creates a new API client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		httpClient:     httpClient,
		tokenSource:    opts.TokenSource,
		onUnauthorized: opts.OnUnauthorized,
		logger:         logger,
		metrics:        opts.Metrics,
	}
}

// do performs one request. path is normalized to exactly one leading slash,
// body (when non-nil) is JSON-encoded, and on 2xx the response body (when
// non-empty) is decoded into out. The response headers are returned for
// callers that need pagination metadata.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, auth bool, out any) (http.Header, error) {
	path = "/" + strings.TrimLeft(path, "/")
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Message: "encode request: " + err.Error()}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if auth {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, path, 0, start)
		c.logger.Warn("API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	c.observe(method, path, resp.StatusCode, start)
	c.logger.Debug("API request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	// A 401 tears the session down before anything else happens.
	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, &Error{Message: "Unauthorized", Status: http.StatusUnauthorized}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: "read response: " + err.Error(), Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload any
		if err := json.Unmarshal(raw, &payload); err != nil {
			payload = string(raw)
		}
		return nil, newHTTPError(resp.StatusCode, payload)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, &Error{Message: "decode response: " + err.Error(), Status: resp.StatusCode}
		}
	}
	return resp.Header, nil
}

func (c *Client) token() string {
	if c.tokenSource == nil {
		return ""
	}
	return c.tokenSource()
}

func (c *Client) observe(method, path string, status int, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveRequest(method, routePattern(path), status, time.Since(start))
	}
}

// routePattern collapses numeric path segments into :id so the metric label
// set stays bounded regardless of how many entities exist.
func routePattern(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if _, err := strconv.Atoi(segment); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

// paginationFrom reads the x-total-count / x-total-pages headers leniently:
// absent or malformed values leave zero fields.
func paginationFrom(h http.Header) Pagination {
	var p Pagination
	if n, err := strconv.Atoi(h.Get("x-total-count")); err == nil {
		p.TotalCount = n
	}
	if n, err := strconv.Atoi(h.Get("x-total-pages")); err == nil {
		p.TotalPages = n
	}
	return p
}
