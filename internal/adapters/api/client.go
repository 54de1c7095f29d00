// Package api is the client for the gym backend REST API. The backend owns every
// record; this package only moves JSON and maps HTTP failures onto errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gymdesk/internal/adapters/http/perf"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Client performs authenticated JSON calls against the backend.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	collector *perf.Collector
	slowMs    float64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCollector records every call in the perf collector.
func WithCollector(col *perf.Collector) Option {
	return func(c *Client) { c.collector = col }
}

// WithSlowThreshold sets the slow_upstream warning threshold.
func WithSlowThreshold(d time.Duration) Option {
	return func(c *Client) { c.slowMs = float64(d.Milliseconds()) }
}

// NewClient creates a client for the backend at baseURL.
// PRE: baseURL is an absolute http(s) URL
// POST: Returns a client whose paths resolve relative to baseURL
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url must be http or https, got %q", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		slowMs:  500,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// resolve joins a relative resource path onto the base URL.
func (c *Client) resolve(path string, query url.Values) *url.URL {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u
}

// sameOrigin reports whether u points at the backend host, so the bearer token
// is never sent elsewhere when following pagination links.
func (c *Client) sameOrigin(u *url.URL) bool {
	return u.Scheme == c.baseURL.Scheme && u.Host == c.baseURL.Host
}

// Do performs one call. body, when non-nil, is sent as JSON; out, when non-nil,
// receives the decoded response.
// PRE: path is relative to the base URL
// POST: Returns *Error for non-2xx responses
func (c *Client) Do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	return c.doURL(ctx, method, c.resolve(path, query), path, token, body, out)
}

func (c *Client) doURL(ctx context.Context, method string, u *url.URL, label, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, label, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, label, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.record(method, label, status, start)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, label, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, label, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Method: method, Path: label, Status: resp.StatusCode, Message: errorMessage(data)}
		if resp.StatusCode >= 500 {
			slog.Error("upstream_error", "method", method, "path", label, "status", resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, label, err)
	}
	return nil
}

// record logs and collects one upstream call.
func (c *Client) record(method, path string, status int, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	op := method + " " + collapseID(path)
	if durationMs >= c.slowMs {
		slog.Warn("slow_upstream", "op", op, "status", status, "duration_ms", durationMs)
	} else {
		slog.Debug("upstream", "op", op, "status", status, "duration_ms", durationMs)
	}
	if c.collector != nil {
		c.collector.Record(perf.Entry{
			Kind:       perf.KindUpstream,
			Path:       op,
			StatusCode: status,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// collapseID turns "invoices/42/" into "invoices/{id}/" so the perf page groups
// calls by resource rather than by record.
func collapseID(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) >= 2 && parts[1] != "" && parts[0] != "auth" {
		parts[1] = "{id}"
	}
	return strings.Join(parts, "/")
}
