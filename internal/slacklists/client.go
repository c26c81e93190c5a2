// Package slacklists is a client for the Slack Lists Web API methods plus the
// team and user lookups the board needs.
package slacklists

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultAPIURL is the Slack Web API base.
const DefaultAPIURL = "https://slack.com/api/"

const (
	pageLimit       = 200
	defaultMaxPages = 50
)

// ErrRateLimited is returned when Slack answers 429 or ratelimited.
var ErrRateLimited = errors.New("slacklists: rate limited") //nolint:gochecknoglobals // sentinel error

// APIError is a response with "ok": false.
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack api %s: %s", e.Method, e.Code)
}

// Is lets errors.Is(err, ErrRateLimited) match the "ratelimited" error code.
func (e *APIError) Is(target error) bool {
	return target == ErrRateLimited && e.Code == "ratelimited"
}

// NotFound reports whether the code names a missing list, item or team.
func (e *APIError) NotFound() bool {
	return strings.HasSuffix(e.Code, "_not_found")
}

// Client talks to the Slack Web API with per-call bearer tokens.
type Client struct {
	apiURL   string
	hc       *http.Client
	limiter  *rate.Limiter
	maxPages int
}

// Option configures a Client.
type Option func(*Client)

// WithAPIURL overrides the API base URL. A trailing slash is added if missing.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		c.apiURL = u
	}
}

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithRateLimit paces outgoing calls to rps with the given burst. A zero rps
// disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithMaxPages caps cursor pagination of item listings.
func WithMaxPages(n int) Option {
	return func(c *Client) { c.maxPages = n }
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		apiURL:   DefaultAPIURL,
		hc:       &http.Client{Timeout: 30 * time.Second},
		maxPages: defaultMaxPages,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// APIURL returns the configured base URL.
func (c *Client) APIURL() string { return c.apiURL }

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("slacklists.wait: %w", err)
	}
	return nil
}

// call POSTs body as JSON to method and decodes the response. Numbers are
// kept as json.Number so ids and amounts survive untouched.
func (c *Client) call(ctx context.Context, method, token string, body any) (map[string]any, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("slacklists.call %s: marshal: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+method, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("slacklists.call %s: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slacklists.call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retry, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return nil, fmt.Errorf("slacklists.call %s: %w (retry after %ds)", method, ErrRateLimited, retry)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("slacklists.call %s: status %d: %s", method, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("slacklists.call %s: decode: %w", method, err)
	}

	if ok, _ := out["ok"].(bool); !ok {
		code, _ := out["error"].(string)
		if code == "" {
			code = "unknown_error"
		}
		return nil, &APIError{Method: method, Code: code}
	}

	return out, nil
}
