package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/leonhard-s/auraxium-go/cache"
	"github.com/leonhard-s/auraxium-go/census"
)

// Retry policy for flaky responses. The API regularly drops or
// garbles individual requests even when healthy, so a handful of
// quick retries resolves most failures without bothering the caller.
const (
	maxAttempts     = 5
	initialInterval = 10 * time.Millisecond
	maxInterval     = 5 * time.Second
)

// timingWindow bounds the number of samples kept for Latency.
const timingWindow = 100

// Client performs census queries over HTTP.
//
// The zero value is not usable; create clients through NewClient. A
// Client is safe for concurrent use.
type Client struct {
	http      *http.Client
	serviceID string
	log       *slog.Logger
	profiling bool
	responses *cache.TLRU[Payload]

	mu      sync.Mutex
	timings []time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. to set a
// custom timeout or transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithServiceID sets the service ID applied to every outgoing query,
// overriding whatever the query itself carries.
func WithServiceID(id string) Option {
	return func(c *Client) { c.serviceID = id }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithProfiling enables server-side timing collection. Every query is
// sent with timing enabled and the reported totals feed Latency.
func WithProfiling(enabled bool) Option {
	return func(c *Client) { c.profiling = enabled }
}

// WithResponseCache caches successful payloads by request URL. Most
// census collections hold static game data, so even a short TTL
// eliminates the bulk of repeat requests.
func WithResponseCache(responses *cache.TLRU[Payload]) Option {
	return func(c *Client) { c.responses = responses }
}

// NewClient creates a census REST client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
			// Redirects must surface as-is so maintenance windows can
			// be told apart from garbled payloads.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Latency returns the average server-side processing time of recent
// requests, or -1 if no timing data has been collected. Requires
// profiling to be enabled.
func (c *Client) Latency() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timings) == 0 {
		return -1
	}
	var total time.Duration
	for _, t := range c.timings {
		total += t
	}
	return total / time.Duration(len(c.timings))
}

// Get runs the query with the "get" verb and returns the matching
// records, with any joins resolved to their innermost results.
func (c *Client) Get(ctx context.Context, q *census.Query) ([]Record, error) {
	payload, err := c.Request(ctx, q, census.VerbGet)
	if err != nil {
		return nil, err
	}
	return ResolveNested(q, payload)
}

// GetSingle runs the query with a limit of 1 and returns the first
// match, or ErrNotFound if there are none. Joins are not resolved.
func (c *Client) GetSingle(ctx context.Context, q *census.Query) (Record, error) {
	single := census.NewQueryFrom(q, true, false)
	if err := single.SetLimit(1); err != nil {
		return nil, err
	}
	payload, err := c.Request(ctx, single, census.VerbGet)
	if err != nil {
		return nil, err
	}
	return ExtractSingle(payload, single.Collection(), c.log)
}

// Count runs the query with the "count" verb and returns the number
// of potential matches.
func (c *Client) Count(ctx context.Context, q *census.Query) (int, error) {
	payload, err := c.Request(ctx, q, census.VerbCount)
	if err != nil {
		return 0, err
	}
	raw, ok := payload["count"]
	if !ok {
		return 0, &PayloadError{Key: "count", Payload: payload}
	}
	// JSON numbers decode as float64; the count occasionally arrives
	// as a quoted string instead.
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, nil
		}
	}
	return 0, &PayloadError{Key: "count", Payload: payload}
}

// Request runs the query with the given verb and returns the decoded
// payload. Transient failures (connection errors, server errors,
// maintenance redirects) are retried with exponential backoff before
// giving up; error payloads are classified into the typed errors of
// this package.
func (c *Client) Request(ctx context.Context, q *census.Query, verb census.Verb) (Payload, error) {
	q = c.prepare(q)
	rawURL, err := q.URL(verb)
	if err != nil {
		return nil, err
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ResponseError{Message: "invalid request URL", Err: err}
	}

	requestID := uuid.NewString()
	log := c.log.With(slog.String("request_id", requestID))
	if c.responses != nil {
		if payload, ok := c.responses.Get(rawURL); ok {
			log.Debug("cache hit", slog.String("url", rawURL))
			return payload, nil
		}
	}
	if result := census.Validate(q); !result.OK {
		for _, warning := range result.Warnings {
			log.Warn("query validation", slog.String("warning", warning))
		}
	}
	log.Debug("performing request",
		slog.String("verb", string(verb)), slog.String("url", rawURL))

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialInterval
	policy.MaxInterval = maxInterval
	policy.MaxElapsedTime = 0

	var payload Payload
	operation := func() error {
		var opErr error
		payload, opErr = c.fetch(ctx, rawURL, parsed)
		return opErr
	}
	notify := func(err error, wait time.Duration) {
		log.Debug("retrying request",
			slog.String("error", err.Error()), slog.Duration("backoff", wait))
	}
	err = backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, maxAttempts-1), ctx),
		notify)
	if err != nil {
		return nil, err
	}
	if c.profiling {
		c.recordTiming(payload, log)
	}
	if c.responses != nil {
		c.responses.Add(rawURL, payload)
	}
	return payload, nil
}

// prepare clones the query and applies client-level overrides.
func (c *Client) prepare(q *census.Query) *census.Query {
	if c.serviceID == "" && !c.profiling {
		return q
	}
	prepared := census.NewQueryFrom(q, true, false)
	if c.serviceID != "" {
		prepared.ServiceID(c.serviceID)
	}
	if c.profiling {
		prepared.SetTiming(true)
	}
	return prepared
}

// fetch performs a single HTTP exchange, decodes the body and
// classifies error payloads. The returned error is wrapped as
// permanent for failures a retry cannot fix.
func (c *Client) fetch(ctx context.Context, rawURL string, parsed *url.URL) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ResponseError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	// The endpoint answers with a redirect to the status page during
	// maintenance windows. Retried; maintenance flickers as servers
	// come back up.
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		return nil, &MaintenanceError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode >= 400 {
		return nil, &ResponseError{
			Message: "unexpected HTTP response", StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ResponseError{Message: "reading response body", Err: err}
	}
	var payload Payload
	// Decoded regardless of the advertised content type; error
	// responses are regularly mislabelled as HTML.
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ResponseError{Message: "undecodable response body", Err: err}
	}
	if err := RaiseForPayload(payload, parsed); err != nil {
		var unavailable *ServiceUnavailableError
		if errors.As(err, &unavailable) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}
	return payload, nil
}

// recordTiming extracts the server-side timing report from a payload
// and appends its total to the latency window. The timing key is
// removed so callers see the payload shape they asked for.
func (c *Client) recordTiming(payload Payload, log *slog.Logger) {
	raw, ok := payload["timing"]
	if !ok {
		return
	}
	delete(payload, "timing")
	report, ok := raw.(map[string]any)
	if !ok {
		return
	}
	total, ok := report["total-ms"].(float64)
	if !ok {
		return
	}
	elapsed := time.Duration(total) * time.Millisecond
	c.mu.Lock()
	c.timings = append(c.timings, elapsed)
	if len(c.timings) > timingWindow {
		c.timings = c.timings[len(c.timings)-timingWindow:]
	}
	c.mu.Unlock()
	log.Debug("query timing", slog.Duration("total", elapsed))
}
