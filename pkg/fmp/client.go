// Package fmp is the access layer for the Financial Modeling Prep API.
//
// Every outbound call goes through one pipeline: response cache, then
// in-flight deduplication, then the rate limiter, then the HTTP
// transport. Fetch collapses every failure mode into a fallback-carrying
// Result so composite callers never branch on errors.
package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/pantainos/fmp/pkg/cache/memory"
	"github.com/pantainos/fmp/pkg/models"
)

// DefaultBaseURL is the production FMP API host.
const DefaultBaseURL = "https://financialmodelingprep.com"

// Recorder receives one CallRecord per upstream attempt or cache hit.
// Implementations must tolerate concurrent calls.
type Recorder interface {
	Record(ctx context.Context, rec models.CallRecord) error
}

// Options configures a Client.
type Options struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each individual upstream call. A timed-out call
	// resolves exactly like a network failure.
	Timeout time.Duration
	// RateLimit is upstream requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
	// Retries is the number of transparent transport-level retries on
	// transient failures, on top of the initial attempt.
	Retries int
}

// Client is a caching, deduplicating, rate-limited FMP API client.
type Client struct {
	rest     *resty.Client
	cache    *memory.Cache
	limiter  *rate.Limiter
	flight   singleflight.Group
	recorder Recorder
	apiKey   string
}

// NewClient creates a Client. The cache is required and owned by the
// caller so tests get a fresh one per client. recorder may be nil.
func NewClient(opts Options, cache *memory.Cache, recorder Recorder) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	if opts.Retries > 0 {
		rc.SetRetryCount(opts.Retries).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(4 * time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= 500
			})
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		rest:     rc,
		cache:    cache,
		limiter:  limiter,
		recorder: recorder,
		apiKey:   opts.APIKey,
	}
}

// Get returns the JSON body for an endpoint, serving from cache when a
// fresh entry exists. Concurrent misses for the same key share one
// upstream call. Failed calls are never cached.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string, ttl time.Duration) (json.RawMessage, error) {
	key := CacheKey(endpoint, params)

	if ttl > 0 {
		if data, ok := c.cache.Get(key); ok {
			c.record(ctx, models.CallRecord{
				Endpoint:  endpoint,
				Outcome:   models.OutcomeCacheHit,
				CreatedAt: time.Now().UTC(),
			})
			return data, nil
		}
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		return c.fetchUpstream(ctx, key, endpoint, params, ttl)
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

// Fetch resolves a descriptor into a settled Result. It never returns
// an error: all failure modes collapse into the fallback branch.
func (c *Client) Fetch(ctx context.Context, d Descriptor) Result {
	data, err := c.Get(ctx, d.Endpoint, d.Params, d.TTL)
	if err != nil {
		return c.fail(d, err)
	}
	return Result{Value: data, Succeeded: true}
}

// fail is the single normalization point mapping any failure to the
// fallback-carrying result shape.
func (c *Client) fail(d Descriptor, err error) Result {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = &APIError{Kind: KindTransient, Message: err.Error()}
	}
	fallback := d.Fallback
	if fallback == nil {
		fallback = emptyList
	}
	return Result{Value: fallback, Succeeded: false, Err: apiErr}
}

func (c *Client) fetchUpstream(ctx context.Context, key, endpoint string, params map[string]string, ttl time.Duration) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &APIError{Kind: KindTransient, Message: "rate limiter wait: " + err.Error()}
		}
	}

	start := time.Now()
	req := c.rest.R().SetContext(ctx).SetQueryParams(params)
	if c.apiKey != "" {
		req.SetQueryParam("apikey", c.apiKey)
	}
	resp, err := req.Get(endpoint)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		apiErr := &APIError{Kind: KindTransient, Message: err.Error()}
		c.recordFailure(ctx, endpoint, apiErr, latency)
		return nil, apiErr
	}
	if resp.IsError() {
		apiErr := &APIError{
			Kind:       classifyStatus(resp.StatusCode()),
			StatusCode: resp.StatusCode(),
			Message:    truncate(resp.String(), 200),
		}
		c.recordFailure(ctx, endpoint, apiErr, latency)
		return nil, apiErr
	}

	body := resp.Body()
	if apiErr := validateBody(body, resp.StatusCode()); apiErr != nil {
		c.recordFailure(ctx, endpoint, apiErr, latency)
		return nil, apiErr
	}

	if ttl > 0 {
		c.cache.Put(key, body, ttl)
	}
	c.record(ctx, models.CallRecord{
		Endpoint:   endpoint,
		Outcome:    models.OutcomeSuccess,
		StatusCode: resp.StatusCode(),
		LatencyMs:  latency,
		CreatedAt:  time.Now().UTC(),
	})
	return json.RawMessage(body), nil
}

// validateBody rejects 2xx responses that are not usable JSON. FMP
// reports some errors in-band as {"Error Message": "..."} with a 200.
func validateBody(body []byte, status int) *APIError {
	if !json.Valid(body) {
		return &APIError{
			Kind:       KindMalformed,
			StatusCode: status,
			Message:    "response body is not valid JSON: " + truncate(string(body), 200),
		}
	}
	var probe struct {
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(body, &probe); err == nil && probe.ErrorMessage != "" {
		return &APIError{
			Kind:       KindMalformed,
			StatusCode: status,
			Message:    probe.ErrorMessage,
		}
	}
	return nil
}

func (c *Client) recordFailure(ctx context.Context, endpoint string, apiErr *APIError, latencyMs int64) {
	c.record(ctx, models.CallRecord{
		Endpoint:   endpoint,
		Outcome:    apiErr.Kind.String(),
		StatusCode: apiErr.StatusCode,
		LatencyMs:  latencyMs,
		CreatedAt:  time.Now().UTC(),
	})
}

func (c *Client) record(ctx context.Context, rec models.CallRecord) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, rec); err != nil {
		log.Printf("fmp: record call: %v", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
