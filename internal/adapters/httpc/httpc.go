// Package httpc provides a resilient HTTP client shared by the source collectors
package httpc

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	perr "github.com/iliebabcenco/big-collector/internal/platform/errors"
	"github.com/iliebabcenco/big-collector/internal/platform/logger"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUA        = "big-collector/1.0"
	defaultMaxRetry  = 2
	defaultRetryBase = 500 * time.Millisecond
	defaultRateWait  = 60 * time.Second

	// maxBody caps response reads so a misbehaving upstream can't balloon memory
	maxBody = 10 << 20
)

// BackoffKind selects how retry delays grow between attempts
type BackoffKind int

const (
	// BackoffLinear waits base * attempt before each retry
	BackoffLinear BackoffKind = iota
	// BackoffFixed waits base before each retry
	BackoffFixed
)

// Options configures the Client
type Options struct {
	UserAgent string
	Timeout   time.Duration

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration
	Backoff    BackoffKind

	// RateLimitWait is the fallback pause on 429/403 when the upstream
	// sends no Retry-After or reset headers
	RateLimitWait time.Duration
}

// Client retries transient failures and respects upstream rate limit headers
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a Client with sane defaults; name tags its log lines
func New(name string, o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.RateLimitWait <= 0 {
		o.RateLimitWait = defaultRateWait
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named(name),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Get fetches url and returns the response body
func (c *Client) Get(ctx context.Context, url string, hdr http.Header) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, url, hdr, nil)
}

// Do issues a request with retries and rate limit handling and returns the body.
// The request is rebuilt each attempt so byte bodies replay safely
func (c *Client) Do(ctx context.Context, method, url string, hdr http.Header, body []byte) ([]byte, error) {
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rdr)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "httpc new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		for k, vs := range hdr {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "httpc do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		rem, reset, retryAfter := parseRateHeaders(resp.Header)
		c.log.Debug().
			Str("method", method).
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Int("rate_remaining", rem).
			Time("rate_reset", reset).
			Int("retry_after_s", retryAfter).
			Msg("http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			out, rerr := io.ReadAll(io.LimitReader(resp.Body, maxBody))
			_ = resp.Body.Close()
			if rerr != nil {
				return nil, perr.Wrapf(rerr, perr.ErrorCodeUnavailable, "httpc read body failed")
			}
			return out, nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
			wait := computeWait(rem, reset, retryAfter, c.now())
			if wait <= 0 {
				wait = c.opts.RateLimitWait
			}
			if !c.shouldRetry(attempts) {
				tail := readTail(resp.Body)
				return nil, &StatusError{Status: resp.StatusCode, Body: tail}
			}
			c.log.Warn().Dur("sleep", wait).Int("status", resp.StatusCode).Msg("rate limited backing off")
			_ = drainAndClose(resp.Body)
			c.sleep(wait)
			attempts++
			continue

		case resp.StatusCode >= 500:
			if !c.shouldRetry(attempts) {
				tail := readTail(resp.Body)
				return nil, &StatusError{Status: resp.StatusCode, Body: tail}
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Int("status", resp.StatusCode).
				Msg("transient error retrying")
			_ = drainAndClose(resp.Body)
			c.sleep(back)
			attempts++
			continue

		default:
			tail := readTail(resp.Body)
			return nil, &StatusError{Status: resp.StatusCode, Body: tail}
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	if c.opts.Backoff == BackoffFixed {
		return c.opts.RetryBase
	}
	// linear: base, 2*base, 3*base ...
	return c.opts.RetryBase * time.Duration(attempt+1)
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}
