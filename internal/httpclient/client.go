// Package httpclient wraps an http.Client with outbound rate limiting and
// automatic retries for the third-party APIs the resolver talks to.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/cesargomez89/axiolite/internal/constants"
)

type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a rate-limited, retrying HTTP client. A zero
// minRequestInterval disables rate limiting.
func NewClient(httpClient *http.Client, minRequestInterval time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: constants.APIHTTPTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if minRequestInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(minRequestInterval), 1)
	}

	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// Do executes an HTTP request, waiting for the rate limiter and retrying on
// transport errors and 429/503 responses with backoff.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < constants.DefaultRetryCount; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req.WithContext(ctx))
		if err == nil {
			if resp.StatusCode != http.StatusServiceUnavailable && resp.StatusCode != http.StatusTooManyRequests {
				return resp, nil
			}

			retryAfter := parseRetryAfter(resp)
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (status %d)", resp.StatusCode)

			wait := time.Duration(attempt+1) * constants.DefaultRetryBase
			if retryAfter > wait {
				wait = retryAfter
			}
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		lastErr = err
		if err := sleep(ctx, time.Duration(attempt+1)*constants.DefaultRetryBase); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter reads a Retry-After header and returns the duration to wait.
func parseRetryAfter(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(ra); err == nil {
		return time.Until(t)
	}
	return 0
}
