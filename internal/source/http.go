package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTP fetches a lexicon from a URL with bounded retries on transient
// failures. Lexicon dumps are commonly published behind flaky open-data
// mirrors, so a short exponential backoff is applied to network errors and
// retryable status codes before giving up.
type HTTP struct {
	url string

	client         *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	// sleep is injectable so tests run without real waits.
	sleep func(time.Duration)
}

// HTTPConfig tunes an HTTP source. Zero values select the defaults noted on
// each field.
type HTTPConfig struct {
	// Timeout is the whole-request timeout. Default 30s.
	Timeout time.Duration

	// MaxRetries is the number of attempts after the first. Zero means a
	// single attempt with no retries.
	MaxRetries int

	// InitialBackoff is the wait before the first retry; it doubles per
	// attempt up to MaxBackoff. Defaults 200ms and 5s.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Transport overrides the HTTP transport; nil uses the default.
	Transport http.RoundTripper
}

// NewHTTP returns a Source that GETs url using cfg.
func NewHTTP(url string, cfg HTTPConfig) *HTTP {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	return &HTTP{
		url: url,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		sleep:          time.Sleep,
	}
}

// Open issues the GET and returns the response body. A non-2xx final status
// is an error. The caller must close the returned body.
func (h *HTTP) Open(ctx context.Context) (io.ReadCloser, error) {
	attempts := h.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := h.client.Do(req)
		switch {
		case err != nil:
			// Transport-level failure; retryable.
			lastErr = err
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp.Body, nil
		case retryableStatus(resp.StatusCode):
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("fetch %s: retryable status %s", h.url, resp.Status)
		default:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: %s", h.url, resp.Status)
		}

		if attempt+1 >= attempts {
			break
		}
		if err := h.wait(ctx, backoffDuration(h.initialBackoff, attempt, h.maxBackoff)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// wait sleeps for d via the injected sleep func, returning early if ctx is
// canceled first.
func (h *HTTP) wait(ctx context.Context, d time.Duration) error {
	done := make(chan struct{})
	go func() {
		h.sleep(d)
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// retryableStatus reports whether a status code is worth another attempt:
// 429 and the transient 5xx family.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// backoffDuration doubles base per attempt, capped at max.
func backoffDuration(base time.Duration, attempt int, max time.Duration) time.Duration {
	d := base << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}
